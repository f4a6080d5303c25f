package worker

import (
	"math/rand"
	"time"

	"github.com/qcbit/gossipchain/foundation/blockchain/chain"
	"github.com/qcbit/gossipchain/foundation/blockchain/database"
	"github.com/qcbit/gossipchain/foundation/blockchain/digest"
	"github.com/qcbit/gossipchain/foundation/blockchain/mempool"
	"github.com/qcbit/gossipchain/foundation/blockchain/message"
	"github.com/qcbit/gossipchain/foundation/blockchain/peer"
	"github.com/qcbit/gossipchain/foundation/blockchain/signature"
)

// GenInterval is the default inter-iteration sleep, in microseconds,
// between transaction generation attempts.
const GenInterval = 5_000_000

// TxGenerator synthesizes signed, nonce-correct transactions against its
// own identity's mined balance and submits them to the mempool and the
// network, standing in for the wallets that would otherwise drive traffic.
// It is driven by the same Start(lambda)/Exit control protocol as Miner.
type TxGenerator struct {
	identity  signature.KeyPair
	chain     *chain.Chain
	pool      *mempool.Mempool
	server    peer.Server
	control   chan controlSignal
	evHandler EventHandler
}

// NewTxGenerator constructs a generator that spends from identity's account.
func NewTxGenerator(identity signature.KeyPair, c *chain.Chain, pool *mempool.Mempool, server peer.Server, evHandler EventHandler) *TxGenerator {
	return &TxGenerator{
		identity:  identity,
		chain:     c,
		pool:      pool,
		server:    server,
		control:   make(chan controlSignal, 1),
		evHandler: evHandler,
	}
}

// Start transitions the generator into Run(lambda).
func (g *TxGenerator) Start(lambda uint64) {
	g.control <- controlSignal{kind: controlStart, lambda: lambda}
}

// Exit requests the generator shut down at its next checkpoint.
func (g *TxGenerator) Exit() {
	g.control <- controlSignal{kind: controlExit}
}

// Run starts the generator's loop on its own goroutine.
func (g *TxGenerator) Run() {
	go g.loop()
}

func (g *TxGenerator) loop() {
	g.evHandler.fire("txgenerator: loop: started")
	defer g.evHandler.fire("txgenerator: loop: completed")

	state := statePaused
	lambda := uint64(GenInterval)

	for {
		switch state {
		case statePaused:
			sig := <-g.control
			state, lambda = g.applySignal(sig, lambda)
			continue
		case stateShutDown:
			return
		default:
			select {
			case sig := <-g.control:
				state, lambda = g.applySignal(sig, lambda)
			default:
			}
		}

		if state == stateShutDown {
			continue
		}

		if lambda != 0 {
			time.Sleep(time.Duration(lambda) * time.Microsecond)
		}

		g.generateOnce()
	}
}

func (g *TxGenerator) applySignal(sig controlSignal, lambda uint64) (operatingState, uint64) {
	switch sig.kind {
	case controlExit:
		g.evHandler.fire("txgenerator: control: shutting down")
		return stateShutDown, lambda
	default:
		g.evHandler.fire("txgenerator: control: running with lambda %d", sig.lambda)
		return stateRun, sig.lambda
	}
}

// generateOnce sends one unit of value to a randomly chosen known recipient
// address, nonce-correct against the tip state at the moment it
// runs. It is a no-op if this generator's own account is not yet funded.
func (g *TxGenerator) generateOnce() {
	tipHash := g.chain.Tip()
	state, ok := g.chain.GetState(tipHash)
	if !ok {
		return
	}

	account, ok := state.AccountState[g.identity.Address]
	if !ok || account.Balance == 0 {
		return
	}

	recipient := g.pickRecipient(state)
	if recipient == digest.ZeroH160 {
		return
	}

	tx := database.Tx{
		Recipient:    recipient,
		Value:        1,
		AccountNonce: account.Nonce + 1,
	}

	signed, err := database.NewSignedTx(tx, g.identity)
	if err != nil {
		g.evHandler.fire("txgenerator: sign: %s", err)
		return
	}

	g.pool.Upsert(signed)
	g.evHandler.fire("txgenerator: generated %s", signed)

	if g.server != nil {
		if err := g.server.Broadcast(message.Transactions([]database.SignedTx{signed})); err != nil {
			g.evHandler.fire("txgenerator: broadcast: %s", err)
		}
	}
}

// pickRecipient chooses a uniformly random known address other than this
// generator's own, or the zero address if none exists.
func (g *TxGenerator) pickRecipient(state database.State) digest.H160 {
	var candidates []digest.H160
	for _, addr := range state.AddressList {
		if addr != g.identity.Address {
			candidates = append(candidates, addr)
		}
	}
	if len(candidates) == 0 {
		return digest.ZeroH160
	}
	return candidates[rand.Intn(len(candidates))]
}
