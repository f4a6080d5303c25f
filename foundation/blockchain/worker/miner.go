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
)

// BlockCapacity is the number of transactions a mined block must carry
// before the miner will attempt proof-of-work on it.
const BlockCapacity = 4

// miningRetryBound is the number of nonce randomizations the miner tries
// against one assembled block before giving up on it for this round.
const miningRetryBound = 1000

// controlKind distinguishes the two signals a Miner's control channel
// carries.
type controlKind uint8

const (
	controlStart controlKind = iota
	controlExit
)

// controlSignal is sent over a Miner's control channel to drive its state
// machine from outside the mining goroutine.
type controlSignal struct {
	kind   controlKind
	lambda uint64
}

// operatingState is the miner's three-state machine: paused until told to
// run, running with an inter-attempt sleep of lambda microseconds, or
// shutting down.
type operatingState uint8

const (
	statePaused operatingState = iota
	stateRun
	stateShutDown
)

// Miner runs the proof-of-work search loop: assemble a block from the
// mempool against the current tip, search for a winning nonce, and publish
// it to the chain and the network on success.
type Miner struct {
	chain     *chain.Chain
	pool      *mempool.Mempool
	server    peer.Server
	control   chan controlSignal
	evHandler EventHandler

	minedBlocks uint64
}

// NewMiner constructs a miner in the Paused state. Call Run to start its
// goroutine; it does nothing until Start is called.
func NewMiner(c *chain.Chain, pool *mempool.Mempool, server peer.Server, evHandler EventHandler) *Miner {
	return &Miner{
		chain:     c,
		pool:      pool,
		server:    server,
		control:   make(chan controlSignal, 1),
		evHandler: evHandler,
	}
}

// Start transitions the miner into Run(lambda): it will attempt to mine
// once per loop iteration, sleeping lambda microseconds between attempts.
func (m *Miner) Start(lambda uint64) {
	m.control <- controlSignal{kind: controlStart, lambda: lambda}
}

// Exit requests the miner shut down. It takes effect at the next
// checkpoint, not immediately.
func (m *Miner) Exit() {
	m.control <- controlSignal{kind: controlExit}
}

// Run starts the miner's loop on its own goroutine.
func (m *Miner) Run() {
	go m.loop()
}

func (m *Miner) loop() {
	m.evHandler.fire("miner: loop: started")
	defer m.evHandler.fire("miner: loop: completed")

	state := statePaused
	var lambda uint64

	for {
		switch state {
		case statePaused:
			sig := <-m.control
			state, lambda = m.applySignal(sig)
			continue
		case stateShutDown:
			time.Sleep(3 * time.Second)
			m.evHandler.fire("miner: shutdown: longest chain: %v", m.chain.AllBlocksInLongestChain())
			return
		default:
			select {
			case sig := <-m.control:
				state, lambda = m.applySignal(sig)
			default:
			}
		}

		if state == stateShutDown {
			continue
		}

		if state == stateRun && lambda != 0 {
			time.Sleep(time.Duration(lambda) * time.Microsecond)
		}

		m.mineOnce()
	}
}

func (m *Miner) applySignal(sig controlSignal) (operatingState, uint64) {
	switch sig.kind {
	case controlExit:
		m.evHandler.fire("miner: control: shutting down")
		return stateShutDown, 0
	default:
		m.evHandler.fire("miner: control: running with lambda %d", sig.lambda)
		return stateRun, sig.lambda
	}
}

// mineOnce attempts exactly one assemble-and-search pass. It is a no-op if
// the mempool cannot yet fill a block to BlockCapacity.
func (m *Miner) mineOnce() {
	parentHash := m.chain.Tip()

	parentBlock, ok := m.chain.GetBlock(parentHash)
	if !ok {
		return
	}
	parentState, ok := m.chain.GetState(parentHash)
	if !ok {
		return
	}
	difficulty := parentBlock.Header.Difficulty

	content, newState := m.collectTxs(parentState)
	if len(content) < BlockCapacity {
		return
	}

	header := database.Header{
		Parent:     parentHash,
		Difficulty: difficulty,
		Timestamp:  uint64(time.Now().UnixMicro()),
		MerkleRoot: database.MerkleRoot(content),
		Nonce:      rand.Uint32(),
	}
	block := database.Block{Header: header, Content: content}

	for i := 0; i < miningRetryBound; i++ {
		block.Header.Nonce = rand.Uint32()
		if block.SatisfiesPoW() {
			break
		}
	}

	if !block.SatisfiesPoW() {
		return
	}

	if !m.chain.Insert(block, newState) {
		return
	}

	m.minedBlocks++
	for _, tx := range content {
		m.pool.Remove(tx.Hash())
	}

	m.evHandler.fire("miner: mined block %s: %d txs, %d mined total", block.Hash(), len(content), m.minedBlocks)

	if m.server != nil {
		if err := m.server.Broadcast(message.NewBlockHashes([]digest.H256{block.Hash()})); err != nil {
			m.evHandler.fire("miner: broadcast: %s", err)
		}
	}
}

// collectTxs iterates the mempool to a fixpoint, applying every transaction
// that is currently valid against the working state, evicting every
// transaction that can never become valid, and leaving future-nonce
// transactions for a later pass. It stops early once BlockCapacity
// transactions have been selected.
func (m *Miner) collectTxs(parentState database.State) ([]database.SignedTx, database.State) {
	state := parentState.Clone()
	var selected []database.SignedTx
	picked := make(map[digest.H256]bool)

	for {
		finished := true
		var evict []digest.H256

		for _, tx := range m.pool.Snapshot() {
			if picked[tx.Hash()] {
				continue
			}
			if !tx.VerifiesSignature() {
				evict = append(evict, tx.Hash())
				continue
			}

			addr := tx.Address()
			account, known := state.AccountState[addr]
			if !known {
				continue
			}

			if tx.Tx.AccountNonce != account.Nonce+1 {
				if tx.Tx.AccountNonce <= account.Nonce {
					evict = append(evict, tx.Hash())
				}
				continue
			}
			if account.Balance < tx.Tx.Value {
				evict = append(evict, tx.Hash())
				continue
			}

			state.ApplyTx(tx)
			selected = append(selected, tx)
			picked[tx.Hash()] = true
			finished = false

			if len(selected) == BlockCapacity {
				finished = true
				break
			}
		}

		for _, h := range evict {
			m.pool.Remove(h)
		}

		if finished {
			break
		}
	}

	return selected, state
}
