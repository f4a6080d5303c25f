package worker

import (
	"testing"

	"github.com/qcbit/gossipchain/foundation/blockchain/chain"
	"github.com/qcbit/gossipchain/foundation/blockchain/database"
	"github.com/qcbit/gossipchain/foundation/blockchain/digest"
	"github.com/qcbit/gossipchain/foundation/blockchain/genesis"
	"github.com/qcbit/gossipchain/foundation/blockchain/mempool"
	"github.com/qcbit/gossipchain/foundation/blockchain/message"
)

func newTestNetworkWorker(t *testing.T) (*NetworkWorker, *chain.Chain, genesis.Genesis, *fakeServer) {
	t.Helper()

	g, err := genesis.New()
	if err != nil {
		t.Fatalf("genesis: %s", err)
	}

	c := chain.New(g)
	orphans := chain.NewOrphanPool()
	pool := mempool.New()
	server := newFakeServer()
	latency := chain.NewLatencyAggregate()

	w := NewNetworkWorker(c, orphans, pool, server, latency, 1, nil)
	return w, c, g, server
}

func mineChild(t *testing.T, parent digest.H256, difficulty digest.H256, timestamp uint64, content []database.SignedTx) database.Block {
	t.Helper()

	header := database.Header{
		Parent:     parent,
		Difficulty: difficulty,
		Timestamp:  timestamp,
		MerkleRoot: database.MerkleRoot(content),
	}

	for nonce := uint32(0); ; nonce++ {
		header.Nonce = nonce
		block := database.Block{Header: header, Content: content}
		if block.SatisfiesPoW() {
			return block
		}
		if nonce > 1_000_000 {
			t.Fatalf("failed to mine a block within 1,000,000 attempts")
		}
	}
}

func TestNetworkWorker_PingRepliesPong(t *testing.T) {
	w, _, _, _ := newTestNetworkWorker(t)
	h := newFakeHandle("peerA")

	w.dispatch(message.Ping(42), h)

	written := h.Written()
	if len(written) != 1 || written[0].Kind != message.KindPong || written[0].PongNonce != "42" {
		t.Fatalf("got %v, want a single Pong(42)", written)
	}
}

func TestNetworkWorker_NewBlockHashes_RequestsUnknown(t *testing.T) {
	w, _, _, server := newTestNetworkWorker(t)

	var unknown digest.H256
	unknown[0] = 0xAB

	w.dispatch(message.NewBlockHashes([]digest.H256{unknown}), nil)

	broadcasts := server.Broadcasts()
	if len(broadcasts) != 1 || broadcasts[0].Kind != message.KindGetBlocks {
		t.Fatalf("got %v, want a single GetBlocks request", broadcasts)
	}
}

func TestNetworkWorker_NewBlockHashes_SkipsKnown(t *testing.T) {
	w, _, g, server := newTestNetworkWorker(t)

	w.dispatch(message.NewBlockHashes([]digest.H256{g.Block.Hash()}), nil)

	if len(server.Broadcasts()) != 0 {
		t.Fatalf("expected no request for an already-admitted block")
	}
}

func TestNetworkWorker_GetBlocks_RepliesFromChain(t *testing.T) {
	w, _, g, _ := newTestNetworkWorker(t)
	h := newFakeHandle("peerA")

	w.dispatch(message.GetBlocks([]digest.H256{g.Block.Hash()}), h)

	written := h.Written()
	if len(written) != 1 || written[0].Kind != message.KindBlocks || len(written[0].Blocks) != 1 {
		t.Fatalf("got %v, want a single Blocks reply with genesis", written)
	}
}

func TestNetworkWorker_Blocks_AdmitsValidChild(t *testing.T) {
	w, c, g, server := newTestNetworkWorker(t)
	genesisHash := g.Block.Hash()

	child := mineChild(t, genesisHash, g.Block.Header.Difficulty, 1, nil)

	w.dispatch(message.Blocks([]database.Block{child}), nil)

	if !c.ContainsKey(child.Hash()) {
		t.Fatalf("expected the valid child to be admitted into the chain")
	}
	if c.Tip() != child.Hash() {
		t.Fatalf("expected tip to move to the admitted child")
	}

	foundRelay := false
	for _, b := range server.Broadcasts() {
		if b.Kind == message.KindNewBlockHashes {
			foundRelay = true
		}
	}
	if !foundRelay {
		t.Fatalf("expected a fast-relay NewBlockHashes broadcast")
	}
}

func TestNetworkWorker_Blocks_OrphansUnknownParent(t *testing.T) {
	w, c, g, server := newTestNetworkWorker(t)

	var unknownParent digest.H256
	unknownParent[0] = 0xCD
	orphan := mineChild(t, unknownParent, g.Block.Header.Difficulty, 1, nil)

	w.dispatch(message.Blocks([]database.Block{orphan}), nil)

	if c.ContainsKey(orphan.Hash()) {
		t.Fatalf("a block with an unknown parent must not be admitted")
	}
	if !w.orphans.ContainsKey(orphan.Hash()) {
		t.Fatalf("expected the block to be buffered as an orphan")
	}

	sawRequest := false
	for _, b := range server.Broadcasts() {
		if b.Kind == message.KindGetBlocks {
			sawRequest = true
		}
	}
	if !sawRequest {
		t.Fatalf("expected a GetBlocks request for the missing parent")
	}
}

func TestNetworkWorker_CommitFixpoint_ResolvesChainedOrphans(t *testing.T) {
	w, c, g, _ := newTestNetworkWorker(t)
	genesisHash := g.Block.Hash()
	difficulty := g.Block.Header.Difficulty

	b1 := mineChild(t, genesisHash, difficulty, 1, nil)
	b2 := mineChild(t, b1.Hash(), difficulty, 2, nil)

	// b2 arrives before b1: it is buffered as an orphan with no parent
	// present yet.
	w.dispatch(message.Blocks([]database.Block{b2}), nil)
	if c.ContainsKey(b2.Hash()) {
		t.Fatalf("b2 must not be admitted before its parent exists")
	}

	// b1 arrives: it admits directly, then the commit fixpoint should pull
	// b2 in behind it in the same pass.
	w.dispatch(message.Blocks([]database.Block{b1}), nil)

	if !c.ContainsKey(b1.Hash()) {
		t.Fatalf("expected b1 to be admitted")
	}
	if !c.ContainsKey(b2.Hash()) {
		t.Fatalf("expected the commit fixpoint to admit b2 once b1 resolved")
	}
	if w.orphans.ContainsKey(b2.Hash()) {
		t.Fatalf("expected b2 to be removed from the orphan pool once committed")
	}
	if c.Tip() != b2.Hash() {
		t.Fatalf("expected tip to reach b2")
	}
}

func TestNetworkWorker_NewAccountAddress_UpdatesTipStateInPlace(t *testing.T) {
	w, c, g, _ := newTestNetworkWorker(t)

	var addr digest.H160
	addr[0] = 0xEF

	w.dispatch(message.NewAccountAddress(addr), nil)

	state, ok := c.GetState(g.Block.Hash())
	if !ok {
		t.Fatalf("expected tip state to be present")
	}
	account, known := state.AccountState[addr]
	if !known || account.Balance != genesis.InitCoins || account.Nonce != 0 {
		t.Fatalf("expected the new address to be registered and funded with the starting balance")
	}
}

func TestNetworkWorker_NewAccountAddress_IdempotentForKnownAddress(t *testing.T) {
	w, c, g, _ := newTestNetworkWorker(t)

	existing := g.Identities[0].Address

	w.dispatch(message.NewAccountAddress(existing), nil)

	state, _ := c.GetState(g.Block.Hash())
	if state.AccountState[existing].Balance != genesis.InitCoins {
		t.Fatalf("expected the existing account's balance to be left untouched")
	}
}
