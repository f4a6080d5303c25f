package worker

import (
	"time"

	"github.com/qcbit/gossipchain/foundation/blockchain/chain"
	"github.com/qcbit/gossipchain/foundation/blockchain/database"
	"github.com/qcbit/gossipchain/foundation/blockchain/digest"
	"github.com/qcbit/gossipchain/foundation/blockchain/genesis"
	"github.com/qcbit/gossipchain/foundation/blockchain/mempool"
	"github.com/qcbit/gossipchain/foundation/blockchain/message"
	"github.com/qcbit/gossipchain/foundation/blockchain/peer"
)

// NetworkWorker is a pool of goroutines draining one inbound message
// channel and dispatching each delivery by its Kind.
type NetworkWorker struct {
	chain     *chain.Chain
	orphans   *chain.OrphanPool
	pool      *mempool.Mempool
	server    peer.Server
	latency   *chain.LatencyAggregate
	numWorker int
	evHandler EventHandler
}

// NewNetworkWorker constructs a network worker pool of numWorker goroutines.
func NewNetworkWorker(c *chain.Chain, orphans *chain.OrphanPool, pool *mempool.Mempool, server peer.Server, latency *chain.LatencyAggregate, numWorker int, evHandler EventHandler) *NetworkWorker {
	return &NetworkWorker{
		chain:     c,
		orphans:   orphans,
		pool:      pool,
		server:    server,
		latency:   latency,
		numWorker: numWorker,
		evHandler: evHandler,
	}
}

// Run starts numWorker goroutines, each draining server.Inbound() and
// dispatching deliveries until the channel closes.
func (w *NetworkWorker) Run() {
	for i := 0; i < w.numWorker; i++ {
		go w.drain()
	}
}

func (w *NetworkWorker) drain() {
	w.evHandler.fire("network: worker: started")
	defer w.evHandler.fire("network: worker: stopped")

	for in := range w.server.Inbound() {
		w.dispatch(in.Msg, in.Handle)
	}
}

func (w *NetworkWorker) dispatch(msg message.Message, h peer.Handle) {
	switch msg.Kind {
	case message.KindPing:
		w.handlePing(msg, h)
	case message.KindPong:
		w.evHandler.fire("network: pong: %s", msg.PongNonce)
	case message.KindNewBlockHashes:
		w.handleNewBlockHashes(msg)
	case message.KindGetBlocks:
		w.handleGetBlocks(msg, h)
	case message.KindBlocks:
		w.handleBlocks(msg)
	case message.KindNewTransactionHashes:
		w.handleNewTransactionHashes(msg, h)
	case message.KindGetTransactions:
		w.handleGetTransactions(msg, h)
	case message.KindTransactions:
		w.handleTransactions(msg)
	case message.KindNewAccountAddress:
		w.handleNewAccountAddress(msg)
	default:
		w.evHandler.fire("network: unknown message kind %d: dropped", msg.Kind)
	}
}

func (w *NetworkWorker) handlePing(msg message.Message, h peer.Handle) {
	if err := h.Write(message.Pong(msg.PingNonce)); err != nil {
		w.evHandler.fire("network: ping: reply: %s", err)
	}
}

func (w *NetworkWorker) handleNewBlockHashes(msg message.Message) {
	var want []digest.H256
	for _, hash := range msg.Hashes {
		if w.chain.ContainsKey(hash) || w.orphans.ContainsKey(hash) {
			continue
		}
		want = append(want, hash)
	}
	if len(want) == 0 {
		return
	}
	if err := w.server.Broadcast(message.GetBlocks(want)); err != nil {
		w.evHandler.fire("network: new-block-hashes: request: %s", err)
	}
}

func (w *NetworkWorker) handleGetBlocks(msg message.Message, h peer.Handle) {
	var found []database.Block
	for _, hash := range msg.Hashes {
		if b, ok := w.chain.GetBlock(hash); ok {
			found = append(found, b)
			continue
		}
		if b, ok := w.orphans.Get(hash); ok {
			found = append(found, b)
		}
	}
	if len(found) == 0 {
		return
	}
	if err := h.Write(message.Blocks(found)); err != nil {
		w.evHandler.fire("network: get-blocks: reply: %s", err)
	}
}

func (w *NetworkWorker) handleBlocks(msg message.Message) {
	for _, block := range msg.Blocks {
		w.recordLatency(block)

		// Fast relay happens before admission: peers may see an
		// announcement for a block this node later rejects.
		if err := w.server.Broadcast(message.NewBlockHashes([]digest.H256{block.Hash()})); err != nil {
			w.evHandler.fire("network: blocks: relay: %s", err)
		}

		w.admitBlock(block)
	}
}

func (w *NetworkWorker) recordLatency(block database.Block) {
	if w.latency == nil {
		return
	}
	now := uint64(time.Now().UnixMicro())
	if now < block.Header.Timestamp {
		return
	}
	w.latency.Record(now - block.Header.Timestamp)
}

func (w *NetworkWorker) admitBlock(block database.Block) {
	hash := block.Hash()
	if w.chain.ContainsKey(hash) || w.orphans.ContainsKey(hash) {
		return
	}

	parent := block.Header.Parent
	switch {
	case w.chain.ContainsKey(parent):
		w.orphans.Add(block)
		w.commitFixpoint()
	case w.orphans.ContainsKey(parent):
		w.orphans.Add(block)
	default:
		w.orphans.Add(block)
		if err := w.server.Broadcast(message.GetBlocks([]digest.H256{parent})); err != nil {
			w.evHandler.fire("network: admit-block: request parent: %s", err)
		}
	}
}

// commitFixpoint repeatedly scans the orphan pool for blocks whose parent
// is now admitted, validating and inserting each one it can, until a full
// pass commits nothing. A block with bad PoW, a merkle root that does not
// match its content, or a transaction sequence that fails the per-block
// validator is left in the orphan pool indefinitely.
func (w *NetworkWorker) commitFixpoint() {
	for {
		committed := false

		for _, orphan := range w.orphans.Snapshot() {
			parentHash := orphan.Header.Parent

			parentState, ok := w.chain.GetState(parentHash)
			if !ok {
				continue
			}
			if !orphan.SatisfiesPoW() {
				continue
			}
			if orphan.Header.MerkleRoot != database.MerkleRoot(orphan.Content) {
				continue
			}

			newState, err := database.ValidateBlock(orphan, parentState)
			if err != nil {
				continue
			}

			preInsertTip := w.chain.Tip()
			if !w.chain.Insert(orphan, newState) {
				continue
			}

			if parentHash == preInsertTip {
				for _, tx := range orphan.Content {
					w.pool.Remove(tx.Hash())
				}
			}

			w.orphans.Remove(orphan.Hash())
			committed = true
		}

		if !committed {
			return
		}
	}
}

func (w *NetworkWorker) handleNewTransactionHashes(msg message.Message, h peer.Handle) {
	var want []digest.H256
	for _, hash := range msg.Hashes {
		if !w.pool.ContainsKey(hash) {
			want = append(want, hash)
		}
	}
	if len(want) == 0 {
		return
	}
	if err := h.Write(message.GetTransactions(want)); err != nil {
		w.evHandler.fire("network: new-tx-hashes: request: %s", err)
	}
}

func (w *NetworkWorker) handleGetTransactions(msg message.Message, h peer.Handle) {
	var found []database.SignedTx
	for _, hash := range msg.Hashes {
		if tx, ok := w.pool.Get(hash); ok {
			found = append(found, tx)
		}
	}
	if len(found) == 0 {
		return
	}
	if err := h.Write(message.Transactions(found)); err != nil {
		w.evHandler.fire("network: get-transactions: reply: %s", err)
	}
}

func (w *NetworkWorker) handleTransactions(msg message.Message) {
	for _, tx := range msg.Txs {
		if !tx.VerifiesSignature() {
			continue
		}
		if w.pool.ContainsKey(tx.Hash()) {
			continue
		}
		w.pool.Upsert(tx)
		if err := w.server.Broadcast(message.Transactions([]database.SignedTx{tx})); err != nil {
			w.evHandler.fire("network: transactions: rebroadcast: %s", err)
		}
	}
}

func (w *NetworkWorker) handleNewAccountAddress(msg message.Message) {
	tipHash := w.chain.Tip()
	tipState, ok := w.chain.GetState(tipHash)
	if !ok {
		return
	}

	working := tipState.Clone()
	if working.AddAddress(msg.Addr, genesis.InitCoins) {
		w.chain.UpdateTipState(working)
	}
}
