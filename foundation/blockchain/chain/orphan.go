package chain

import (
	"sync"

	"github.com/qcbit/gossipchain/foundation/blockchain/database"
	"github.com/qcbit/gossipchain/foundation/blockchain/digest"
)

// OrphanPool holds blocks whose parent is not yet admitted into the chain.
// It is guarded by its own mutex, separate from Chain's. Each method takes
// and releases only that mutex, so no call holds the orphan pool's lock
// together with the chain's.
type OrphanPool struct {
	mu     sync.Mutex
	blocks map[digest.H256]database.Block
}

// NewOrphanPool constructs an empty orphan pool.
func NewOrphanPool() *OrphanPool {
	return &OrphanPool{
		blocks: make(map[digest.H256]database.Block),
	}
}

// Add inserts block under its own hash, overwriting any existing orphan
// with the same hash (a duplicate announcement of an already-buffered
// block is harmless).
func (o *OrphanPool) Add(block database.Block) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.blocks[block.Hash()] = block
}

// Get returns the orphan stored under hash, if any.
func (o *OrphanPool) Get(hash digest.H256) (database.Block, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	b, ok := o.blocks[hash]
	return b, ok
}

// ContainsKey reports whether hash names a buffered orphan.
func (o *OrphanPool) ContainsKey(hash digest.H256) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	_, ok := o.blocks[hash]
	return ok
}

// Remove drops hash from the pool, if present.
func (o *OrphanPool) Remove(hash digest.H256) {
	o.mu.Lock()
	defer o.mu.Unlock()

	delete(o.blocks, hash)
}

// ByParent returns every orphan whose parent equals parentHash, for deciding
// which orphans a newly admitted block might unblock.
func (o *OrphanPool) ByParent(parentHash digest.H256) []database.Block {
	o.mu.Lock()
	defer o.mu.Unlock()

	var matches []database.Block
	for _, b := range o.blocks {
		if b.Header.Parent == parentHash {
			matches = append(matches, b)
		}
	}
	return matches
}

// Snapshot returns every buffered orphan, for use by the commit fixpoint
// which must repeatedly scan the whole pool for newly-resolvable parents.
func (o *OrphanPool) Snapshot() []database.Block {
	o.mu.Lock()
	defer o.mu.Unlock()

	blocks := make([]database.Block, 0, len(o.blocks))
	for _, b := range o.blocks {
		blocks = append(blocks, b)
	}
	return blocks
}
