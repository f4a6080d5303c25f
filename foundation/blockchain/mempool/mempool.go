// Package mempool holds signed transactions awaiting inclusion in a block:
// a small, capacity-bounded set with uniform-random eviction on overflow.
package mempool

import (
	"math/rand"
	"sync"

	"github.com/qcbit/gossipchain/foundation/blockchain/database"
	"github.com/qcbit/gossipchain/foundation/blockchain/digest"
)

// Capacity is the maximum number of transactions the mempool holds before
// an insert triggers a random eviction.
const Capacity = 10

// Mempool is guarded by a single exclusive mutex, the third and last lock
// in the fixed acquisition order orphan_pool -> chain -> mempool.
type Mempool struct {
	mu  sync.Mutex
	txs map[digest.H256]database.SignedTx
}

// New constructs an empty mempool.
func New() *Mempool {
	return &Mempool{
		txs: make(map[digest.H256]database.SignedTx),
	}
}

// Upsert inserts tx, evicting one uniformly random existing entry first if
// the pool is already at Capacity and tx is not itself already present.
func (m *Mempool) Upsert(tx database.SignedTx) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hash := tx.Hash()
	if _, exists := m.txs[hash]; exists {
		return
	}

	if len(m.txs) >= Capacity {
		m.evictOneLocked()
	}

	m.txs[hash] = tx
}

// evictOneLocked drops one uniformly random entry. The caller must hold m.mu.
func (m *Mempool) evictOneLocked() {
	if len(m.txs) == 0 {
		return
	}

	victim := rand.Intn(len(m.txs))
	i := 0
	for hash := range m.txs {
		if i == victim {
			delete(m.txs, hash)
			return
		}
		i++
	}
}

// Remove drops hash from the pool, if present.
func (m *Mempool) Remove(hash digest.H256) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.txs, hash)
}

// Get returns the transaction stored under hash, if any.
func (m *Mempool) Get(hash digest.H256) (database.SignedTx, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx, ok := m.txs[hash]
	return tx, ok
}

// ContainsKey reports whether hash names a held transaction.
func (m *Mempool) ContainsKey(hash digest.H256) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.txs[hash]
	return ok
}

// Snapshot returns every held transaction. Used by the miner's tx-selection
// pass, which needs a stable view to iterate to a fixpoint.
func (m *Mempool) Snapshot() []database.SignedTx {
	m.mu.Lock()
	defer m.mu.Unlock()

	txs := make([]database.SignedTx, 0, len(m.txs))
	for _, tx := range m.txs {
		txs = append(txs, tx)
	}
	return txs
}

// Len reports the number of transactions currently held.
func (m *Mempool) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.txs)
}
