// Package chain is the block graph: every admitted block, its height, and
// its derived account state, keyed by block hash, plus the tip selection
// rule that picks the canonical longest branch.
package chain

import (
	"sync"

	"github.com/qcbit/gossipchain/foundation/blockchain/database"
	"github.com/qcbit/gossipchain/foundation/blockchain/digest"
	"github.com/qcbit/gossipchain/foundation/blockchain/genesis"
)

// entry is everything the chain keeps for one admitted block.
type entry struct {
	block  database.Block
	state  database.State
	height uint32
}

// Chain is the block graph rooted at genesis, guarded by a single exclusive
// mutex. The caller is responsible for validating PoW and transaction
// sequences before calling Insert; Chain only records what it is given.
type Chain struct {
	mu      sync.Mutex
	entries map[digest.H256]entry
	head    digest.H256
}

// New builds a chain containing only the genesis block at height 1.
func New(g genesis.Genesis) *Chain {
	head := g.Block.Hash()

	return &Chain{
		entries: map[digest.H256]entry{
			head: {block: g.Block, state: g.State, height: 1},
		},
		head: head,
	}
}

// Insert records block with its already-computed derived state, provided
// the block's parent is already admitted. It reports whether the block was
// admitted; false means the caller must hold it as an orphan instead.
//
// Head replacement is strict: the new block becomes tip only if its height
// is strictly greater than the current tip's, so ties are broken by
// first-seen.
func (c *Chain) Insert(block database.Block, newState database.State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	hash := block.Hash()
	if _, exists := c.entries[hash]; exists {
		return false
	}

	parentEntry, ok := c.entries[block.Header.Parent]
	if !ok {
		return false
	}

	height := parentEntry.height + 1
	c.entries[hash] = entry{block: block, state: newState, height: height}

	if height > c.entries[c.head].height {
		c.head = hash
	}

	return true
}

// GetBlock returns the block stored under hash, if any.
func (c *Chain) GetBlock(hash digest.H256) (database.Block, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[hash]
	return e.block, ok
}

// GetState returns the derived state stored under hash, if any.
func (c *Chain) GetState(hash digest.H256) (database.State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[hash]
	return e.state, ok
}

// GetHeight returns the height recorded for hash, if any.
func (c *Chain) GetHeight(hash digest.H256) (uint32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[hash]
	return e.height, ok
}

// ContainsKey reports whether hash names an admitted block.
func (c *Chain) ContainsKey(hash digest.H256) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.entries[hash]
	return ok
}

// Tip returns the current head hash.
func (c *Chain) Tip() digest.H256 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.head
}

// AllBlocksInLongestChain walks from head to genesis by parent pointers and
// returns the hashes visited, head first.
func (c *Chain) AllBlocksInLongestChain() []digest.H256 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var chain []digest.H256

	curr := c.head
	for {
		e, ok := c.entries[curr]
		if !ok {
			break
		}
		chain = append(chain, curr)
		if e.block.Header.Parent == curr {
			// Genesis's parent is the zero hash, which is never an entry
			// key, so the normal ok-check above terminates the walk; this
			// guard only protects against a degenerate self-parent.
			break
		}
		curr = e.block.Header.Parent
	}

	return chain
}

// UpdateTipState replaces the state recorded for the current tip in place,
// used when an account-announce message must be reflected without minting
// a new block.
func (c *Chain) UpdateTipState(newState database.State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entries[c.head]
	e.state = newState
	c.entries[c.head] = e
}
