package database

import (
	"errors"
	"sort"

	"github.com/qcbit/gossipchain/foundation/blockchain/digest"
)

// ErrInvalidBlock is returned by ValidateBlock when some transaction in the
// block cannot be applied against the parent state in sender-bucketed,
// ascending-nonce order.
var ErrInvalidBlock = errors.New("database: block transactions do not apply cleanly to parent state")

// ValidateBlock applies a block's transactions to its parent state: bucket
// the block's transactions by sender address using parentState's address
// list, sort each bucket by ascending account nonce, then apply each bucket
// in address-list order, aborting on the first transaction that fails
// Validate. It returns the resulting state on success.
//
// This is deterministic and sender-parallel by construction: the
// application order is entirely a function of parentState.AddressList and
// each transaction's nonce, never the order transactions happened to arrive
// on the wire or sit in the block's content slice.
func ValidateBlock(block Block, parentState State) (State, error) {
	buckets := make(map[digest.H160][]SignedTx, len(parentState.AddressList))
	for _, addr := range parentState.AddressList {
		buckets[addr] = nil
	}

	for _, tx := range block.Content {
		addr := tx.Address()
		if _, known := buckets[addr]; !known {
			continue
		}
		buckets[addr] = append(buckets[addr], tx)
	}

	state := parentState.Clone()

	for _, addr := range parentState.AddressList {
		bucket := buckets[addr]
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].Tx.AccountNonce < bucket[j].Tx.AccountNonce
		})

		for _, tx := range bucket {
			if err := tx.Validate(state); err != nil {
				return State{}, ErrInvalidBlock
			}
			state.ApplyTx(tx)
		}
	}

	return state, nil
}
