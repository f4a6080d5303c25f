package database

import (
	"sort"

	"github.com/qcbit/gossipchain/foundation/blockchain/digest"
)

// State is a snapshot of every known account after some prefix of blocks has
// been applied. Every committed block has exactly one State, derived from
// its parent's State by applying the block's transactions in the canonical
// address-list x ascending-nonce order (see ValidateBlock in validator.go).
type State struct {
	AddressList  []digest.H160                  `json:"address_list"`
	AccountState map[digest.H160]Account `json:"account_state"`
}

// NewState constructs an empty state with no known accounts.
func NewState() State {
	return State{
		AccountState: make(map[digest.H160]Account),
	}
}

// Clone returns a deep copy of the state so a caller can try applying
// transactions to a working copy without disturbing the original (the
// miner's collect_txs pass and the worker's per-block validator both need
// this).
func (s State) Clone() State {
	clone := State{
		AddressList:  make([]digest.H160, len(s.AddressList)),
		AccountState: make(map[digest.H160]Account, len(s.AccountState)),
	}
	copy(clone.AddressList, s.AddressList)
	for addr, acct := range s.AccountState {
		clone.AccountState[addr] = acct
	}
	return clone
}

// AddAddress registers addr with a freshly seeded account if it is not
// already known. It is a no-op if the address is already present, matching
// the idempotent NewAccountAddress wire message.
func (s *State) AddAddress(addr digest.H160, initialBalance uint64) bool {
	if _, exists := s.AccountState[addr]; exists {
		return false
	}

	s.AddressList = append(s.AddressList, addr)
	s.AccountState[addr] = NewAccount(initialBalance)
	return true
}

// ApplyTx debits the sender and advances its nonce. The recipient is never
// credited and no fee or reward is paid — see DESIGN.md for this design
// decision. ApplyTx assumes tx has already been validated against s; it
// does not re-check.
func (s *State) ApplyTx(tx SignedTx) {
	addr := tx.Address()
	account := s.AccountState[addr]
	account.Nonce = tx.Tx.AccountNonce
	account.Balance -= tx.Tx.Value
	s.AccountState[addr] = account
}

// Hash returns a deterministic hash over every account and its state, with
// accounts visited in address order so that two nodes holding the same
// state always compute the same hash regardless of map iteration order.
func (s State) Hash() digest.H256 {
	addrs := make([]digest.H160, len(s.AddressList))
	copy(addrs, s.AddressList)
	sort.Sort(byAddress(addrs))

	type entry struct {
		Address digest.H160 `json:"address"`
		Account Account     `json:"account"`
	}

	entries := make([]entry, len(addrs))
	for i, addr := range addrs {
		entries[i] = entry{Address: addr, Account: s.AccountState[addr]}
	}

	return digest.HashAny(entries)
}
