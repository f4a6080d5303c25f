package database

import "github.com/qcbit/gossipchain/foundation/blockchain/digest"

// Account represents a single address' state on the blockchain: its
// transaction nonce and its spendable balance.
type Account struct {
	Nonce   int32  `json:"nonce"`
	Balance uint64 `json:"balance"`
}

// NewAccount constructs a freshly seeded account with the given balance and
// a zero nonce, matching genesis seeding and newly-announced addresses.
func NewAccount(balance uint64) Account {
	return Account{
		Nonce:   0,
		Balance: balance,
	}
}

// byAddress provides a stable sort for a slice of addresses so that state
// hashing and account iteration order are deterministic across nodes.
type byAddress []digest.H160

func (b byAddress) Len() int      { return len(b) }
func (b byAddress) Swap(i, j int) { b[i], b[j] = b[j], b[i] }
func (b byAddress) Less(i, j int) bool {
	return b[i].Less(b[j])
}
