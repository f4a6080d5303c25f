// Package genesis builds the fixed starting point every node boots from:
// block 1, its difficulty, and the pre-seeded accounts that fund every
// transaction, since no block reward is ever paid.
package genesis

import (
	"github.com/qcbit/gossipchain/foundation/blockchain/database"
	"github.com/qcbit/gossipchain/foundation/blockchain/digest"
	"github.com/qcbit/gossipchain/foundation/blockchain/signature"
)

// InitCoins is the balance each pre-seeded genesis account starts with.
const InitCoins = 25

// numSeededAccounts is the number of deterministic identities genesis
// derives and funds.
const numSeededAccounts = 3

// Difficulty is the fixed proof-of-work threshold every node's genesis
// block carries. No difficulty retargeting ever adjusts it.
func Difficulty() digest.H256 {
	var d digest.H256
	d[0] = 0x10
	return d
}

// Genesis is the fixed starting point of the chain: its block, the state
// that block produces, and the identities that were seeded into it (useful
// to a node or test harness that needs to spend from a seeded account).
type Genesis struct {
	Block      database.Block
	State      database.State
	Identities []signature.KeyPair
}

// SeedIdentities derives the deterministic genesis identities by filling
// the key-generation randomness channel with the constant bytes 0, 1, 2,
// one per account, so that every node derives byte-for-byte identical
// identities without any coordination.
func SeedIdentities() ([]signature.KeyPair, error) {
	identities := make([]signature.KeyPair, numSeededAccounts)
	for i := 0; i < numSeededAccounts; i++ {
		kp, err := signature.Generate(signature.FixedByteReader{Byte: byte(i)})
		if err != nil {
			return nil, err
		}
		identities[i] = kp
	}
	return identities, nil
}

// New builds genesis: the fixed-difficulty, empty-content block-1 and the
// state produced by seeding each deterministic identity with InitCoins.
func New() (Genesis, error) {
	identities, err := SeedIdentities()
	if err != nil {
		return Genesis{}, err
	}

	state := database.NewState()
	for _, kp := range identities {
		state.AddAddress(kp.Address, InitCoins)
	}

	header := database.Header{
		Parent:     digest.ZeroH256,
		Nonce:      0,
		Difficulty: Difficulty(),
		Timestamp:  0,
		MerkleRoot: database.MerkleRoot(nil),
	}

	block := database.Block{
		Header:  header,
		Content: nil,
	}

	return Genesis{
		Block:      block,
		State:      state,
		Identities: identities,
	}, nil
}
