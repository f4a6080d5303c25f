package database

import (
	"github.com/qcbit/gossipchain/foundation/blockchain/digest"
	"github.com/qcbit/gossipchain/foundation/blockchain/merkle"
)

// Header carries everything about a block except its transactions. The
// block hash is the hash of the header alone, so a peer only needs headers
// to walk and audit the chain; the transactions are needed only to rebuild
// account state.
type Header struct {
	Parent     digest.H256 `json:"parent"`
	Nonce      uint32      `json:"nonce"`
	Difficulty digest.H256 `json:"difficulty"`
	Timestamp  uint64      `json:"timestamp"` // microseconds since epoch
	MerkleRoot digest.H256 `json:"merkle_root"`
}

// Hash returns the block hash: SHA-256 of the header's deterministic
// encoding. Implements digest.Hashable and merkle.Hashable.
func (h Header) Hash() digest.H256 {
	return digest.HashAny(h)
}

// Block is a header plus its ordered content.
type Block struct {
	Header  Header     `json:"header"`
	Content []SignedTx `json:"content"`
}

// Hash returns the block's hash, which is its header's hash: the content is
// committed to via Header.MerkleRoot, not hashed again directly.
func (b Block) Hash() digest.H256 {
	return b.Header.Hash()
}

// MerkleRoot computes the Merkle root over Content, the value that must
// appear in Header.MerkleRoot for the block to be valid.
func MerkleRoot(content []SignedTx) digest.H256 {
	return merkle.NewTree(content).Root()
}

// SatisfiesPoW reports whether the block's hash is strictly less than its
// declared difficulty threshold. The same strict "<" is used uniformly for
// both mining success and admission.
func (b Block) SatisfiesPoW() bool {
	return b.Hash().Less(b.Header.Difficulty)
}
