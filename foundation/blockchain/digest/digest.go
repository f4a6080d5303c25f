// Package digest provides the fixed-width identifier types used across the
// blockchain: 32-byte hashes (H256) and 20-byte addresses (H160), both
// big-endian with a total ordering.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"
)

// H256Size is the byte width of a hash.
const H256Size = 32

// H160Size is the byte width of an address.
const H160Size = 20

// H256 is a 32-byte, big-endian hash. It is used as a block id, a
// transaction id, and as a difficulty threshold.
type H256 [H256Size]byte

// ZeroH256 is the hash used as the parent pointer of the genesis block.
var ZeroH256 H256

// H160 is a 20-byte, big-endian account address.
type H160 [H160Size]byte

// ZeroH160 is the address with every byte set to zero.
var ZeroH160 H160

// Hashable is the single-method capability required to be a Merkle tree leaf
// or to be content-addressed by Hash. No inheritance is required: any type
// that can produce deterministic bytes for hashing satisfies it by having a
// Hash function written for it, or by being hashable via HashAny.
type Hashable interface {
	Hash() H256
}

// HashAny returns the SHA-256 digest of the deterministic JSON encoding of
// value. It underlies the hash of every domain type that does not need a
// hand-rolled encoding (transactions, block headers, account snapshots).
func HashAny(value any) H256 {
	data, err := json.Marshal(value)
	if err != nil {
		return ZeroH256
	}
	return SumBytes(data)
}

// SumBytes returns the SHA-256 digest of data as an H256.
func SumBytes(data []byte) H256 {
	return H256(sha256.Sum256(data))
}

// String returns the lower-case hex encoding of the hash, prefixed with 0x.
func (h H256) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// Bytes returns the underlying bytes of the hash.
func (h H256) Bytes() []byte {
	return h[:]
}

// IsZero reports whether the hash is the zero hash.
func (h H256) IsZero() bool {
	return h == ZeroH256
}

// Less reports whether h is numerically less than other, comparing both as
// unsigned big-endian 256-bit integers. This is the ordering used for the
// proof-of-work inequality: a block is valid only if hash(header) < difficulty.
func (h H256) Less(other H256) bool {
	var a, b uint256.Int
	a.SetBytes(h[:])
	b.SetBytes(other[:])
	return a.Lt(&b)
}

// Compare returns -1, 0, or 1 if h is less than, equal to, or greater than
// other, giving H256 a total ordering.
func (h H256) Compare(other H256) int {
	var a, b uint256.Int
	a.SetBytes(h[:])
	b.SetBytes(other[:])
	return a.Cmp(&b)
}

// MarshalJSON encodes the hash as a hex string so it round-trips over the
// wire and through the JSON encoding used for hashing composite structs.
func (h H256) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// MarshalText implements encoding.TextMarshaler so H256 can be used as a map key.
func (h H256) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so H256 can be used as a map key.
func (h *H256) UnmarshalText(text []byte) error {
	decoded, err := decodeHex(string(text), H256Size)
	if err != nil {
		return err
	}
	copy(h[:], decoded)
	return nil
}

// UnmarshalJSON decodes a hex-encoded hash produced by MarshalJSON.
func (h *H256) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := decodeHex(s, H256Size)
	if err != nil {
		return err
	}
	copy(h[:], decoded)
	return nil
}

// String returns the lower-case hex encoding of the address, prefixed with 0x.
func (a H160) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// Bytes returns the underlying bytes of the address.
func (a H160) Bytes() []byte {
	return a[:]
}

// MarshalJSON encodes the address as a hex string.
func (a H160) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// MarshalText implements encoding.TextMarshaler so H160 can be used as a map key.
func (a H160) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so H160 can be used as a map key.
func (a *H160) UnmarshalText(text []byte) error {
	decoded, err := decodeHex(string(text), H160Size)
	if err != nil {
		return err
	}
	copy(a[:], decoded)
	return nil
}

// UnmarshalJSON decodes a hex-encoded address produced by MarshalJSON.
func (a *H160) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := decodeHex(s, H160Size)
	if err != nil {
		return err
	}
	copy(a[:], decoded)
	return nil
}

// Less reports whether a is numerically less than other.
func (a H160) Less(other H160) bool {
	var x, y uint256.Int
	x.SetBytes(a[:])
	y.SetBytes(other[:])
	return x.Lt(&y)
}

// AddressFromPublicKey derives an account address as the leading 20 bytes of
// SHA-256(publicKey). This is the canonical derivation: every code path
// (genesis seeding, transaction signing, network-received transactions)
// routes through this function rather than truncating a digest inline.
func AddressFromPublicKey(publicKey []byte) H160 {
	sum := sha256.Sum256(publicKey)
	var addr H160
	copy(addr[:], sum[:H160Size])
	return addr
}

func decodeHex(s string, size int) ([]byte, error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(b) != size {
		return nil, errInvalidLength{want: size, got: len(b)}
	}
	return b, nil
}

type errInvalidLength struct {
	want, got int
}

func (e errInvalidLength) Error() string {
	return fmt.Sprintf("digest: invalid encoded length: want %d bytes, got %d", e.want, e.got)
}
