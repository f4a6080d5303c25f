// Package signature handles all lower level support for signing and
// verifying transactions with Ed25519.
package signature

import (
	"crypto/ed25519"
	"errors"
	"io"

	"github.com/qcbit/gossipchain/foundation/blockchain/digest"
)

// ErrInvalidSignature is returned when a signature does not verify against
// the claimed public key and message.
var ErrInvalidSignature = errors.New("signature: invalid signature")

// KeyPair is an Ed25519 identity: a private key capable of signing, and the
// address derived from its public half.
type KeyPair struct {
	PrivateKey ed25519.PrivateKey
	PublicKey  ed25519.PublicKey
	Address    digest.H160
}

// Generate creates a new random Ed25519 key pair using the supplied entropy
// source. Pass crypto_rand.Reader for real randomness, or a fixed-byte
// reader (see FixedByteReader) to reproduce a deterministic
// identity.
func Generate(rand io.Reader) (KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand)
	if err != nil {
		return KeyPair{}, err
	}

	return KeyPair{
		PrivateKey: priv,
		PublicKey:  pub,
		Address:    digest.AddressFromPublicKey(pub),
	}, nil
}

// Sign signs the hash of value with the private key.
func Sign(value any, privateKey ed25519.PrivateKey) ([]byte, error) {
	h := digest.HashAny(value)
	return ed25519.Sign(privateKey, h.Bytes()), nil
}

// Verify reports whether signature is a valid Ed25519 signature of the hash
// of value under publicKey.
func Verify(value any, publicKey ed25519.PublicKey, sig []byte) bool {
	h := digest.HashAny(value)
	return ed25519.Verify(publicKey, h.Bytes(), sig)
}

// AddressOf derives the sender address from a raw Ed25519 public key.
func AddressOf(publicKey []byte) digest.H160 {
	return digest.AddressFromPublicKey(publicKey)
}

// Hash returns the SHA-256 digest of the deterministic JSON encoding of
// value. It's the same content-addressing scheme used for blocks, headers,
// and transactions: json.Marshal then SHA-256, never a type-specific
// encoding, so Hash(x) == Hash(y) iff x and y marshal identically.
func Hash(value any) digest.H256 {
	return digest.HashAny(value)
}
