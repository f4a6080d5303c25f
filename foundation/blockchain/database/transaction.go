package database

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/qcbit/gossipchain/foundation/blockchain/digest"
	"github.com/qcbit/gossipchain/foundation/blockchain/signature"
)

// Tx is a single account-to-account transfer. AccountNonce is the intended
// post-state nonce of the sender: a transaction with nonce N is only valid
// against a sender whose current state nonce is N-1.
type Tx struct {
	Recipient    digest.H160 `json:"recipient"`
	Value        uint64      `json:"value"`
	AccountNonce int32       `json:"account_nonce" validate:"required"`
}

// Hash returns the content hash of the unsigned transaction.
func (tx Tx) Hash() digest.H256 {
	return signature.Hash(tx)
}

// SignedTx wraps a Tx with the signature and public key that authorize it.
// The sender address is derived from PublicKey, never stored directly.
type SignedTx struct {
	Tx        Tx     `json:"tx" validate:"required"`
	Signature []byte `json:"signature" validate:"required"`
	PublicKey []byte `json:"public_key" validate:"required"`
}

// NewSignedTx signs tx with keyPair and wraps it for transmission.
func NewSignedTx(tx Tx, keyPair signature.KeyPair) (SignedTx, error) {
	sig, err := signature.Sign(tx, keyPair.PrivateKey)
	if err != nil {
		return SignedTx{}, err
	}

	return SignedTx{
		Tx:        tx,
		Signature: sig,
		PublicKey: keyPair.PublicKey,
	}, nil
}

// Hash returns the content hash of the full signed wrapper (tx + signature +
// public key), used as the transaction's identity in the mempool and on the
// wire. Implements merkle.Hashable.
func (tx SignedTx) Hash() digest.H256 {
	return signature.Hash(tx)
}

// Address returns the sender address, derived from the public key.
func (tx SignedTx) Address() digest.H160 {
	return signature.AddressOf(tx.PublicKey)
}

// VerifiesSignature reports whether the signature is valid for Tx under
// PublicKey. It does not consult any account state.
func (tx SignedTx) VerifiesSignature() bool {
	if len(tx.PublicKey) != ed25519.PublicKeySize {
		return false
	}
	return signature.Verify(tx.Tx, ed25519.PublicKey(tx.PublicKey), tx.Signature)
}

// String implements fmt.Stringer for concise logging.
func (tx SignedTx) String() string {
	return fmt.Sprintf("%s: nonce %d, value %d, to %s", tx.Address(), tx.Tx.AccountNonce, tx.Tx.Value, tx.Tx.Recipient)
}

// ErrUnknownSender is returned when the validity predicate is asked about a
// sender address the state has no account for.
var ErrUnknownSender = errors.New("database: unknown sender account")

// ErrInvalidSequence is returned when a transaction's nonce or balance does
// not match what the sender's current state allows.
var ErrInvalidSequence = errors.New("database: invalid nonce or insufficient balance")

// Validate checks the transaction against the supplied state: the signature
// must verify, the sender must be known, the nonce must be exactly one
// greater than the sender's current nonce, and the sender's balance must
// cover the value. It does not mutate state.
func (tx SignedTx) Validate(state State) error {
	if !tx.VerifiesSignature() {
		return signature.ErrInvalidSignature
	}

	account, ok := state.AccountState[tx.Address()]
	if !ok {
		return ErrUnknownSender
	}

	if account.Nonce+1 != tx.Tx.AccountNonce || account.Balance < tx.Tx.Value {
		return ErrInvalidSequence
	}

	return nil
}

// Erasable reports whether the mempool may drop tx outright, rather than
// merely skip it for this round: an invalid signature, a stale or
// already-applied nonce, or a value the sender's current balance can never
// cover.
func (tx SignedTx) Erasable(account Account) bool {
	if !tx.VerifiesSignature() {
		return true
	}
	return tx.Tx.AccountNonce <= account.Nonce || tx.Tx.Value > account.Balance
}
