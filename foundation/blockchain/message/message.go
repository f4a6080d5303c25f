// Package message defines the wire protocol exchanged between peers: a
// tagged union of gossip messages, encoded deterministically with gob so
// that the same message always produces the same bytes on the wire.
package message

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/qcbit/gossipchain/foundation/blockchain/database"
	"github.com/qcbit/gossipchain/foundation/blockchain/digest"
)

// Kind identifies which variant a Message carries.
type Kind uint8

// The wire message set. Every peer delivery is framed as exactly one of
// these kinds.
const (
	KindPing Kind = iota
	KindPong
	KindNewBlockHashes
	KindGetBlocks
	KindBlocks
	KindNewTransactionHashes
	KindGetTransactions
	KindTransactions
	KindNewAccountAddress
)

func (k Kind) String() string {
	switch k {
	case KindPing:
		return "Ping"
	case KindPong:
		return "Pong"
	case KindNewBlockHashes:
		return "NewBlockHashes"
	case KindGetBlocks:
		return "GetBlocks"
	case KindBlocks:
		return "Blocks"
	case KindNewTransactionHashes:
		return "NewTransactionHashes"
	case KindGetTransactions:
		return "GetTransactions"
	case KindTransactions:
		return "Transactions"
	case KindNewAccountAddress:
		return "NewAccountAddress"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Message is the envelope carried over the wire. Exactly one payload field
// is populated, selected by Kind; the others are left at their zero value
// and simply ride along unused, which keeps encode/decode a single gob
// round-trip instead of an interface registry.
type Message struct {
	Kind Kind

	PingNonce uint64
	PongNonce string

	Hashes []digest.H256
	Blocks []database.Block
	Txs    []database.SignedTx
	Addr   digest.H160
}

// Ping constructs a Ping(n) message.
func Ping(nonce uint64) Message {
	return Message{Kind: KindPing, PingNonce: nonce}
}

// Pong constructs a Pong(n) message carrying the ping nonce as its decimal
// string, per the wire format.
func Pong(nonce uint64) Message {
	return Message{Kind: KindPong, PongNonce: fmt.Sprintf("%d", nonce)}
}

// NewBlockHashes constructs a NewBlockHashes([h...]) announcement.
func NewBlockHashes(hashes []digest.H256) Message {
	return Message{Kind: KindNewBlockHashes, Hashes: hashes}
}

// GetBlocks constructs a GetBlocks([h...]) request.
func GetBlocks(hashes []digest.H256) Message {
	return Message{Kind: KindGetBlocks, Hashes: hashes}
}

// Blocks constructs a Blocks([b...]) reply.
func Blocks(blocks []database.Block) Message {
	return Message{Kind: KindBlocks, Blocks: blocks}
}

// NewTransactionHashes constructs a NewTransactionHashes([h...]) announcement.
func NewTransactionHashes(hashes []digest.H256) Message {
	return Message{Kind: KindNewTransactionHashes, Hashes: hashes}
}

// GetTransactions constructs a GetTransactions([h...]) request.
func GetTransactions(hashes []digest.H256) Message {
	return Message{Kind: KindGetTransactions, Hashes: hashes}
}

// Transactions constructs a Transactions([st...]) body-rebroadcast.
func Transactions(txs []database.SignedTx) Message {
	return Message{Kind: KindTransactions, Txs: txs}
}

// NewAccountAddress constructs a NewAccountAddress(addr) announcement.
func NewAccountAddress(addr digest.H160) Message {
	return Message{Kind: KindNewAccountAddress, Addr: addr}
}

// Encode serializes m into its deterministic wire form.
func Encode(m Message) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		return nil, fmt.Errorf("message: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode deserializes b into a Message. A malformed payload returns an
// error; the caller is expected to drop the message and keep the
// connection rather than treat this as fatal.
func Decode(b []byte) (Message, error) {
	var m Message
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&m); err != nil {
		return Message{}, fmt.Errorf("message: decode: %w", err)
	}
	return m, nil
}
