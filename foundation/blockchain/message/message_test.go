package message_test

import (
	"testing"

	"github.com/qcbit/gossipchain/foundation/blockchain/digest"
	"github.com/qcbit/gossipchain/foundation/blockchain/message"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	var h digest.H256
	h[0] = 0x42

	cases := []message.Message{
		message.Ping(7),
		message.Pong(7),
		message.NewBlockHashes([]digest.H256{h}),
		message.GetBlocks([]digest.H256{h}),
	}

	for _, m := range cases {
		encoded, err := message.Encode(m)
		if err != nil {
			t.Fatalf("encode %s: %s", m.Kind, err)
		}

		decoded, err := message.Decode(encoded)
		if err != nil {
			t.Fatalf("decode %s: %s", m.Kind, err)
		}

		if decoded.Kind != m.Kind {
			t.Fatalf("got kind %s, want %s", decoded.Kind, m.Kind)
		}
	}
}

func TestDecode_MalformedPayloadErrors(t *testing.T) {
	if _, err := message.Decode([]byte("not a gob stream")); err == nil {
		t.Fatalf("expected decode of a malformed payload to error")
	}
}

func TestPong_CarriesDecimalNonce(t *testing.T) {
	m := message.Pong(12345)
	if m.PongNonce != "12345" {
		t.Fatalf("got %q, want %q", m.PongNonce, "12345")
	}
}

func TestKind_String(t *testing.T) {
	if message.KindPing.String() != "Ping" {
		t.Fatalf("got %q, want %q", message.KindPing.String(), "Ping")
	}
}
