package signature_test

import (
	"crypto/rand"
	"testing"

	"github.com/qcbit/gossipchain/foundation/blockchain/signature"
)

type tx struct {
	Recipient string
	Value     uint64
	Nonce     int32
}

func TestSignVerify_RoundTrip(t *testing.T) {
	kp, err := signature.Generate(rand.Reader)
	if err != nil {
		t.Fatalf("generate: %s", err)
	}

	payload := tx{Recipient: "bob", Value: 10, Nonce: 1}

	sig, err := signature.Sign(payload, kp.PrivateKey)
	if err != nil {
		t.Fatalf("sign: %s", err)
	}

	if !signature.Verify(payload, kp.PublicKey, sig) {
		t.Fatalf("expected signature to verify")
	}
}

func TestVerify_RejectsTamperedPayload(t *testing.T) {
	kp, err := signature.Generate(rand.Reader)
	if err != nil {
		t.Fatalf("generate: %s", err)
	}

	payload := tx{Recipient: "bob", Value: 10, Nonce: 1}
	sig, err := signature.Sign(payload, kp.PrivateKey)
	if err != nil {
		t.Fatalf("sign: %s", err)
	}

	tampered := payload
	tampered.Value = 1_000_000

	if signature.Verify(tampered, kp.PublicKey, sig) {
		t.Fatalf("expected verification of a tampered payload to fail")
	}
}

func TestVerify_RejectsWrongKey(t *testing.T) {
	kp1, err := signature.Generate(rand.Reader)
	if err != nil {
		t.Fatalf("generate: %s", err)
	}
	kp2, err := signature.Generate(rand.Reader)
	if err != nil {
		t.Fatalf("generate: %s", err)
	}

	payload := tx{Recipient: "bob", Value: 10, Nonce: 1}
	sig, err := signature.Sign(payload, kp1.PrivateKey)
	if err != nil {
		t.Fatalf("sign: %s", err)
	}

	if signature.Verify(payload, kp2.PublicKey, sig) {
		t.Fatalf("expected verification under a different public key to fail")
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	kp1, err := signature.Generate(signature.FixedByteReader{Byte: 7})
	if err != nil {
		t.Fatalf("generate: %s", err)
	}
	kp2, err := signature.Generate(signature.FixedByteReader{Byte: 7})
	if err != nil {
		t.Fatalf("generate: %s", err)
	}

	if kp1.Address != kp2.Address {
		t.Fatalf("expected identical fixed-byte streams to produce the same address")
	}

	kp3, err := signature.Generate(signature.FixedByteReader{Byte: 8})
	if err != nil {
		t.Fatalf("generate: %s", err)
	}
	if kp1.Address == kp3.Address {
		t.Fatalf("expected different fixed-byte streams to produce different addresses")
	}
}

func TestAddressOf_MatchesGeneratedIdentity(t *testing.T) {
	kp, err := signature.Generate(rand.Reader)
	if err != nil {
		t.Fatalf("generate: %s", err)
	}

	if got := signature.AddressOf(kp.PublicKey); got != kp.Address {
		t.Fatalf("AddressOf(pub) = %s, want %s", got, kp.Address)
	}
}
