package digest_test

import (
	"encoding/json"
	"testing"

	"github.com/qcbit/gossipchain/foundation/blockchain/digest"
)

func TestH256_Less(t *testing.T) {
	var low, high digest.H256
	low[31] = 1
	high[31] = 2

	if !low.Less(high) {
		t.Fatalf("expected %s < %s", low, high)
	}
	if high.Less(low) {
		t.Fatalf("expected %s not < %s", high, low)
	}
	if low.Less(low) {
		t.Fatalf("expected a hash to not be less than itself")
	}
}

func TestH256_Less_HighOrderByte(t *testing.T) {
	var low, high digest.H256
	low[0] = 0x01
	high[0] = 0x02
	high[31] = 0x00
	low[31] = 0xff

	if !low.Less(high) {
		t.Fatalf("expected ordering to be dominated by the most significant byte")
	}
}

func TestH256_JSONRoundTrip(t *testing.T) {
	h := digest.SumBytes([]byte("round trip me"))

	data, err := json.Marshal(h)
	if err != nil {
		t.Fatalf("marshal: %s", err)
	}

	var got digest.H256
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %s", err)
	}

	if got != h {
		t.Fatalf("got %s, want %s", got, h)
	}
}

func TestH256_MapKeyRoundTrip(t *testing.T) {
	m := map[digest.H256]int{
		digest.SumBytes([]byte("a")): 1,
		digest.SumBytes([]byte("b")): 2,
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %s", err)
	}

	var got map[digest.H256]int
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %s", err)
	}

	if len(got) != len(m) {
		t.Fatalf("got %d entries, want %d", len(got), len(m))
	}
}

func TestAddressFromPublicKey_Deterministic(t *testing.T) {
	pub := []byte("a fake 32-byte ed25519 pub key!")

	a1 := digest.AddressFromPublicKey(pub)
	a2 := digest.AddressFromPublicKey(pub)

	if a1 != a2 {
		t.Fatalf("expected deterministic address derivation")
	}

	other := digest.AddressFromPublicKey([]byte("a different public key........."))
	if a1 == other {
		t.Fatalf("expected different keys to produce different addresses")
	}
}

func TestH256_ZeroValue(t *testing.T) {
	var z digest.H256
	if !z.IsZero() {
		t.Fatalf("expected zero value hash to report IsZero")
	}
	if z != digest.ZeroH256 {
		t.Fatalf("expected zero value to equal ZeroH256")
	}
}
