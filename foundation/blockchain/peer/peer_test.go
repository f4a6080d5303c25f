package peer_test

import (
	"testing"

	"github.com/qcbit/gossipchain/foundation/blockchain/peer"
)

func TestPeerSet_AddDedupesByHost(t *testing.T) {
	set := peer.NewPeerSet()

	if !set.Add(peer.Peer{Host: "10.0.0.1:9000"}) {
		t.Fatalf("expected first add to report true")
	}
	if set.Add(peer.Peer{Host: "10.0.0.1:9000"}) {
		t.Fatalf("expected duplicate host add to report false")
	}
	if set.Len() != 1 {
		t.Fatalf("got len %d, want 1", set.Len())
	}
}

func TestPeerSet_RemoveAndCopy(t *testing.T) {
	set := peer.NewPeerSet()
	a := peer.Peer{Host: "10.0.0.1:9000"}
	b := peer.Peer{Host: "10.0.0.2:9000"}

	set.Add(a)
	set.Add(b)
	set.Remove(a)

	copied := set.Copy()
	if len(copied) != 1 || copied[0].Host != b.Host {
		t.Fatalf("got %v, want only %v", copied, b)
	}
}

func TestPeer_Match(t *testing.T) {
	a := peer.Peer{Host: "10.0.0.1:9000"}
	b := peer.Peer{Host: "10.0.0.1:9000"}
	c := peer.Peer{Host: "10.0.0.2:9000"}

	if !a.Match(b) {
		t.Fatalf("expected identical hosts to match")
	}
	if a.Match(c) {
		t.Fatalf("expected different hosts not to match")
	}
}
