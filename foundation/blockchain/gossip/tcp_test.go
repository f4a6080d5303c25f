package gossip

import (
	"testing"
	"time"

	"github.com/qcbit/gossipchain/foundation/blockchain/digest"
	"github.com/qcbit/gossipchain/foundation/blockchain/message"
	"github.com/qcbit/gossipchain/foundation/blockchain/peer"
)

func waitForInbound(t *testing.T, ch <-chan peer.Inbound) peer.Inbound {
	t.Helper()

	select {
	case in := <-ch:
		return in
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an inbound message")
		return peer.Inbound{}
	}
}

func TestServer_DialDeliversMessageToListener(t *testing.T) {
	listener := New(nil)
	if err := listener.Listen("127.0.0.1:0"); err != nil {
		t.Fatalf("listen: %s", err)
	}
	defer listener.Close()

	dialer := New(nil)
	if err := dialer.Dial(peer.Peer{Host: listener.ln.Addr().String()}); err != nil {
		t.Fatalf("dial: %s", err)
	}

	if err := dialer.Broadcast(message.Ping(7)); err != nil {
		t.Fatalf("broadcast: %s", err)
	}

	in := waitForInbound(t, listener.Inbound())
	if in.Msg.Kind != message.KindPing || in.Msg.PingNonce != 7 {
		t.Fatalf("got %+v, want Ping(7)", in.Msg)
	}
}

func TestConn_WriteReachesOnlyThatPeer(t *testing.T) {
	listener := New(nil)
	if err := listener.Listen("127.0.0.1:0"); err != nil {
		t.Fatalf("listen: %s", err)
	}
	defer listener.Close()

	dialer := New(nil)
	if err := dialer.Dial(peer.Peer{Host: listener.ln.Addr().String()}); err != nil {
		t.Fatalf("dial: %s", err)
	}

	// The listener only gets a handle for the dialer once a message arrives.
	if err := dialer.Broadcast(message.Ping(1)); err != nil {
		t.Fatalf("broadcast: %s", err)
	}

	in := waitForInbound(t, listener.Inbound())

	var hash digest.H256
	hash[0] = 0x42
	if err := in.Handle.Write(message.NewBlockHashes([]digest.H256{hash})); err != nil {
		t.Fatalf("reply write: %s", err)
	}

	reply := waitForInbound(t, dialer.Inbound())
	if reply.Msg.Kind != message.KindNewBlockHashes || len(reply.Msg.Hashes) != 1 || reply.Msg.Hashes[0] != hash {
		t.Fatalf("got %+v, want a single NewBlockHashes reply", reply.Msg)
	}
}

func TestServer_PeerCountTracksLiveConnections(t *testing.T) {
	listener := New(nil)
	if err := listener.Listen("127.0.0.1:0"); err != nil {
		t.Fatalf("listen: %s", err)
	}
	defer listener.Close()

	dialer := New(nil)
	if err := dialer.Dial(peer.Peer{Host: listener.ln.Addr().String()}); err != nil {
		t.Fatalf("dial: %s", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if listener.PeerCount() == 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if listener.PeerCount() != 1 {
		t.Fatalf("got %d peers, want 1", listener.PeerCount())
	}
	if dialer.PeerCount() != 1 {
		t.Fatalf("got %d peers on the dialing side, want 1", dialer.PeerCount())
	}
}
