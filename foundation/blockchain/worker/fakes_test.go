package worker

import (
	"sync"

	"github.com/qcbit/gossipchain/foundation/blockchain/message"
	"github.com/qcbit/gossipchain/foundation/blockchain/peer"
)

// fakeServer is an in-memory stand-in for the transport the core depends
// on: it records every broadcast and lets a test push deliveries onto the
// inbound channel a NetworkWorker drains.
type fakeServer struct {
	mu         sync.Mutex
	broadcasts []message.Message
	inbound    chan peer.Inbound
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		inbound: make(chan peer.Inbound, 64),
	}
}

func (s *fakeServer) Broadcast(m message.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcasts = append(s.broadcasts, m)
	return nil
}

func (s *fakeServer) Inbound() <-chan peer.Inbound {
	return s.inbound
}

func (s *fakeServer) Broadcasts() []message.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]message.Message, len(s.broadcasts))
	copy(out, s.broadcasts)
	return out
}

func (s *fakeServer) deliver(m message.Message, h peer.Handle) {
	s.inbound <- peer.Inbound{Msg: m, Handle: h}
}

// fakeHandle is a per-peer handle that records what was written to it.
type fakeHandle struct {
	mu      sync.Mutex
	peer    peer.Peer
	written []message.Message
}

func newFakeHandle(host string) *fakeHandle {
	return &fakeHandle{peer: peer.Peer{Host: host}}
}

func (h *fakeHandle) Write(m message.Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.written = append(h.written, m)
	return nil
}

func (h *fakeHandle) Peer() peer.Peer {
	return h.peer
}

func (h *fakeHandle) Written() []message.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]message.Message, len(h.written))
	copy(out, h.written)
	return out
}
