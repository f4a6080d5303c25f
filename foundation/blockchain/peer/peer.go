// Package peer models the set of known remote nodes and the contract the
// core consensus engine requires from whatever transport carries bytes to
// and from them. The transport itself (TCP accept loop, per-connection
// read/write goroutines) is an external collaborator; this package only
// names the shape the core depends on.
package peer

import "sync"

// Peer identifies a remote node by its host address.
type Peer struct {
	Host string
}

// Match reports whether other names the same host.
func (p Peer) Match(other Peer) bool {
	return p.Host == other.Host
}

func (p Peer) String() string {
	return p.Host
}

// PeerSet is the de-duplicated collection of known peers, guarded by its
// own mutex so the network worker pool can read and update it concurrently.
type PeerSet struct {
	mu    sync.RWMutex
	peers map[string]Peer
}

// NewPeerSet constructs an empty peer set.
func NewPeerSet() *PeerSet {
	return &PeerSet{
		peers: make(map[string]Peer),
	}
}

// Add inserts peer if its host is not already known. It reports whether the
// peer was newly added.
func (s *PeerSet) Add(peer Peer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.peers[peer.Host]; exists {
		return false
	}
	s.peers[peer.Host] = peer
	return true
}

// Remove drops peer's host from the set, if present.
func (s *PeerSet) Remove(peer Peer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.peers, peer.Host)
}

// Copy returns a snapshot slice of every known peer.
func (s *PeerSet) Copy() []Peer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	peers := make([]Peer, 0, len(s.peers))
	for _, p := range s.peers {
		peers = append(peers, p)
	}
	return peers
}

// Len reports the number of known peers.
func (s *PeerSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.peers)
}
