package peer

import "github.com/qcbit/gossipchain/foundation/blockchain/message"

// Handle is a per-peer connection handle: the core never dials or accepts
// connections itself, it only ever writes a Message to one it was handed.
type Handle interface {
	// Write sends m to this peer alone.
	Write(m message.Message) error

	// Peer identifies which remote node this handle talks to.
	Peer() Peer
}

// Inbound is one message received from the network, paired with the handle
// it arrived on so a reply can be addressed back to the sender alone.
type Inbound struct {
	Msg    message.Message
	Handle Handle
}

// Server is the contract the core consensus engine requires of its
// transport: a way to reach every peer at once, and a channel of inbound
// deliveries the network workers drain.
type Server interface {
	// Broadcast sends m to every known peer.
	Broadcast(m message.Message) error

	// Inbound returns the channel of messages arriving from any peer.
	Inbound() <-chan Inbound
}
