// Package gossip is the minimal TCP transport that carries message.Message
// values between peers: a length-prefixed gob frame over a persistent
// connection, in either direction. It is the one concrete implementation of
// peer.Server and peer.Handle this node ships with; anything that satisfies
// those two interfaces can stand in for it.
package gossip

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/qcbit/gossipchain/foundation/blockchain/message"
	"github.com/qcbit/gossipchain/foundation/blockchain/peer"
)

// EventHandler is the same fire-and-forget logging hook every worker in
// this module accepts.
type EventHandler func(format string, args ...any)

func (h EventHandler) fire(format string, args ...any) {
	if h != nil {
		h(format, args...)
	}
}

// maxFrameSize bounds a single decoded message so a misbehaving or corrupt
// peer cannot make a read loop allocate without limit.
const maxFrameSize = 32 << 20

// Conn is one persistent connection to a remote peer. It implements
// peer.Handle.
type Conn struct {
	mu   sync.Mutex
	nc   net.Conn
	peer peer.Peer
}

// Write encodes m and sends it to this peer alone, framed with a 4-byte
// big-endian length prefix.
func (c *Conn) Write(m message.Message) error {
	b, err := message.Encode(m)
	if err != nil {
		return fmt.Errorf("gossip: encode: %w", err)
	}

	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(b)))

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.nc.Write(length[:]); err != nil {
		return fmt.Errorf("gossip: write length: %w", err)
	}
	if _, err := c.nc.Write(b); err != nil {
		return fmt.Errorf("gossip: write payload: %w", err)
	}
	return nil
}

// Peer identifies the remote node this connection talks to.
func (c *Conn) Peer() peer.Peer {
	return c.peer
}

// Server listens for inbound connections and dials outbound ones, fanning
// every decoded message into a single channel the network worker pool
// drains. It implements peer.Server.
type Server struct {
	mu        sync.Mutex
	ln        net.Listener
	conns     map[string]*Conn
	inbound   chan peer.Inbound
	evHandler EventHandler
}

// New constructs a Server with no listener yet; call Listen to accept
// connections and Dial to open outbound ones.
func New(evHandler EventHandler) *Server {
	return &Server{
		conns:     make(map[string]*Conn),
		inbound:   make(chan peer.Inbound, 256),
		evHandler: evHandler,
	}
}

// Listen binds host and starts accepting connections on its own goroutine.
func (s *Server) Listen(host string) error {
	ln, err := net.Listen("tcp", host)
	if err != nil {
		return fmt.Errorf("gossip: listen %s: %w", host, err)
	}
	s.ln = ln

	go s.acceptLoop()
	return nil
}

// Close stops accepting new connections. Connections already established
// keep running until their peer closes them.
func (s *Server) Close() error {
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}

func (s *Server) acceptLoop() {
	for {
		nc, err := s.ln.Accept()
		if err != nil {
			s.evHandler.fire("gossip: accept: %s", err)
			return
		}
		s.adopt(nc, peer.Peer{Host: nc.RemoteAddr().String()})
	}
}

// Dial opens an outbound connection to p and begins reading its messages
// into the shared inbound channel.
func (s *Server) Dial(p peer.Peer) error {
	nc, err := net.Dial("tcp", p.Host)
	if err != nil {
		return fmt.Errorf("gossip: dial %s: %w", p.Host, err)
	}
	s.adopt(nc, p)
	return nil
}

func (s *Server) adopt(nc net.Conn, p peer.Peer) {
	conn := &Conn{nc: nc, peer: p}

	s.mu.Lock()
	s.conns[p.Host] = conn
	s.mu.Unlock()

	s.evHandler.fire("gossip: connected: %s", p)
	go s.readLoop(conn)
}

func (s *Server) readLoop(conn *Conn) {
	r := bufio.NewReader(conn.nc)

	defer func() {
		conn.nc.Close()
		s.mu.Lock()
		delete(s.conns, conn.peer.Host)
		s.mu.Unlock()
		s.evHandler.fire("gossip: disconnected: %s", conn.peer)
	}()

	for {
		var length [4]byte
		if _, err := io.ReadFull(r, length[:]); err != nil {
			if err != io.EOF {
				s.evHandler.fire("gossip: read length from %s: %s", conn.peer, err)
			}
			return
		}

		size := binary.BigEndian.Uint32(length[:])
		if size > maxFrameSize {
			s.evHandler.fire("gossip: frame from %s too large: %d bytes", conn.peer, size)
			return
		}

		payload := make([]byte, size)
		if _, err := io.ReadFull(r, payload); err != nil {
			s.evHandler.fire("gossip: read payload from %s: %s", conn.peer, err)
			return
		}

		msg, err := message.Decode(payload)
		if err != nil {
			s.evHandler.fire("gossip: decode from %s: %s", conn.peer, err)
			continue
		}

		s.inbound <- peer.Inbound{Msg: msg, Handle: conn}
	}
}

// Broadcast sends m to every connection currently established.
func (s *Server) Broadcast(m message.Message) error {
	s.mu.Lock()
	conns := make([]*Conn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	var firstErr error
	for _, c := range conns {
		if err := c.Write(m); err != nil {
			s.evHandler.fire("gossip: broadcast to %s: %s", c.peer, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Inbound returns the channel of messages arriving from any peer.
func (s *Server) Inbound() <-chan peer.Inbound {
	return s.inbound
}

// PeerCount reports the number of connections currently established.
func (s *Server) PeerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}
