package peer

import (
	"peerlink/internal/domain"
)

// State of one connection attempt.
type State int

const (
	StateIdle State = iota
	StateOffering
	StateAwaitingAnswer
	StateAnswering
	StateConnected
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOffering:
		return "offering"
	case StateAwaitingAnswer:
		return "awaiting-answer"
	case StateAnswering:
		return "answering"
	case StateConnected:
		return "connected"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Session is the unit of ownership for one remote identifier: its transport,
// its (eventual) data channel, and its (eventual) session key. Mutated only
// by the manager loop.
type Session struct {
	peerID      domain.ShortID
	peerPub     *domain.X25519Public
	key         *domain.SessionKey
	transport   domain.Transport
	channel     domain.DataChannel
	channelOpen bool
	state       State
}

// close releases the transport and channel owned by the session.
func (s *Session) close() {
	if s.channel != nil {
		_ = s.channel.Close()
		s.channel = nil
	}
	if s.transport != nil {
		_ = s.transport.Close()
		s.transport = nil
	}
	s.channelOpen = false
}

// ready reports whether the session can carry an encrypted message now.
func (s *Session) ready() bool {
	return s.channelOpen && s.channel != nil && s.key != nil
}

// Info is a read-only snapshot of a session for display.
type Info struct {
	ID          domain.ShortID
	State       State
	ChannelOpen bool
	Keyed       bool
}
