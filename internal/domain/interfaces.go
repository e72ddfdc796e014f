package domain

import "context"

// IdentityStore persists the long-term keypair.
type IdentityStore interface {
	SaveIdentity(id Identity) error
	LoadIdentity() (Identity, bool, error)
}

// IdentityService creates, replaces, and exports the local identity.
type IdentityService interface {
	LoadOrCreate() (Identity, error)
	Export() (string, error)
	Import(seed string) (Identity, error)
	Regenerate() (Identity, error)
}

// Medium is the eventually-consistent broadcast substrate. Delivery is
// at-least-once and unordered; anyone who knows a path can read and write it.
type Medium interface {
	// Write appends value to the mailbox at path. The medium assigns the
	// item key.
	Write(ctx context.Context, path string, value []byte) error

	// Watch delivers every item in the mailbox at path, including items
	// already present, until ctx is cancelled. The same item key may be
	// delivered more than once.
	Watch(ctx context.Context, path string, onItem func(itemKey string, value []byte)) error
}

// Transport is one attempt at a direct connection to a single peer. It is
// consumed as an opaque negotiation capability; the production implementation
// is WebRTC.
type Transport interface {
	CreateOffer() (SessionDescription, error)
	CreateAnswer() (SessionDescription, error)
	SetLocalDescription(desc SessionDescription) error
	SetRemoteDescription(desc SessionDescription) error
	AddICECandidate(cand ICECandidate) error
	CreateDataChannel(label string) (DataChannel, error)

	// OnICECandidate registers the callback for locally discovered
	// candidates. Must be set before negotiation starts.
	OnICECandidate(fn func(ICECandidate))
	// OnDataChannel registers the callback for a remotely offered channel.
	OnDataChannel(fn func(DataChannel))
	// OnFailure registers the callback for a fatal transport error.
	OnFailure(fn func(error))

	Close() error
}

// DataChannel is the bidirectional byte pipe carried by a Transport.
type DataChannel interface {
	Label() string
	Send(p []byte) error
	OnOpen(fn func())
	OnMessage(fn func(p []byte))
	Close() error
}

// TransportFactory builds a fresh Transport for one connection attempt.
type TransportFactory func() (Transport, error)
