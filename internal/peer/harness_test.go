package peer_test

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"peerlink/internal/domain"
)

// memMedium is an in-memory broadcast substrate delivering synchronously to
// registered watchers. Item keys are unique per write; duplicate delivery is
// exercised explicitly via Deliver.
type memMedium struct {
	mu       sync.Mutex
	next     int
	items    map[string][]memItem
	watchers map[string][]func(string, []byte)
}

type memItem struct {
	key   string
	value []byte
}

func newMemMedium() *memMedium {
	return &memMedium{
		items:    make(map[string][]memItem),
		watchers: make(map[string][]func(string, []byte)),
	}
}

func (m *memMedium) Write(_ context.Context, path string, value []byte) error {
	m.mu.Lock()
	m.next++
	it := memItem{key: "k" + strconv.Itoa(m.next), value: append([]byte(nil), value...)}
	m.items[path] = append(m.items[path], it)
	fns := append([]func(string, []byte){}, m.watchers[path]...)
	m.mu.Unlock()
	for _, fn := range fns {
		fn(it.key, it.value)
	}
	return nil
}

func (m *memMedium) Watch(ctx context.Context, path string, onItem func(string, []byte)) error {
	m.mu.Lock()
	m.watchers[path] = append(m.watchers[path], onItem)
	backlog := append([]memItem(nil), m.items[path]...)
	m.mu.Unlock()
	for _, it := range backlog {
		onItem(it.key, it.value)
	}
	<-ctx.Done()
	return ctx.Err()
}

// Deliver injects an item with an explicit key, bypassing Write.
func (m *memMedium) Deliver(path, key string, value []byte) {
	m.mu.Lock()
	fns := append([]func(string, []byte){}, m.watchers[path]...)
	m.mu.Unlock()
	for _, fn := range fns {
		fn(key, value)
	}
}

// transportHub pairs fake transports by offer SDP, emulating the negotiation
// a real transport performs: once the caller applies the answer, both data
// channels open.
type transportHub struct {
	mu      sync.Mutex
	next    int
	byOffer map[string]*fakeTransport
	all     []*fakeTransport
}

func newTransportHub() *transportHub {
	return &transportHub{byOffer: make(map[string]*fakeTransport)}
}

func (h *transportHub) factory() domain.TransportFactory {
	return func() (domain.Transport, error) {
		t := &fakeTransport{hub: h}
		h.mu.Lock()
		h.all = append(h.all, t)
		h.mu.Unlock()
		return t, nil
	}
}

// created returns every transport the factory has handed out so far.
func (h *transportHub) created() []*fakeTransport {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*fakeTransport(nil), h.all...)
}

type fakeTransport struct {
	hub *transportHub

	mu          sync.Mutex
	closed      bool
	peer        *fakeTransport
	local       *fakeChannel
	onCandidate func(domain.ICECandidate)
	onChannel   func(domain.DataChannel)
	onFailure   func(error)
	candidates  []domain.ICECandidate
}

func (t *fakeTransport) CreateOffer() (domain.SessionDescription, error) {
	t.hub.mu.Lock()
	t.hub.next++
	sdp := "offer-" + strconv.Itoa(t.hub.next)
	t.hub.byOffer[sdp] = t
	t.hub.mu.Unlock()
	return domain.SessionDescription{Type: "offer", SDP: sdp}, nil
}

func (t *fakeTransport) CreateAnswer() (domain.SessionDescription, error) {
	return domain.SessionDescription{Type: "answer", SDP: "answer"}, nil
}

func (t *fakeTransport) SetLocalDescription(desc domain.SessionDescription) error {
	// Candidate discovery begins once the local description is set.
	t.mu.Lock()
	fn := t.onCandidate
	t.mu.Unlock()
	if fn != nil {
		fn(domain.ICECandidate{Candidate: "candidate:fake 1 udp 1 0.0.0.0 9 typ host"})
	}
	return nil
}

func (t *fakeTransport) SetRemoteDescription(desc domain.SessionDescription) error {
	switch desc.Type {
	case "offer":
		t.hub.mu.Lock()
		caller := t.hub.byOffer[desc.SDP]
		t.hub.mu.Unlock()
		if caller == nil {
			return fmt.Errorf("unknown offer %q", desc.SDP)
		}
		t.mu.Lock()
		t.peer = caller
		t.mu.Unlock()
		caller.mu.Lock()
		caller.peer = t
		caller.mu.Unlock()
		return nil
	case "answer":
		// Negotiation complete: surface the caller's channel on the callee
		// side and open both ends.
		t.mu.Lock()
		callee := t.peer
		local := t.local
		t.mu.Unlock()
		if callee == nil || local == nil {
			return fmt.Errorf("answer before offer/channel")
		}
		remote := &fakeChannel{label: local.label}
		local.peer, remote.peer = remote, local

		callee.mu.Lock()
		onChannel := callee.onChannel
		callee.local = remote
		callee.mu.Unlock()
		if onChannel != nil {
			onChannel(remote)
		}
		local.open()
		remote.open()
		return nil
	default:
		return fmt.Errorf("unknown description type %q", desc.Type)
	}
}

func (t *fakeTransport) AddICECandidate(cand domain.ICECandidate) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.peer == nil {
		return fmt.Errorf("no remote description")
	}
	t.candidates = append(t.candidates, cand)
	return nil
}

func (t *fakeTransport) CreateDataChannel(label string) (domain.DataChannel, error) {
	ch := &fakeChannel{label: label}
	t.mu.Lock()
	t.local = ch
	t.mu.Unlock()
	return ch, nil
}

func (t *fakeTransport) OnICECandidate(fn func(domain.ICECandidate)) {
	t.mu.Lock()
	t.onCandidate = fn
	t.mu.Unlock()
}

func (t *fakeTransport) OnDataChannel(fn func(domain.DataChannel)) {
	t.mu.Lock()
	t.onChannel = fn
	t.mu.Unlock()
}

func (t *fakeTransport) OnFailure(fn func(error)) {
	t.mu.Lock()
	t.onFailure = fn
	t.mu.Unlock()
}

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	return nil
}

func (t *fakeTransport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *fakeTransport) fail(err error) {
	t.mu.Lock()
	fn := t.onFailure
	t.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

type fakeChannel struct {
	label string

	mu        sync.Mutex
	peer      *fakeChannel
	onOpen    func()
	onMessage func([]byte)
	opened    bool
}

func (c *fakeChannel) Label() string { return c.label }

func (c *fakeChannel) Send(p []byte) error {
	c.mu.Lock()
	peer := c.peer
	c.mu.Unlock()
	if peer == nil {
		return fmt.Errorf("channel not connected")
	}
	data := append([]byte(nil), p...)
	go peer.receive(data)
	return nil
}

func (c *fakeChannel) OnOpen(fn func()) {
	c.mu.Lock()
	alreadyOpen := c.opened
	c.onOpen = fn
	c.mu.Unlock()
	if alreadyOpen && fn != nil {
		fn()
	}
}

func (c *fakeChannel) OnMessage(fn func([]byte)) {
	c.mu.Lock()
	c.onMessage = fn
	c.mu.Unlock()
}

func (c *fakeChannel) Close() error { return nil }

func (c *fakeChannel) open() {
	c.mu.Lock()
	c.opened = true
	fn := c.onOpen
	c.mu.Unlock()
	if fn != nil {
		go fn()
	}
}

func (c *fakeChannel) receive(p []byte) {
	c.mu.Lock()
	fn := c.onMessage
	c.mu.Unlock()
	if fn != nil {
		fn(p)
	}
}
