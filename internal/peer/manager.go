package peer

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"peerlink/internal/crypto"
	"peerlink/internal/domain"
	"peerlink/internal/signal"
)

const channelLabel = "chat"

type eventKind int

const (
	evSignal eventKind = iota
	evConnect
	evSend
	evLocalCandidate
	evRemoteChannel
	evChannelOpen
	evChannelData
	evTransportFailed
	evSnapshot
)

// event is one item on the manager's ordered inbound queue. Exactly one of
// the payload fields is meaningful per kind.
type event struct {
	kind eventKind

	sig     domain.SignalEvent
	peerID  domain.ShortID
	pub     []byte
	text    string
	cand    domain.ICECandidate
	channel domain.DataChannel
	data    []byte
	err     error

	reply chan error
	snap  chan []Info
}

// Config wires a Manager.
type Config struct {
	Identity     domain.Identity
	Signals      *signal.Channel
	NewTransport domain.TransportFactory
	OnMessage    func(domain.Message)
	Log          *zap.Logger
}

// Manager owns every per-peer session in the current room.
type Manager struct {
	log          *zap.Logger
	id           domain.Identity
	self         domain.ShortID
	signals      *signal.Channel
	newTransport domain.TransportFactory
	onMessage    func(domain.Message)

	// mu guards the membership fields below, which are swapped on every
	// Join while stale transport callbacks may still post events.
	mu       sync.Mutex
	room     string
	sessions map[domain.ShortID]*Session
	events   chan event
	ctx      context.Context
	cancel   context.CancelFunc
	loopDone chan struct{}
}

// NewManager constructs a manager for the given identity. Join must be
// called before any other operation.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Signals == nil {
		return nil, fmt.Errorf("signaling channel is required")
	}
	if cfg.NewTransport == nil {
		return nil, fmt.Errorf("transport factory is required")
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	onMessage := cfg.OnMessage
	if onMessage == nil {
		onMessage = func(domain.Message) {}
	}
	return &Manager{
		log:          log,
		id:           cfg.Identity,
		self:         crypto.ShortID(cfg.Identity.Pub),
		signals:      cfg.Signals,
		newTransport: cfg.NewTransport,
		onMessage:    onMessage,
	}, nil
}

// SelfID returns the local short identifier.
func (m *Manager) SelfID() domain.ShortID { return m.self }

// Join enters a room: tears down any previous membership, re-arms the
// signaling subscription, and starts the event loop.
func (m *Manager) Join(ctx context.Context, room string) error {
	m.Leave()

	loopCtx, cancel := context.WithCancel(ctx)
	events := make(chan event, 64)
	loopDone := make(chan struct{})

	m.mu.Lock()
	m.ctx = loopCtx
	m.cancel = cancel
	m.room = room
	m.sessions = make(map[domain.ShortID]*Session)
	m.events = events
	m.loopDone = loopDone
	m.mu.Unlock()

	if err := m.signals.Join(loopCtx, room, m.self, func(ev domain.SignalEvent) {
		m.post(event{kind: evSignal, sig: ev})
	}); err != nil {
		cancel()
		m.mu.Lock()
		m.cancel = nil
		m.mu.Unlock()
		return err
	}

	go m.loop(loopCtx, events, loopDone)
	m.log.Info("joined room", zap.String("room", room), zap.String("self", m.self.String()))
	return nil
}

// Leave disposes the room membership: every session's transport and channel
// are released and the dedup epoch ends. Safe to call after the join context
// was cancelled externally; the loop tears sessions down on its way out and
// Leave only waits for that to finish.
func (m *Manager) Leave() {
	m.mu.Lock()
	cancel, loopDone := m.cancel, m.loopDone
	m.cancel = nil
	m.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-loopDone
	m.signals.Leave()
}

// Connect starts a caller-side attempt toward peerID. peerPub, when given,
// is the peer's raw public key and allows deriving the session key up front.
func (m *Manager) Connect(peerID domain.ShortID, peerPub []byte) error {
	return m.roundTrip(event{kind: evConnect, peerID: peerID, pub: peerPub})
}

// Send encrypts text and sends it over one session with an open channel and
// a derived key. Fails with domain.ErrNoActiveChannel when none qualifies.
func (m *Manager) Send(text string) error {
	return m.roundTrip(event{kind: evSend, text: text})
}

// Peers returns a snapshot of all sessions.
func (m *Manager) Peers() []Info {
	ctx, events, active := m.membership()
	if !active {
		return nil
	}
	snap := make(chan []Info, 1)
	select {
	case events <- event{kind: evSnapshot, snap: snap}:
	case <-ctx.Done():
		return nil
	}
	select {
	case infos := <-snap:
		return infos
	case <-ctx.Done():
		return nil
	}
}

func (m *Manager) membership() (context.Context, chan event, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ctx, m.events, m.cancel != nil
}

func (m *Manager) roundTrip(ev event) error {
	ctx, events, active := m.membership()
	if !active {
		return fmt.Errorf("not in a room")
	}
	ev.reply = make(chan error, 1)
	select {
	case events <- ev:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-ev.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) post(ev event) {
	m.mu.Lock()
	ctx, events := m.ctx, m.events
	m.mu.Unlock()
	if ctx == nil {
		return
	}
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}

func (m *Manager) loop(ctx context.Context, events <-chan event, done chan struct{}) {
	defer close(done)
	// The loop owns the sessions; releasing their transports and channels
	// on the way out covers both Leave and external cancellation.
	defer func() {
		for _, sess := range m.sessions {
			sess.close()
		}
		m.sessions = nil
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			m.handle(ctx, ev)
		}
	}
}

func (m *Manager) handle(ctx context.Context, ev event) {
	switch ev.kind {
	case evSignal:
		m.handleSignal(ctx, ev.sig)
	case evConnect:
		ev.reply <- m.handleConnect(ctx, ev.peerID, ev.pub)
	case evSend:
		ev.reply <- m.handleSend(ev.text)
	case evLocalCandidate:
		m.publishCandidate(ctx, ev.peerID, ev.cand)
	case evRemoteChannel:
		m.handleRemoteChannel(ev.peerID, ev.channel)
	case evChannelOpen:
		m.handleChannelOpen(ev.peerID)
	case evChannelData:
		m.handleChannelData(ev.peerID, ev.data)
	case evTransportFailed:
		m.handleTransportFailed(ev.peerID, ev.err)
	case evSnapshot:
		ev.snap <- m.snapshot()
	}
}

func (m *Manager) handleSignal(ctx context.Context, sig domain.SignalEvent) {
	switch sig.Kind {
	case domain.SignalOffer:
		m.handleOffer(ctx, sig)
	case domain.SignalAnswer:
		m.handleAnswer(sig)
	case domain.SignalICE:
		m.handleCandidate(sig)
	default:
		m.log.Debug("ignoring unknown signal kind", zap.String("kind", string(sig.Kind)))
	}
}

// handleConnect is the caller-initiated path: create (or replace) the
// session, derive the key when the public key is known, and publish an offer.
func (m *Manager) handleConnect(ctx context.Context, peerID domain.ShortID, rawPub []byte) error {
	var key *domain.SessionKey
	var pub *domain.X25519Public
	if len(rawPub) > 0 {
		p, err := crypto.ParsePublicKey(rawPub)
		if err != nil {
			return err
		}
		k, err := crypto.DeriveSessionKey(m.id.Priv, p, m.room)
		if err != nil {
			return err
		}
		pub, key = &p, &k
	}

	if old, ok := m.sessions[peerID]; ok {
		old.close()
		delete(m.sessions, peerID)
	}

	sess := &Session{peerID: peerID, peerPub: pub, key: key, state: StateOffering}
	transport, err := m.attachTransport(sess)
	if err != nil {
		return err
	}
	m.sessions[peerID] = sess

	ch, err := transport.CreateDataChannel(channelLabel)
	if err != nil {
		return m.failSession(sess, fmt.Errorf("create data channel: %w", err))
	}
	m.wireChannel(sess.peerID, ch)
	sess.channel = ch

	offer, err := transport.CreateOffer()
	if err != nil {
		return m.failSession(sess, fmt.Errorf("create offer: %w", err))
	}
	if err := transport.SetLocalDescription(offer); err != nil {
		return m.failSession(sess, fmt.Errorf("set local description: %w", err))
	}

	if err := m.signals.Publish(ctx, peerID, domain.SignalEvent{
		Kind:        domain.SignalOffer,
		PublicKey:   m.id.Pub.Slice(),
		Description: &offer,
	}); err != nil {
		return m.failSession(sess, fmt.Errorf("publish offer: %w", err))
	}
	sess.state = StateAwaitingAnswer
	m.log.Info("offer sent", zap.String("peer", peerID.String()))
	return nil
}

// handleOffer is the callee path. A colliding offer while our own attempt is
// in flight is resolved by the tie-break: the smaller identifier yields.
func (m *Manager) handleOffer(ctx context.Context, sig domain.SignalEvent) {
	if sig.Description == nil {
		m.log.Debug("offer without description", zap.String("peer", sig.From.String()))
		return
	}

	// Validate before touching any existing session: an offer that fails
	// key agreement must leave prior state intact, or any room participant
	// could tear down a healthy connection with a forged event.
	pub, err := crypto.ParsePublicKey(sig.PublicKey)
	if err != nil {
		m.log.Warn("offer with malformed public key, no session recorded",
			zap.String("peer", sig.From.String()), zap.Error(err))
		return
	}
	key, err := crypto.DeriveSessionKey(m.id.Priv, pub, m.room)
	if err != nil {
		m.log.Warn("key agreement failed, no session recorded",
			zap.String("peer", sig.From.String()), zap.Error(err))
		return
	}

	if existing, ok := m.sessions[sig.From]; ok {
		if existing.state == StateOffering || existing.state == StateAwaitingAnswer {
			if m.self >= sig.From {
				m.log.Info("ignoring colliding offer, peer yields",
					zap.String("peer", sig.From.String()))
				return
			}
			m.log.Info("yielding own offer to peer",
				zap.String("peer", sig.From.String()))
		}
		existing.close()
		delete(m.sessions, sig.From)
	}

	sess := &Session{peerID: sig.From, peerPub: &pub, key: &key, state: StateAnswering}
	transport, err := m.attachTransport(sess)
	if err != nil {
		m.log.Warn("transport unavailable", zap.Error(err))
		return
	}
	m.sessions[sig.From] = sess

	if err := transport.SetRemoteDescription(*sig.Description); err != nil {
		_ = m.failSession(sess, fmt.Errorf("apply remote offer: %w", err))
		return
	}
	answer, err := transport.CreateAnswer()
	if err != nil {
		_ = m.failSession(sess, fmt.Errorf("create answer: %w", err))
		return
	}
	if err := transport.SetLocalDescription(answer); err != nil {
		_ = m.failSession(sess, fmt.Errorf("set local description: %w", err))
		return
	}
	if err := m.signals.Publish(ctx, sig.From, domain.SignalEvent{
		Kind:        domain.SignalAnswer,
		PublicKey:   m.id.Pub.Slice(),
		Description: &answer,
	}); err != nil {
		_ = m.failSession(sess, fmt.Errorf("publish answer: %w", err))
		return
	}
	// Answer sent; transport-level completion is signalled by the channel
	// opening.
	sess.state = StateConnected
	m.log.Info("answer sent", zap.String("peer", sig.From.String()))
}

func (m *Manager) handleAnswer(sig domain.SignalEvent) {
	sess, ok := m.sessions[sig.From]
	if !ok || (sess.state != StateOffering && sess.state != StateAwaitingAnswer) {
		m.log.Debug("answer without matching offer", zap.String("peer", sig.From.String()))
		return
	}
	if sig.Description == nil {
		m.log.Debug("answer without description", zap.String("peer", sig.From.String()))
		return
	}

	// First signaling event from this peer may be what brings us its key.
	if sess.key == nil && len(sig.PublicKey) > 0 {
		pub, err := crypto.ParsePublicKey(sig.PublicKey)
		if err == nil {
			if key, err := crypto.DeriveSessionKey(m.id.Priv, pub, m.room); err == nil {
				sess.peerPub, sess.key = &pub, &key
			}
		}
	}

	if err := sess.transport.SetRemoteDescription(*sig.Description); err != nil {
		_ = m.failSession(sess, fmt.Errorf("apply remote answer: %w", err))
		return
	}
	sess.state = StateConnected
	m.log.Info("answer applied", zap.String("peer", sig.From.String()))
}

// handleCandidate forwards a remote candidate into an existing session.
// Candidates for unknown peers are dropped: they cannot usefully arrive
// before an offer/answer pair establishes the session.
func (m *Manager) handleCandidate(sig domain.SignalEvent) {
	sess, ok := m.sessions[sig.From]
	if !ok || sig.Candidate == nil {
		m.log.Debug("dropping candidate for unknown peer", zap.String("peer", sig.From.String()))
		return
	}
	if err := sess.transport.AddICECandidate(*sig.Candidate); err != nil {
		m.log.Debug("candidate rejected by transport",
			zap.String("peer", sig.From.String()), zap.Error(err))
	}
}

func (m *Manager) handleSend(text string) error {
	for _, id := range m.sortedIDs() {
		sess := m.sessions[id]
		if !sess.ready() {
			continue
		}
		frame, err := crypto.Seal(*sess.key, []byte(text))
		if err != nil {
			return err
		}
		raw, err := json.Marshal(frame)
		if err != nil {
			return err
		}
		if err := sess.channel.Send(raw); err != nil {
			return fmt.Errorf("send to %s: %w", id, err)
		}
		return nil
	}
	return domain.ErrNoActiveChannel
}

func (m *Manager) handleRemoteChannel(peerID domain.ShortID, ch domain.DataChannel) {
	sess, ok := m.sessions[peerID]
	if !ok {
		_ = ch.Close()
		return
	}
	m.wireChannel(peerID, ch)
	sess.channel = ch
}

func (m *Manager) handleChannelOpen(peerID domain.ShortID) {
	sess, ok := m.sessions[peerID]
	if !ok {
		return
	}
	sess.channelOpen = true
	m.log.Info("data channel open", zap.String("peer", peerID.String()))
}

// handleChannelData decrypts one inbound payload. Without a session key the
// payload is surfaced unreadable, never buffered for later: there is no
// retroactive decryption once the key arrives.
func (m *Manager) handleChannelData(peerID domain.ShortID, data []byte) {
	sess, ok := m.sessions[peerID]
	if !ok {
		return
	}
	if sess.key == nil {
		m.onMessage(domain.Message{From: peerID, Unreadable: true})
		return
	}
	var frame domain.Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		m.onMessage(domain.Message{From: peerID, Unreadable: true})
		return
	}
	pt, err := crypto.Open(*sess.key, frame)
	if err != nil {
		m.log.Warn("undecryptable payload", zap.String("peer", peerID.String()), zap.Error(err))
		m.onMessage(domain.Message{From: peerID, Unreadable: true})
		return
	}
	m.onMessage(domain.Message{From: peerID, Text: string(pt)})
}

func (m *Manager) handleTransportFailed(peerID domain.ShortID, err error) {
	sess, ok := m.sessions[peerID]
	if !ok || sess.state == StateFailed {
		return
	}
	m.log.Warn("transport failed", zap.String("peer", peerID.String()), zap.Error(err))
	sess.close()
	sess.state = StateFailed
}

// attachTransport builds a transport and routes its callbacks onto the event
// queue so completions are processed in delivery order like everything else.
func (m *Manager) attachTransport(sess *Session) (domain.Transport, error) {
	transport, err := m.newTransport()
	if err != nil {
		return nil, fmt.Errorf("new transport: %w", err)
	}
	peerID := sess.peerID
	transport.OnICECandidate(func(cand domain.ICECandidate) {
		m.post(event{kind: evLocalCandidate, peerID: peerID, cand: cand})
	})
	transport.OnDataChannel(func(ch domain.DataChannel) {
		m.post(event{kind: evRemoteChannel, peerID: peerID, channel: ch})
	})
	transport.OnFailure(func(err error) {
		m.post(event{kind: evTransportFailed, peerID: peerID, err: err})
	})
	sess.transport = transport
	return transport, nil
}

func (m *Manager) wireChannel(peerID domain.ShortID, ch domain.DataChannel) {
	ch.OnOpen(func() {
		m.post(event{kind: evChannelOpen, peerID: peerID})
	})
	ch.OnMessage(func(p []byte) {
		m.post(event{kind: evChannelData, peerID: peerID, data: p})
	})
}

func (m *Manager) publishCandidate(ctx context.Context, peerID domain.ShortID, cand domain.ICECandidate) {
	if err := m.signals.Publish(ctx, peerID, domain.SignalEvent{
		Kind:      domain.SignalICE,
		Candidate: &cand,
	}); err != nil {
		m.log.Debug("publish candidate", zap.String("peer", peerID.String()), zap.Error(err))
	}
}

func (m *Manager) failSession(sess *Session, err error) error {
	sess.close()
	sess.state = StateFailed
	return err
}

func (m *Manager) sortedIDs() []domain.ShortID {
	ids := make([]domain.ShortID, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (m *Manager) snapshot() []Info {
	out := make([]Info, 0, len(m.sessions))
	for _, id := range m.sortedIDs() {
		sess := m.sessions[id]
		out = append(out, Info{
			ID:          id,
			State:       sess.state,
			ChannelOpen: sess.channelOpen,
			Keyed:       sess.key != nil,
		})
	}
	return out
}
