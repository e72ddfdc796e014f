package signal_test

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"peerlink/internal/domain"
	"peerlink/internal/signal"
)

// fakeMedium is an in-memory broadcast substrate with deliberately
// at-least-once semantics: Deliver can push the same item key repeatedly.
type fakeMedium struct {
	mu       sync.Mutex
	next     int
	watchers map[string][]func(string, []byte)
}

func newFakeMedium() *fakeMedium {
	return &fakeMedium{watchers: make(map[string][]func(string, []byte))}
}

func (m *fakeMedium) Write(_ context.Context, path string, value []byte) error {
	m.mu.Lock()
	m.next++
	key := "item-" + strconv.Itoa(m.next)
	fns := append([]func(string, []byte){}, m.watchers[path]...)
	m.mu.Unlock()
	for _, fn := range fns {
		fn(key, value)
	}
	return nil
}

func (m *fakeMedium) Watch(ctx context.Context, path string, onItem func(string, []byte)) error {
	m.mu.Lock()
	m.watchers[path] = append(m.watchers[path], onItem)
	m.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

// Deliver injects an item with an explicit key, bypassing Write.
func (m *fakeMedium) Deliver(path, key string, value []byte) {
	m.mu.Lock()
	fns := append([]func(string, []byte){}, m.watchers[path]...)
	m.mu.Unlock()
	for _, fn := range fns {
		fn(key, value)
	}
}

func marshal(t *testing.T, ev domain.SignalEvent) []byte {
	t.Helper()
	raw, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return raw
}

func joinAndSettle(t *testing.T, ch *signal.Channel, ctx context.Context, room string, self domain.ShortID, onEvent func(domain.SignalEvent)) {
	t.Helper()
	if err := ch.Join(ctx, room, self, onEvent); err != nil {
		t.Fatalf("join: %v", err)
	}
	// Give the watch goroutine time to register with the fake medium.
	time.Sleep(20 * time.Millisecond)
}

func TestDuplicateItemKey_DeliveredOnce(t *testing.T) {
	medium := newFakeMedium()
	ch := signal.New(medium, zaptest.NewLogger(t))

	var mu sync.Mutex
	var got []domain.SignalEvent
	joinAndSettle(t, ch, context.Background(), "r1", "self-id", func(ev domain.SignalEvent) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
	})

	raw := marshal(t, domain.SignalEvent{Kind: domain.SignalOffer, From: "peer-1"})
	medium.Deliver("r1/self-id", "k1", raw)
	medium.Deliver("r1/self-id", "k1", raw)
	medium.Deliver("r1/self-id", "k1", raw)

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("want exactly one delivery for a duplicated key, got %d", len(got))
	}
}

func TestRejoin_ResetsDedupEpoch(t *testing.T) {
	medium := newFakeMedium()
	ch := signal.New(medium, zaptest.NewLogger(t))

	var mu sync.Mutex
	count := 0
	onEvent := func(domain.SignalEvent) {
		mu.Lock()
		count++
		mu.Unlock()
	}

	raw := marshal(t, domain.SignalEvent{Kind: domain.SignalOffer, From: "peer-1"})

	joinAndSettle(t, ch, context.Background(), "r1", "self-id", onEvent)
	medium.Deliver("r1/self-id", "k1", raw)

	joinAndSettle(t, ch, context.Background(), "r1", "self-id", onEvent)
	medium.Deliver("r1/self-id", "k1", raw)

	mu.Lock()
	defer mu.Unlock()
	if count != 2 {
		t.Fatalf("same key must be deliverable again after rejoin, got %d deliveries", count)
	}
}

func TestSelfEvent_AlwaysIgnored(t *testing.T) {
	medium := newFakeMedium()
	ch := signal.New(medium, zaptest.NewLogger(t))

	delivered := false
	joinAndSettle(t, ch, context.Background(), "r1", "self-id", func(domain.SignalEvent) {
		delivered = true
	})

	raw := marshal(t, domain.SignalEvent{Kind: domain.SignalOffer, From: "self-id"})
	medium.Deliver("r1/self-id", "k1", raw)

	if delivered {
		t.Fatal("event with from == self must be ignored")
	}
}

func TestMalformedEvents_SilentlyDropped(t *testing.T) {
	medium := newFakeMedium()
	ch := signal.New(medium, zaptest.NewLogger(t))

	delivered := false
	joinAndSettle(t, ch, context.Background(), "r1", "self-id", func(domain.SignalEvent) {
		delivered = true
	})

	medium.Deliver("r1/self-id", "k1", []byte("not json"))
	medium.Deliver("r1/self-id", "k2", marshal(t, domain.SignalEvent{From: "peer-1"}))          // no type
	medium.Deliver("r1/self-id", "k3", marshal(t, domain.SignalEvent{Kind: domain.SignalICE})) // no sender

	if delivered {
		t.Fatal("malformed events must be dropped, not surfaced")
	}
}

func TestPublish_StampsSenderAndTime(t *testing.T) {
	medium := newFakeMedium()
	ch := signal.New(medium, zaptest.NewLogger(t))

	var mu sync.Mutex
	var got *domain.SignalEvent
	// Watch the peer's mailbox through a second channel.
	peerCh := signal.New(medium, zaptest.NewLogger(t))
	joinAndSettle(t, peerCh, context.Background(), "r1", "peer-1", func(ev domain.SignalEvent) {
		mu.Lock()
		got = &ev
		mu.Unlock()
	})

	joinAndSettle(t, ch, context.Background(), "r1", "self-id", func(domain.SignalEvent) {})
	if err := ch.Publish(context.Background(), "peer-1", domain.SignalEvent{Kind: domain.SignalOffer}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if got == nil {
		t.Fatal("expected the peer mailbox to receive the event")
	}
	if got.From != "self-id" {
		t.Fatalf("want sender stamp self-id, got %q", got.From)
	}
	if got.SentAtUnix == 0 {
		t.Fatal("want a timestamp stamp")
	}
}
