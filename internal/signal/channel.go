package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"peerlink/internal/domain"
)

// Channel routes signaling events between the local party and per-peer
// mailboxes scoped by room.
type Channel struct {
	medium domain.Medium
	log    *zap.Logger

	mu     sync.Mutex
	room   string
	self   domain.ShortID
	seen   map[string]struct{}
	cancel context.CancelFunc
}

// New returns a channel over the given medium.
func New(medium domain.Medium, log *zap.Logger) *Channel {
	if log == nil {
		log = zap.NewNop()
	}
	return &Channel{medium: medium, log: log}
}

// Join starts watching the local mailbox in room, replacing any previous
// membership. The dedup set is reset: event keys from an earlier epoch are
// eligible for delivery again.
func (c *Channel) Join(ctx context.Context, room string, self domain.ShortID, onEvent func(domain.SignalEvent)) error {
	if room == "" {
		return fmt.Errorf("room identifier required")
	}

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	watchCtx, cancel := context.WithCancel(ctx)
	c.room = room
	c.self = self
	c.seen = make(map[string]struct{})
	c.cancel = cancel
	c.mu.Unlock()

	path := mailboxPath(room, self)
	go func() {
		if err := c.medium.Watch(watchCtx, path, func(itemKey string, value []byte) {
			c.deliver(itemKey, value, onEvent)
		}); err != nil && watchCtx.Err() == nil {
			c.log.Warn("mailbox watch ended", zap.String("path", path), zap.Error(err))
		}
	}()
	return nil
}

// Publish writes an event, stamped with the sender id and time, to the
// recipient's mailbox in the current room. Delivery is the medium's problem;
// no retry happens here.
func (c *Channel) Publish(ctx context.Context, target domain.ShortID, ev domain.SignalEvent) error {
	c.mu.Lock()
	room, self := c.room, c.self
	c.mu.Unlock()
	if room == "" {
		return fmt.Errorf("not in a room")
	}

	ev.From = self
	ev.SentAtUnix = time.Now().Unix()
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return c.medium.Write(ctx, mailboxPath(room, target), raw)
}

// Leave stops the current watch. Session teardown is the connection
// manager's job.
func (c *Channel) Leave() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.room = ""
	c.seen = nil
}

func (c *Channel) deliver(itemKey string, value []byte, onEvent func(domain.SignalEvent)) {
	c.mu.Lock()
	if c.seen == nil {
		c.mu.Unlock()
		return
	}
	if _, dup := c.seen[itemKey]; dup {
		c.mu.Unlock()
		return
	}
	c.seen[itemKey] = struct{}{}
	self := c.self
	c.mu.Unlock()

	var ev domain.SignalEvent
	if err := json.Unmarshal(value, &ev); err != nil {
		c.log.Debug("dropping unparseable event", zap.String("key", itemKey))
		return
	}
	if ev.Kind == "" || ev.From == "" {
		c.log.Debug("dropping malformed event", zap.String("key", itemKey))
		return
	}
	if ev.From == self {
		// Our own broadcast echoed back.
		return
	}
	onEvent(ev)
}

func mailboxPath(room string, id domain.ShortID) string {
	return room + "/" + id.String()
}
