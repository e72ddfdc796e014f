package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"peerlink/internal/domain"
)

const defaultPollInterval = time.Second

// Client talks to a relay server and implements domain.Medium.
type Client struct {
	Base string
	HTTP *http.Client
	Poll time.Duration
}

// NewClient returns a client for the relay at base.
func NewClient(base string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{Base: base, HTTP: httpClient, Poll: defaultPollInterval}
}

var _ domain.Medium = (*Client)(nil)

// Write appends value to the mailbox at path. The server assigns the item key.
func (c *Client) Write(ctx context.Context, path string, value []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.mailURL(path), bytes.NewReader(value))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("relay post %s: %s", path, resp.Status)
	}
	return nil
}

// Watch polls the mailbox until ctx is cancelled, handing every item of
// every poll to onItem. Duplicate suppression is the subscriber's concern.
func (c *Client) Watch(ctx context.Context, path string, onItem func(itemKey string, value []byte)) error {
	interval := c.Poll
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		items, err := c.fetch(ctx, path)
		if err == nil {
			for _, it := range items {
				onItem(it.Key, it.Value)
			}
		}
		// Poll errors are transient by assumption; the medium owes only
		// eventual delivery.
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) fetch(ctx context.Context, path string) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.mailURL(path), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("relay get %s: %s", path, resp.Status)
	}
	var items []Item
	return items, json.NewDecoder(resp.Body).Decode(&items)
}

// Mailbox paths are room-qualified ("room/shortid") and map straight onto
// the URL space.
func (c *Client) mailURL(path string) string {
	return c.Base + "/mail/" + path
}
