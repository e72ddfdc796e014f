// Package signal exchanges connection-setup events through per-identifier
// mailboxes on the untrusted broadcast medium.
//
// The medium delivers at-least-once with no ordering, so the channel
// deduplicates by medium-assigned item key. The dedup set is scoped to one
// room membership: Join resets it, because mailbox paths are reused across
// room entries. Events from the local party and events that fail to parse
// are dropped without surfacing an error; anyone can write to a mailbox.
package signal
