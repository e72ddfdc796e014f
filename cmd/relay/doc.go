// Package main runs the in-memory HTTP relay that carries peerlink signaling
// traffic. It holds append-only mailboxes of opaque JSON items and redelivers
// a mailbox in full on every fetch; clients deduplicate by item key.
//
// HTTP API
//
//	POST /mail/{room}/{id}
//	    Append a JSON item to the mailbox. The server assigns the item key.
//
//	GET /mail/{room}/{id}
//	    Return every item ever appended to the mailbox.
//
//	DELETE /rooms/{room}
//	    Discard every mailbox under the room. Admin housekeeping; clients
//	    never call it.
//
//	GET /metrics
//	    Prometheus metrics (published, delivered, mailbox count).
//
// Behaviour
//
//   - All state is held in memory and lost on process exit.
//   - Items above 64 KiB or that are not valid JSON are rejected.
//   - The relay never sees plaintext chat: session traffic flows over the
//     peers' data channels, and signaling bodies contain only descriptions,
//     candidates, and public keys.
//   - The default listen address is :8080.
package main
