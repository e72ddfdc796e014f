// Package relay implements the broadcast medium over HTTP: a server holding
// append-only mailboxes keyed by path, and a polling client implementing
// domain.Medium against it.
//
// The server re-delivers the full mailbox on every poll, so delivery is
// at-least-once and unordered by construction. It offers no access control;
// any party that knows a mailbox path can read and write it. Confidentiality
// does not come from the relay.
package relay
