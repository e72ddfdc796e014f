// Package peer owns the per-peer connection state machines.
//
// A Manager holds at most one Session per remote identifier and drives it
// through Idle → Offering → AwaitingAnswer → Connected (when we call) or
// Idle → Answering → Connected (when we are called), with Failed reachable
// from any non-terminal state on transport error. All signaling events,
// transport callbacks, and user intents are funneled through a single
// ordered event queue consumed by one goroutine, so sessions never see
// concurrent mutation and the machine stays testable without a real
// transport.
//
// Simultaneous mutual connection attempts are resolved explicitly: the party
// with the lexicographically smaller short identifier abandons its own offer
// and answers the peer's instead.
package peer
