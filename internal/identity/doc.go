// Package identity manages creation, import/export and replacement of the
// local long-term keypair.
//
// The seed (the 32-byte X25519 private key) travels in a transport-safe
// base64 encoding; the public key and short identifier are always re-derived
// from it, never trusted from input.
package identity
