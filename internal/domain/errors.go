package domain

import "errors"

var (
	// ErrInvalidFormat reports an identity seed that failed to decode or has
	// the wrong length. The previously active identity is left untouched.
	ErrInvalidFormat = errors.New("invalid identity seed format")

	// ErrKeyAgreement reports a malformed peer public key. No session is
	// recorded when it occurs.
	ErrKeyAgreement = errors.New("key agreement failed")

	// ErrAuthentication reports an AEAD open failure (tampered ciphertext or
	// wrong key). The connection stays open; the message is unreadable.
	ErrAuthentication = errors.New("message authentication failed")

	// ErrNoActiveChannel reports a send attempt with no open, keyed channel.
	ErrNoActiveChannel = errors.New("no active encrypted channel")
)
