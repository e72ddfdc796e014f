// Package store provides file-based persistence for the local identity.
//
// The identity is serialised as JSON under the configured home directory and
// written atomically (temp file, then rename), so a failed import or
// regenerate can never leave a partially overwritten keypair behind. When a
// passphrase is configured the file is sealed with a scrypt-derived key and
// ChaCha20-Poly1305.
package store
