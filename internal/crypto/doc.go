// Package crypto exposes the primitives used by peerlink.
//
// Contents
//
//   - X25519 key generation, clamping and Diffie–Hellman (GenerateX25519,
//     PublicFromPrivate, DH)
//   - Per-pair session key derivation via static-static agreement plus
//     HKDF-SHA256 (DeriveSessionKey)
//   - Authenticated message encryption with ChaCha20-Poly1305 and a fresh
//     random nonce per call (Seal, Open)
//   - Short public-key identifiers for mailbox addressing and display
//     (ShortID)
//   - Best-effort memory wiping for sensitive byte slices (Wipe)
//
// All functions operate on the fixed-size array types defined in
// internal/domain. Callers should treat returned secrets as sensitive and
// rely on Wipe when practical to reduce lifetime in memory.
package crypto
