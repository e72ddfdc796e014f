package crypto

import (
	"crypto/sha256"
	"encoding/hex"

	"peerlink/internal/domain"
)

// ShortID returns the short mailbox/display identifier for a public key.
//
// It hashes with SHA-256 and truncates to 8 bytes (16 hex chars). Collisions
// are tolerated: the identifier addresses a mailbox, it does not authenticate.
func ShortID(pub domain.X25519Public) domain.ShortID {
	sum := sha256.Sum256(pub.Slice())
	return domain.ShortID(hex.EncodeToString(sum[:8]))
}

// Fingerprint returns the full SHA-256 hex digest of a public key for
// out-of-band comparison.
func Fingerprint(pub domain.X25519Public) string {
	sum := sha256.Sum256(pub.Slice())
	return hex.EncodeToString(sum[:])
}
