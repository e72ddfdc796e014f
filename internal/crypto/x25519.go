package crypto

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/curve25519"

	"peerlink/internal/domain"
)

// GenerateX25519 returns a fresh Curve25519 key pair.
// The private key is clamped per RFC 7748.
func GenerateX25519() (priv domain.X25519Private, pub domain.X25519Public, err error) {
	if _, err = rand.Read(priv[:]); err != nil {
		return
	}
	clamp(&priv)
	pub, err = PublicFromPrivate(priv)
	return
}

// PublicFromPrivate derives the public key for an existing private key.
func PublicFromPrivate(priv domain.X25519Private) (pub domain.X25519Public, err error) {
	pb, err := curve25519.X25519(priv.Slice(), curve25519.Basepoint)
	if err != nil {
		return pub, err
	}
	copy(pub[:], pb)
	return pub, nil
}

// DH computes X25519 Diffie–Hellman. A malformed peer key or an all-zero
// shared secret (low-order peer point) fails with domain.ErrKeyAgreement.
func DH(priv domain.X25519Private, pub domain.X25519Public) (out [32]byte, err error) {
	secret, err := curve25519.X25519(priv.Slice(), pub.Slice())
	if err != nil {
		return out, fmt.Errorf("%w: %v", domain.ErrKeyAgreement, err)
	}
	copy(out[:], secret)
	return out, nil
}

// ParsePublicKey validates raw public key bytes from the wire.
func ParsePublicKey(raw []byte) (pub domain.X25519Public, err error) {
	if len(raw) != len(pub) {
		return pub, fmt.Errorf("%w: public key must be %d bytes (got %d)",
			domain.ErrKeyAgreement, len(pub), len(raw))
	}
	copy(pub[:], raw)
	return pub, nil
}

func clamp(k *domain.X25519Private) {
	kb := k[:]
	kb[0] &= 248
	kb[31] &= 127
	kb[31] |= 64
}
