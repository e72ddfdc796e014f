package crypto

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"peerlink/internal/domain"
)

// sessionInfo binds derived keys to this application and protocol revision.
const sessionInfo = "peerlink/session/v1"

// DeriveSessionKey computes the per-pair symmetric key: X25519 static-static
// agreement between the local private key and the peer public key, expanded
// with HKDF-SHA256 salted by the room identifier. Both parties derive the
// same key without further interaction:
//
//	DeriveSessionKey(aPriv, bPub, room) == DeriveSessionKey(bPriv, aPub, room)
func DeriveSessionKey(priv domain.X25519Private, peerPub domain.X25519Public, roomSalt string) (domain.SessionKey, error) {
	var key domain.SessionKey

	secret, err := DH(priv, peerPub)
	if err != nil {
		return key, err
	}
	defer Wipe(secret[:])

	if isZero(secret[:]) {
		return key, fmt.Errorf("%w: shared secret is all zeros", domain.ErrKeyAgreement)
	}

	r := hkdf.New(sha256.New, secret[:], []byte(roomSalt), []byte(sessionInfo))
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return key, fmt.Errorf("expand session key: %w", err)
	}
	return key, nil
}

func isZero(b []byte) bool {
	var acc byte
	for _, v := range b {
		acc |= v
	}
	return acc == 0
}
