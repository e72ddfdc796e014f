package crypto

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"peerlink/internal/domain"
)

// NonceBytes is the width of the per-message nonce.
const NonceBytes = chacha20poly1305.NonceSize

// Seal encrypts plaintext under key with a fresh random nonce. The nonce is
// returned inside the frame; the Poly1305 tag is part of the ciphertext.
func Seal(key domain.SessionKey, plaintext []byte) (domain.Frame, error) {
	aead, err := chacha20poly1305.New(key.Slice())
	if err != nil {
		return domain.Frame{}, err
	}
	nonce := make([]byte, NonceBytes)
	if _, err := rand.Read(nonce); err != nil {
		return domain.Frame{}, err
	}
	return domain.Frame{
		Nonce:  nonce,
		Cipher: aead.Seal(nil, nonce, plaintext, nil),
	}, nil
}

// Open decrypts a frame. A tag mismatch fails with domain.ErrAuthentication
// and no partial plaintext is returned.
func Open(key domain.SessionKey, frame domain.Frame) ([]byte, error) {
	if len(frame.Nonce) != NonceBytes {
		return nil, fmt.Errorf("%w: bad nonce length %d", domain.ErrAuthentication, len(frame.Nonce))
	}
	aead, err := chacha20poly1305.New(key.Slice())
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, frame.Nonce, frame.Cipher, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAuthentication, err)
	}
	return pt, nil
}
