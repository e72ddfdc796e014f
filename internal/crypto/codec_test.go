package crypto_test

import (
	"bytes"
	"errors"
	"testing"

	"peerlink/internal/crypto"
	"peerlink/internal/domain"
)

func sessionKey(t *testing.T) domain.SessionKey {
	t.Helper()
	aPriv, _, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	_, bPub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	k, err := crypto.DeriveSessionKey(aPriv, bPub, "room")
	if err != nil {
		t.Fatalf("DeriveSessionKey: %v", err)
	}
	return k
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key := sessionKey(t)

	frame, err := crypto.Seal(key, []byte("hi"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	pt, err := crypto.Open(key, frame)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(pt, []byte("hi")) {
		t.Fatalf("want %q back, got %q", "hi", pt)
	}
}

func TestOpen_WrongKeyFails(t *testing.T) {
	k1 := sessionKey(t)
	k2 := sessionKey(t)

	frame, err := crypto.Seal(k1, []byte("secret"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := crypto.Open(k2, frame); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("want ErrAuthentication with wrong key, got %v", err)
	}
}

func TestOpen_TamperedCipherFails(t *testing.T) {
	key := sessionKey(t)

	frame, err := crypto.Seal(key, []byte("untouched"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	frame.Cipher[0] ^= 0x01
	if _, err := crypto.Open(key, frame); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("want ErrAuthentication after tamper, got %v", err)
	}
}

func TestSeal_FreshNoncePerCall(t *testing.T) {
	key := sessionKey(t)

	f1, err := crypto.Seal(key, []byte("same plaintext"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	f2, err := crypto.Seal(key, []byte("same plaintext"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if bytes.Equal(f1.Nonce, f2.Nonce) {
		t.Fatal("nonce reuse under the same key")
	}
	if bytes.Equal(f1.Cipher, f2.Cipher) {
		t.Fatal("identical ciphertexts for repeated plaintext")
	}
}
