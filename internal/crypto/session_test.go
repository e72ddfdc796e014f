package crypto_test

import (
	"errors"
	"testing"

	"peerlink/internal/crypto"
	"peerlink/internal/domain"
)

func TestDeriveSessionKey_Symmetry(t *testing.T) {
	aPriv, aPub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	bPriv, bPub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}

	ka, err := crypto.DeriveSessionKey(aPriv, bPub, "room-1")
	if err != nil {
		t.Fatalf("derive (a): %v", err)
	}
	kb, err := crypto.DeriveSessionKey(bPriv, aPub, "room-1")
	if err != nil {
		t.Fatalf("derive (b): %v", err)
	}
	if ka != kb {
		t.Fatal("both parties must derive the same session key")
	}
}

func TestDeriveSessionKey_RoomSaltChangesKey(t *testing.T) {
	aPriv, _, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	_, bPub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}

	k1, err := crypto.DeriveSessionKey(aPriv, bPub, "room-1")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	k2, err := crypto.DeriveSessionKey(aPriv, bPub, "room-2")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if k1 == k2 {
		t.Fatal("different rooms must yield different session keys")
	}
}

func TestDeriveSessionKey_LowOrderPeerKey(t *testing.T) {
	aPriv, _, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}

	// The zero point is low order; agreement must be rejected.
	var zero domain.X25519Public
	if _, err := crypto.DeriveSessionKey(aPriv, zero, "room-1"); !errors.Is(err, domain.ErrKeyAgreement) {
		t.Fatalf("want ErrKeyAgreement, got %v", err)
	}
}

func TestParsePublicKey_WrongLength(t *testing.T) {
	if _, err := crypto.ParsePublicKey(make([]byte, 31)); !errors.Is(err, domain.ErrKeyAgreement) {
		t.Fatalf("want ErrKeyAgreement, got %v", err)
	}
}

func TestShortID_Deterministic(t *testing.T) {
	_, pub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	a := crypto.ShortID(pub)
	b := crypto.ShortID(pub)
	if a != b {
		t.Fatalf("short id must be deterministic: %q vs %q", a, b)
	}
	if len(a) != 16 {
		t.Fatalf("want 16 hex chars, got %d", len(a))
	}
}
