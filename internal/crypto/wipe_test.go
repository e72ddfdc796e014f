package crypto_test

import (
	"testing"

	"peerlink/internal/crypto"
)

func TestWipe_ZeroesBuffer(t *testing.T) {
	b := []byte("super secret seed")
	crypto.Wipe(b)
	for i, v := range b {
		if v != 0 {
			t.Fatalf("byte %d not zeroed: %#x", i, v)
		}
	}
}
