package crypto

import "runtime"

// Wipe overwrites b with zeros before the buffer goes back to the
// allocator. Best effort only: Go gives no guarantee the secret was
// never copied elsewhere. The noinline pragma and the KeepAlive keep
// the compiler from treating the stores as dead and dropping them.
//
//go:noinline
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(&b)
}
