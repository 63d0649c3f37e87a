// Package memzero clears buffers that held request plaintext once they are
// no longer needed.
package memzero

// Zero overwrites every byte of each buffer with zero.
func Zero(bufs ...[]byte) {
	for _, b := range bufs {
		clear(b)
	}
}
