package crypto

import (
	"fmt"
	"io"
	"sync"

	"github.com/katzenpost/hpqc/rand"
)

var (
	initOnce sync.Once
	initErr  error
)

// Init performs the one-time cryptographic setup and returns the entropy
// source for encapsulation. It is safe to call more than once.
func Init() (io.Reader, error) {
	initOnce.Do(func() {
		initErr = probe(rand.Reader)
	})
	if initErr != nil {
		return nil, initErr
	}
	return rand.Reader, nil
}

// probe checks that r yields bytes and is not stuck on a constant.
func probe(r io.Reader) error {
	var a, b [32]byte
	if _, err := io.ReadFull(r, a[:]); err != nil {
		return fmt.Errorf("crypto: entropy source: %w", err)
	}
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return fmt.Errorf("crypto: entropy source: %w", err)
	}
	if a == b {
		return fmt.Errorf("crypto: entropy source returned repeated output")
	}
	return nil
}
