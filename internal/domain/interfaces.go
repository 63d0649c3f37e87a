package domain

import "context"

// Encapsulator wraps a plaintext under a relay key configuration. Every call
// must draw fresh randomness: two calls with the same inputs produce
// unlinkable ciphertexts.
type Encapsulator interface {
	Encapsulate(config []byte, plaintext []byte) ([]byte, error)
}

// Transport delivers one encapsulated request and returns the raw response
// body. It performs no retries.
type Transport interface {
	Send(ctx context.Context, ciphertext []byte) ([]byte, error)
}

// OutcomeSink consumes outcomes in completion order. Implementations must be
// fast and must not fail.
type OutcomeSink func(Outcome)
