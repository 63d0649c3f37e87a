package dispatch_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"ohttpc/internal/domain"
	"ohttpc/internal/services/dispatch"
)

// stubEncapsulator prefixes the plaintext with a call counter so every
// ciphertext differs.
type stubEncapsulator struct {
	calls atomic.Int64
	err   error
	panic bool
}

func (e *stubEncapsulator) Encapsulate(config, plaintext []byte) ([]byte, error) {
	n := e.calls.Add(1)
	if e.panic {
		panic("encapsulator exploded")
	}
	if e.err != nil {
		return nil, e.err
	}
	out := append([]byte{byte(n)}, config...)
	return append(out, plaintext...), nil
}

// stubTransport answers with a fixed body after delay, tracking how many
// sends overlap. fail decides per replica whether to return an error.
type stubTransport struct {
	body  []byte
	delay func(replica int) time.Duration
	fail  func(replica, call int) error

	mu      sync.Mutex
	calls   int
	perRep  map[int]int
	seen    [][]byte
	current int
	peak    int
}

func (t *stubTransport) Send(ctx context.Context, ciphertext []byte) ([]byte, error) {
	replica, _ := dispatch.ReplicaFromContext(ctx)

	t.mu.Lock()
	t.calls++
	if t.perRep == nil {
		t.perRep = make(map[int]int)
	}
	t.perRep[replica]++
	call := t.perRep[replica]
	t.seen = append(t.seen, append([]byte(nil), ciphertext...))
	t.current++
	if t.current > t.peak {
		t.peak = t.current
	}
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.current--
		t.mu.Unlock()
	}()

	if t.delay != nil {
		time.Sleep(t.delay(replica))
	}
	if t.fail != nil {
		if err := t.fail(replica, call); err != nil {
			return nil, err
		}
	}
	return t.body, nil
}

func (t *stubTransport) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

func (t *stubTransport) Peak() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.peak
}

type collector struct {
	outcomes []domain.Outcome
}

func (c *collector) sink(o domain.Outcome) { c.outcomes = append(c.outcomes, o) }

func (c *collector) replicas() []int {
	out := make([]int, 0, len(c.outcomes))
	for _, o := range c.outcomes {
		out = append(out, o.Replica)
	}
	return out
}
