package domain

import (
	"fmt"
	"time"
)

// KeyConfiguration is the opaque key-configuration blob published by a
// relay. It is decoded once at startup and never mutated afterwards.
type KeyConfiguration []byte

// Bytes returns the raw configuration.
func (k KeyConfiguration) Bytes() []byte { return k }

// Plan governs how replicas of one request are sent.
type Plan struct {
	Requests    int // total replica count
	Concurrency int // dispatcher window size

	// Retries is the number of extra attempts a replica gets after a
	// transient transport failure. Zero disables retries.
	Retries        int
	RetryBaseDelay time.Duration
}

// Validate rejects plans the dispatcher cannot run.
func (p Plan) Validate() error {
	if p.Concurrency < 1 {
		return &Error{Kind: KindConfig, Op: "plan", Err: ErrZeroConcurrency}
	}
	if p.Requests < 0 {
		return &Error{Kind: KindConfig, Op: "plan", Err: ErrNegativeRequests}
	}
	if p.Retries < 0 {
		return &Error{Kind: KindConfig, Op: "plan", Err: fmt.Errorf("retries must not be negative, got %d", p.Retries)}
	}
	return nil
}

// Outcome is the result of one replica attempt. Exactly one of Err and
// Bytes is meaningful: a nil Err is a success carrying the response length.
type Outcome struct {
	Replica  int           `json:"replica"`
	Bytes    int           `json:"bytes"`
	Err      error         `json:"-"`
	Attempts int           `json:"attempts"`
	Duration time.Duration `json:"duration"`
}

// Success reports whether the attempt produced a response.
func (o Outcome) Success() bool { return o.Err == nil }

// Reason is the failure reason, or "" on success.
func (o Outcome) Reason() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Summary aggregates a completed batch.
type Summary struct {
	Requests      int           `json:"requests"`
	Succeeded     int           `json:"succeeded"`
	Failed        int           `json:"failed"`
	ResponseBytes int64         `json:"response_bytes"`
	MaxInFlight   int           `json:"max_in_flight"`
	Elapsed       time.Duration `json:"elapsed"`
}

// SuccessRate is the percentage of replicas that succeeded. An empty batch
// has a rate of zero.
func (s Summary) SuccessRate() float64 {
	if s.Requests == 0 {
		return 0
	}
	return float64(s.Succeeded) * 100 / float64(s.Requests)
}
