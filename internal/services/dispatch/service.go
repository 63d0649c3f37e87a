package dispatch

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"ohttpc/internal/domain"
	"ohttpc/internal/observability"
)

// Service dispatches replicas. It holds only read-only collaborators and may
// run several batches concurrently.
type Service struct {
	enc     domain.Encapsulator
	tr      domain.Transport
	config  domain.KeyConfiguration
	log     *logrus.Entry
	metrics observability.MetricsCollector
	sleep   func(ctx context.Context, d time.Duration) error
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default discards.
func WithLogger(l *logrus.Entry) Option {
	return func(s *Service) { s.log = l }
}

// WithMetrics adds a collector. The default records nothing.
func WithMetrics(m observability.MetricsCollector) Option {
	return func(s *Service) { s.metrics = m }
}

// New returns a Service that encapsulates under config with enc and sends
// through tr.
func New(enc domain.Encapsulator, tr domain.Transport, config domain.KeyConfiguration, opts ...Option) *Service {
	s := &Service{
		enc:     enc,
		tr:      tr,
		config:  config,
		log:     logrus.NewEntry(observability.Discard()),
		metrics: observability.Multi(nil),
		sleep:   sleepCtx,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type replicaKey struct{}

// ReplicaFromContext returns the replica index of the attempt that owns ctx.
func ReplicaFromContext(ctx context.Context) (int, bool) {
	i, ok := ctx.Value(replicaKey{}).(int)
	return i, ok
}

// Run sends plan.Requests replicas of payload and calls sink once per
// replica, in completion order, from the calling goroutine. It returns when
// every replica has completed.
func (s *Service) Run(ctx context.Context, plan domain.Plan, payload []byte, sink domain.OutcomeSink) (domain.Summary, error) {
	if err := plan.Validate(); err != nil {
		return domain.Summary{}, err
	}
	start := time.Now()
	sum := domain.Summary{Requests: plan.Requests}
	if plan.Requests == 0 {
		return sum, nil
	}

	log := s.log.WithFields(logrus.Fields{
		"requests":    plan.Requests,
		"concurrency": plan.Concurrency,
	})
	log.Debug("dispatch started")

	w := &window{}
	outcomes := make(chan domain.Outcome, plan.Concurrency)
	go func() {
		var g errgroup.Group
		g.SetLimit(plan.Concurrency)
		for i := 0; i < plan.Requests; i++ {
			g.Go(func() error {
				outcomes <- s.attempt(ctx, plan, i, payload, w)
				return nil
			})
		}
		_ = g.Wait()
		close(outcomes)
	}()

	for o := range outcomes {
		if o.Success() {
			sum.Succeeded++
			sum.ResponseBytes += int64(o.Bytes)
		} else {
			sum.Failed++
		}
		if sink != nil {
			sink(o)
		}
	}

	sum.MaxInFlight = w.peak()
	sum.Elapsed = time.Since(start)
	log.WithFields(logrus.Fields{
		"succeeded": sum.Succeeded,
		"failed":    sum.Failed,
		"elapsed":   sum.Elapsed,
	}).Debug("dispatch finished")
	return sum, nil
}

// attempt runs one replica to completion, retrying transient transport
// failures when the plan allows it.
func (s *Service) attempt(ctx context.Context, plan domain.Plan, replica int, payload []byte, w *window) (out domain.Outcome) {
	start := time.Now()
	w.enter()
	s.metrics.AttemptStarted()
	out.Replica = replica

	defer func() {
		if r := recover(); r != nil {
			out.Bytes = 0
			out.Err = domain.Wrap(domain.KindInternal, "replica", fmt.Errorf("panic: %v", r))
		}
		out.Duration = time.Since(start)
		if out.Err == nil {
			s.metrics.Succeeded(out.Bytes, out.Duration)
		} else {
			s.metrics.Failed(string(domain.KindOf(out.Err)), out.Duration)
			s.log.WithFields(logrus.Fields{
				"replica":  replica,
				"attempts": out.Attempts,
				"kind":     domain.KindOf(out.Err),
			}).WithError(out.Err).Warn("replica failed")
		}
		s.metrics.AttemptFinished()
		w.leave()
	}()

	ctx = context.WithValue(ctx, replicaKey{}, replica)
	for try := 0; ; try++ {
		out.Attempts = try + 1
		resp, err := s.send(ctx, replica, payload)
		if err == nil {
			out.Bytes = len(resp)
			out.Err = nil
			return out
		}
		out.Err = err
		if try >= plan.Retries || !Retryable(err) {
			return out
		}

		s.metrics.Retried()
		delay := Delay(plan.RetryBaseDelay, try)
		s.log.WithFields(logrus.Fields{
			"replica": replica,
			"attempt": out.Attempts,
			"delay":   delay,
		}).WithError(err).Info("retrying replica")
		if err := s.sleep(ctx, delay); err != nil {
			return out
		}
	}
}

// send encapsulates payload afresh and posts it.
func (s *Service) send(ctx context.Context, replica int, payload []byte) ([]byte, error) {
	ct, err := s.enc.Encapsulate(s.config, payload)
	if err != nil {
		return nil, domain.Wrap(domain.KindEncapsulation, "encapsulate", err)
	}
	if s.log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		s.log.WithFields(logrus.Fields{
			"replica": replica,
			"request": hex.EncodeToString(ct),
		}).Debug("encapsulated request")
	}

	resp, err := s.tr.Send(ctx, ct)
	if err != nil {
		return nil, domain.Wrap(domain.KindTransport, "send", err)
	}
	return resp, nil
}

// window tracks attempts in flight.
type window struct {
	mu      sync.Mutex
	current int
	max     int
}

func (w *window) enter() {
	w.mu.Lock()
	w.current++
	if w.current > w.max {
		w.max = w.current
	}
	w.mu.Unlock()
}

func (w *window) leave() {
	w.mu.Lock()
	w.current--
	w.mu.Unlock()
}

func (w *window) peak() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.max
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
