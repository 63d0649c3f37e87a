package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"ohttpc/internal/crypto"
	"ohttpc/internal/domain"
	"ohttpc/internal/observability"
	"ohttpc/internal/services/dispatch"
	"ohttpc/internal/services/source"
	"ohttpc/internal/store"
	"ohttpc/internal/util/memzero"
)

// App runs one batch described by its Config.
type App struct {
	cfg Config
	log *logrus.Logger
}

// New returns an App for cfg.
func New(cfg Config) *App {
	return &App{
		cfg: cfg,
		log: observability.NewLogger(cfg.LogLevel, cfg.LogFormat, stderr(cfg)),
	}
}

// Run validates the inputs, dispatches the replicas and reports them. Any
// error it returns happened before dispatch; replica failures are reported
// as outcomes and do not make Run fail.
func (a *App) Run(ctx context.Context) error {
	cfg := a.cfg
	log := a.log.WithField("component", "app")

	keyConfig, err := domain.ParseKeyConfiguration(cfg.KeyConfig)
	if err != nil {
		return err
	}
	plan := cfg.Plan()
	if err := plan.Validate(); err != nil {
		return err
	}
	if cfg.Indefinite {
		log.Warn("indefinite-length framing is not used for dispatch; sending known-length")
	}
	if cfg.Output != "" {
		log.WithField("output", cfg.Output).Warn("response output is not implemented; responses are reported by length only")
	}

	tpl, err := source.Load(cfg.Input, cfg.Binary, cfg.Stdin)
	if err != nil {
		return err
	}
	payload, err := tpl.Canonical()
	if err != nil {
		return err
	}
	defer memzero.Zero(payload)
	log.WithFields(logrus.Fields{
		"method":    tpl.Request.Method,
		"authority": tpl.Request.Authority,
		"path":      tpl.Request.Path,
		"length":    len(payload),
	}).Debug("request decoded")

	w, err := NewWire(cfg, a.log)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"url":         cfg.URL,
		"key_config":  crypto.Fingerprint(keyConfig),
		"requests":    plan.Requests,
		"concurrency": plan.Concurrency,
		"retries":     plan.Retries,
	}).Info("dispatching")

	svc := dispatch.New(w.Encapsulator, w.Relay, keyConfig,
		dispatch.WithLogger(a.log.WithField("component", "dispatch")),
		dispatch.WithMetrics(w.Collector()),
	)

	var outcomes []domain.Outcome
	sink := func(o domain.Outcome) {
		w.Reporter.Report(o)
		if cfg.SummaryFile != "" {
			outcomes = append(outcomes, o)
		}
	}

	sum, err := svc.Run(ctx, plan, payload, sink)
	if err != nil {
		return err
	}
	if plan.Requests > 0 {
		w.Reporter.Summary(sum)
	}
	log.WithFields(logrus.Fields{
		"succeeded":      sum.Succeeded,
		"failed":         sum.Failed,
		"response_bytes": sum.ResponseBytes,
		"max_in_flight":  sum.MaxInFlight,
		"elapsed":        sum.Elapsed,
	}).Info("batch complete")

	a.writeResults(w, sum, outcomes)
	return nil
}

// writeResults writes the optional metrics and summary files. Failures are
// logged; the batch has already been sent.
func (a *App) writeResults(w *Wire, sum domain.Summary, outcomes []domain.Outcome) {
	if w.Prometheus != nil {
		if err := w.Prometheus.WriteTextfile(a.cfg.MetricsFile); err != nil {
			a.log.WithError(err).WithField("path", a.cfg.MetricsFile).Error("write metrics")
		}
	}
	if a.cfg.SummaryFile != "" {
		if err := store.WriteSummary(a.cfg.SummaryFile, sum, outcomes); err != nil {
			a.log.WithError(err).WithField("path", a.cfg.SummaryFile).Error("write summary")
		}
	}
}
