package app

import (
	"io"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"

	"ohttpc/internal/crypto"
	"ohttpc/internal/domain"
	"ohttpc/internal/observability"
	"ohttpc/internal/protocol/ohttp"
	"ohttpc/internal/relay"
	"ohttpc/internal/report"
)

// Wire bundles the collaborators for one batch.
type Wire struct {
	Log          *logrus.Logger
	HTTP         *http.Client
	Relay        *relay.Client
	Encapsulator *ohttp.Encapsulator
	Metrics      *observability.InMemoryMetrics
	Prometheus   *observability.PrometheusMetrics // nil unless MetricsFile is set
	Reporter     *report.Reporter
}

// NewWire constructs the dependency graph from cfg. It fails if the trust
// file is unusable or the entropy source does not work.
func NewWire(cfg Config, log *logrus.Logger) (*Wire, error) {
	if log == nil {
		log = observability.NewLogger(cfg.LogLevel, cfg.LogFormat, stderr(cfg))
	}

	httpClient := cfg.HTTP
	if httpClient == nil {
		hc, err := relay.NewHTTPClient(relay.Options{
			TrustFile:       cfg.Trust,
			Timeout:         cfg.Timeout,
			HTTP3:           cfg.HTTP3,
			MaxConnsPerHost: cfg.Concurrency,
		})
		if err != nil {
			return nil, domain.Wrap(domain.KindConfig, "http client", err)
		}
		httpClient = hc
	}

	entropy, err := crypto.Init()
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "crypto init", err)
	}

	w := &Wire{
		Log:          log,
		HTTP:         httpClient,
		Relay:        relay.New(cfg.URL, httpClient),
		Encapsulator: ohttp.NewEncapsulator(entropy),
		Metrics:      observability.NewInMemoryMetrics(),
		Reporter:     report.New(stdout(cfg), stderr(cfg), environ(cfg)),
	}
	if cfg.MetricsFile != "" {
		w.Prometheus = observability.NewPrometheusMetrics()
	}
	return w, nil
}

// Collector returns every configured metrics sink as one.
func (w *Wire) Collector() observability.MetricsCollector {
	m := observability.Multi{w.Metrics}
	if w.Prometheus != nil {
		m = append(m, w.Prometheus)
	}
	return m
}

func stdout(cfg Config) io.Writer {
	if cfg.Stdout != nil {
		return cfg.Stdout
	}
	return os.Stdout
}

func stderr(cfg Config) io.Writer {
	if cfg.Stderr != nil {
		return cfg.Stderr
	}
	return os.Stderr
}

func environ(cfg Config) []string {
	if cfg.Environ != nil {
		return cfg.Environ
	}
	return os.Environ()
}
