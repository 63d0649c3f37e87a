package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics records dispatch metrics in a private registry so a
// finished batch can be written out for the node_exporter textfile
// collector.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	attempts      *prometheus.CounterVec
	retries       prometheus.Counter
	responseBytes prometheus.Counter
	latency       *prometheus.HistogramVec
	inFlight      prometheus.Gauge
}

func NewPrometheusMetrics() *PrometheusMetrics {
	m := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ohttpc",
				Name:      "replicas_total",
				Help:      "Completed replicas by result and failure kind.",
			},
			[]string{"result", "kind"},
		),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ohttpc",
			Name:      "retries_total",
			Help:      "Replica attempts repeated after a transient failure.",
		}),
		responseBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ohttpc",
			Name:      "response_bytes_total",
			Help:      "Bytes received in successful responses.",
		}),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "ohttpc",
				Name:      "replica_duration_seconds",
				Help:      "Time from encapsulation to response per replica.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"result"},
		),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ohttpc",
			Name:      "in_flight",
			Help:      "Replica attempts currently running.",
		}),
	}
	m.registry.MustRegister(m.attempts, m.retries, m.responseBytes, m.latency, m.inFlight)
	return m
}

func (m *PrometheusMetrics) AttemptStarted()  { m.inFlight.Inc() }
func (m *PrometheusMetrics) AttemptFinished() { m.inFlight.Dec() }
func (m *PrometheusMetrics) Retried()         { m.retries.Inc() }

func (m *PrometheusMetrics) Succeeded(bytes int, latency time.Duration) {
	m.attempts.WithLabelValues("success", "").Inc()
	m.responseBytes.Add(float64(bytes))
	m.latency.WithLabelValues("success").Observe(latency.Seconds())
}

func (m *PrometheusMetrics) Failed(kind string, latency time.Duration) {
	m.attempts.WithLabelValues("failure", kind).Inc()
	m.latency.WithLabelValues("failure").Observe(latency.Seconds())
}

// Gatherer exposes the registry.
func (m *PrometheusMetrics) Gatherer() prometheus.Gatherer { return m.registry }

// WriteTextfile writes the current metrics to path in the text exposition
// format.
func (m *PrometheusMetrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
