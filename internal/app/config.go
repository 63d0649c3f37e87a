package app

import (
	"io"
	"net/http"
	"time"

	"ohttpc/internal/domain"
)

// Config holds runtime options for one batch.
type Config struct {
	URL       string // relay endpoint, e.g. https://relay.example/ohttp
	KeyConfig string // hex-encoded key configuration

	Input      string // request file; stdin when empty
	Output     string // reserved for responses; unused
	Binary     bool   // input is binary HTTP
	Indefinite bool   // reserved; dispatch always sends known-length

	Concurrency    int
	Requests       int
	Retries        int
	RetryBaseDelay time.Duration

	Trust   string        // optional PEM file of extra trust roots
	Timeout time.Duration // per-call; zero means none
	HTTP3   bool

	LogLevel    string
	LogFormat   string
	MetricsFile string // Prometheus textfile output
	SummaryFile string // JSON summary output

	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Environ []string

	HTTP *http.Client // optional; built from Trust/Timeout/HTTP3 when nil
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Concurrency: 1,
		Requests:    1,
		LogLevel:    "warn",
		LogFormat:   "text",
	}
}

// Plan returns the dispatch plan described by c.
func (c Config) Plan() domain.Plan {
	return domain.Plan{
		Requests:       c.Requests,
		Concurrency:    c.Concurrency,
		Retries:        c.Retries,
		RetryBaseDelay: c.RetryBaseDelay,
	}
}
