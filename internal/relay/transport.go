package relay

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/quic-go/quic-go/http3"
	"golang.org/x/net/http2"
)

// Options configures the HTTP client built by NewHTTPClient.
type Options struct {
	// TrustFile is an optional PEM file whose certificates are added to the
	// system roots.
	TrustFile string
	// Timeout bounds each call, including reading the body. Zero means none.
	Timeout time.Duration
	// HTTP3 selects QUIC instead of TCP.
	HTTP3 bool
	// MaxConnsPerHost caps connections to the relay. Zero means no limit.
	MaxConnsPerHost int
}

// NewHTTPClient builds the client used for every replica. It fails if a
// trust file is given but cannot be read or holds no certificates.
func NewHTTPClient(opts Options) (*http.Client, error) {
	tlsConf := &tls.Config{MinVersion: tls.VersionTLS12}
	if opts.TrustFile != "" {
		pool, err := LoadTrustRoots(opts.TrustFile)
		if err != nil {
			return nil, err
		}
		tlsConf.RootCAs = pool
	}

	if opts.HTTP3 {
		tlsConf.MinVersion = tls.VersionTLS13
		tlsConf.NextProtos = []string{http3.NextProtoH3}
		return &http.Client{
			Transport: &http3.Transport{TLSClientConfig: tlsConf},
			Timeout:   opts.Timeout,
		}, nil
	}

	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.TLSClientConfig = tlsConf
	tr.MaxConnsPerHost = opts.MaxConnsPerHost
	if err := http2.ConfigureTransport(tr); err != nil {
		return nil, fmt.Errorf("relay: configure http2: %w", err)
	}
	return &http.Client{Transport: tr, Timeout: opts.Timeout}, nil
}

// LoadTrustRoots returns the system pool (or an empty pool where none is
// available) extended with the certificates in the PEM file at path.
func LoadTrustRoots(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("relay: read trust file: %w", err)
	}
	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.New("relay: trust file contains no PEM certificates")
	}
	return pool, nil
}
