package dispatch

import (
	"errors"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/katzenpost/hpqc/rand"

	"ohttpc/internal/domain"
	"ohttpc/internal/relay"
)

const (
	// DefaultRetryBaseDelay is used when a plan allows retries but sets no
	// base delay.
	DefaultRetryBaseDelay = 200 * time.Millisecond

	maxRetryDelay = 10 * time.Second
	retryJitter   = 0.2
)

// Delay is the backoff before retry number attempt (zero-based):
// exponential from base, capped, with +/-20% jitter.
func Delay(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = DefaultRetryBaseDelay
	}
	delay := float64(base) * math.Pow(2, float64(attempt))
	if delay > float64(maxRetryDelay) {
		delay = float64(maxRetryDelay)
	}
	r := rand.NewMath()
	delay *= 1 - retryJitter + r.Float64()*2*retryJitter
	return time.Duration(delay)
}

var transientPatterns = []string{
	"connection refused",
	"connection reset",
	"connection timed out",
	"timeout",
	"temporary failure",
	"no route to host",
	"network is unreachable",
	"broken pipe",
	"eof",
}

// Retryable reports whether err is a transport failure worth repeating.
// Encapsulation failures never are.
func Retryable(err error) bool {
	if err == nil || !domain.IsKind(err, domain.KindTransport) {
		return false
	}

	var se *relay.StatusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusTooManyRequests:
			return true
		}
		return false
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
