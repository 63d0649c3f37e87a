package relay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"ohttpc/internal/domain"
)

// ContentType is the media type of an encapsulated request.
const ContentType = "message/ohttp-req"

// ErrStatus is wrapped by every StatusError.
var ErrStatus = errors.New("relay: unexpected status")

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("relay post %s: %s", e.URL, e.Status)
}

func (e *StatusError) Unwrap() error { return ErrStatus }

// Client posts encapsulated requests to a single URL.
type Client struct {
	URL  string
	HTTP *http.Client
}

// New returns a Client for url. A nil hc uses http.DefaultClient.
func New(url string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{URL: url, HTTP: hc}
}

var _ domain.Transport = (*Client)(nil)

// Send posts ciphertext and returns the full response body.
func (c *Client) Send(ctx context.Context, ciphertext []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(ciphertext))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", ContentType)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{URL: c.URL, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return io.ReadAll(resp.Body)
}
