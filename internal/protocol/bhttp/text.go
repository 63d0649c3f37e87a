package bhttp

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
)

// ReadHTTP parses an HTTP/1.x request in textual form. The target may be in
// absolute form or origin form; in the latter case the authority comes from
// the Host field and the scheme defaults to https.
func ReadHTTP(r io.Reader) (*Request, error) {
	hr, err := http.ReadRequest(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	defer hr.Body.Close()

	body, err := io.ReadAll(hr.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: body: %v", ErrMalformed, err)
	}

	req := &Request{
		Method:    hr.Method,
		Scheme:    "https",
		Authority: hr.Host,
		Path:      hr.URL.RequestURI(),
		Header:    normalizeFields(toFields(hr.Header)),
		Trailer:   normalizeFields(toFields(hr.Trailer)),
	}
	if len(body) > 0 {
		req.Content = body
	}
	if hr.URL.IsAbs() {
		req.Scheme = hr.URL.Scheme
		req.Authority = hr.URL.Host
	}
	if hr.Method == http.MethodConnect {
		req.Scheme = ""
		req.Path = ""
	}
	return req, nil
}

func toFields(h http.Header) []Field {
	var out []Field
	for name, values := range h {
		for _, v := range values {
			out = append(out, Field{Name: name, Value: v})
		}
	}
	return out
}
