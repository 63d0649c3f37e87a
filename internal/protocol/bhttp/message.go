package bhttp

import (
	"errors"
	"sort"
	"strings"
)

// Mode selects the framing used when encoding a message.
type Mode int

const (
	KnownLength Mode = iota
	IndefiniteLength
)

func (m Mode) String() string {
	switch m {
	case KnownLength:
		return "known-length"
	case IndefiniteLength:
		return "indefinite-length"
	default:
		return "unknown"
	}
}

// Framing indicators from RFC 9292 section 3.3.
const (
	framingKnownRequest      = 0
	framingKnownResponse     = 1
	framingIndefiniteRequest = 2
	framingIndefiniteResponse = 3
)

var (
	// ErrMalformed is returned when input is not a well-formed message.
	ErrMalformed = errors.New("bhttp: malformed message")
	// ErrNotRequest is returned for response framing indicators.
	ErrNotRequest = errors.New("bhttp: message is not a request")
	// ErrFraming is returned when a request cannot be represented in the
	// selected framing.
	ErrFraming = errors.New("bhttp: framing constraint violated")
)

// Field is a single header or trailer field.
type Field struct {
	Name  string
	Value string
}

// Request is the structured form of an HTTP request.
type Request struct {
	Method    string
	Scheme    string
	Authority string
	Path      string
	Header    []Field
	Content   []byte
	Trailer   []Field
}

// Get returns the first value of the named header field.
func (r *Request) Get(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, f := range r.Header {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// connection-specific fields are never carried in binary messages.
var connectionFields = map[string]bool{
	"connection":        true,
	"keep-alive":        true,
	"proxy-connection":  true,
	"transfer-encoding": true,
	"upgrade":           true,
}

// normalizeFields lower-cases names, drops connection-specific fields and
// sorts by name, keeping the relative order of repeated names.
func normalizeFields(in []Field) []Field {
	if len(in) == 0 {
		return nil
	}
	out := make([]Field, 0, len(in))
	for _, f := range in {
		name := strings.ToLower(f.Name)
		if connectionFields[name] {
			continue
		}
		out = append(out, Field{Name: name, Value: f.Value})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) == 0 {
		return nil
	}
	return out
}
