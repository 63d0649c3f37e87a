package source

import (
	"bytes"
	"errors"
	"io"
	"os"
	"sync"

	"ohttpc/internal/domain"
	"ohttpc/internal/protocol/bhttp"
	"ohttpc/internal/util/memzero"
)

// Encoder produces the canonical bytes of a request.
type Encoder interface {
	Encode(req *bhttp.Request) ([]byte, error)
}

// EncoderFunc adapts a function to Encoder.
type EncoderFunc func(req *bhttp.Request) ([]byte, error)

func (f EncoderFunc) Encode(req *bhttp.Request) ([]byte, error) { return f(req) }

// KnownLength is the canonical encoder: binary HTTP, known-length framing.
var KnownLength Encoder = EncoderFunc(func(req *bhttp.Request) ([]byte, error) {
	return req.Encode(bhttp.KnownLength)
})

// Template is the single logical request to replicate.
type Template struct {
	Request *bhttp.Request

	enc     Encoder
	once    sync.Once
	encoded []byte
	err     error
}

// NewTemplate wraps req. A nil enc selects KnownLength.
func NewTemplate(req *bhttp.Request, enc Encoder) *Template {
	if enc == nil {
		enc = KnownLength
	}
	return &Template{Request: req, enc: enc}
}

// Canonical returns the canonical encoding, computing it on first use. The
// returned slice is shared and must not be modified.
func (t *Template) Canonical() ([]byte, error) {
	t.once.Do(func() {
		b, err := t.enc.Encode(t.Request)
		if err != nil {
			t.err = domain.Wrap(domain.KindFraming, "encode request", err)
			return
		}
		t.encoded = b
	})
	return t.encoded, t.err
}

// Load reads the request from path, or from stdin when path is empty, and
// decodes it as binary HTTP when binary is set and as textual HTTP otherwise.
func Load(path string, binary bool, stdin io.Reader) (*Template, error) {
	raw, err := read(path, stdin)
	if err != nil {
		return nil, domain.Wrap(domain.KindIO, "read request", err)
	}
	// Decoding copies everything it keeps.
	defer memzero.Zero(raw)

	var req *bhttp.Request
	if binary {
		req, err = bhttp.ReadBinary(bytes.NewReader(raw))
	} else {
		req, err = bhttp.ReadHTTP(bytes.NewReader(raw))
	}
	if err != nil {
		return nil, domain.Wrap(domain.KindDecode, "decode request", err)
	}
	return NewTemplate(req, nil), nil
}

func read(path string, stdin io.Reader) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	if stdin == nil {
		return nil, errors.New("no input source")
	}
	return io.ReadAll(stdin)
}
