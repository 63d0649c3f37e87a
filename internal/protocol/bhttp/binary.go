package bhttp

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/quic-go/quic-go/quicvarint"
)

// MaxSectionSize bounds any single length-prefixed section accepted by
// ReadBinary.
const MaxSectionSize = 64 << 20

// Encode serializes r using the given framing mode.
func (r *Request) Encode(mode Mode) ([]byte, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}

	var b []byte
	switch mode {
	case KnownLength:
		b = quicvarint.Append(b, framingKnownRequest)
		b = r.appendControl(b)
		b = appendKnownFields(b, r.Header)
		b = appendBytes(b, r.Content)
		b = appendKnownFields(b, r.Trailer)
	case IndefiniteLength:
		b = quicvarint.Append(b, framingIndefiniteRequest)
		b = r.appendControl(b)
		b = appendIndefiniteFields(b, r.Header)
		if len(r.Content) > 0 {
			b = appendBytes(b, r.Content)
		}
		b = quicvarint.Append(b, 0)
		b = appendIndefiniteFields(b, r.Trailer)
	default:
		return nil, fmt.Errorf("%w: unknown mode %d", ErrFraming, mode)
	}
	return b, nil
}

func (r *Request) validate() error {
	if r.Method == "" {
		return fmt.Errorf("%w: empty method", ErrFraming)
	}
	for _, s := range []string{r.Method, r.Scheme, r.Authority, r.Path} {
		if uint64(len(s)) > quicvarint.Max {
			return fmt.Errorf("%w: control data too long", ErrFraming)
		}
		if strings.ContainsAny(s, "\r\n") {
			return fmt.Errorf("%w: control data contains a line break", ErrFraming)
		}
	}
	if uint64(len(r.Content)) > quicvarint.Max {
		return fmt.Errorf("%w: content too long", ErrFraming)
	}
	for _, section := range [][]Field{r.Header, r.Trailer} {
		for _, f := range section {
			if f.Name == "" {
				return fmt.Errorf("%w: empty field name", ErrFraming)
			}
			if f.Name != strings.ToLower(f.Name) {
				return fmt.Errorf("%w: field name %q is not lower case", ErrFraming, f.Name)
			}
		}
		if uint64(fieldsLen(section)) > quicvarint.Max {
			return fmt.Errorf("%w: field section too long", ErrFraming)
		}
	}
	return nil
}

func (r *Request) appendControl(b []byte) []byte {
	b = appendBytes(b, []byte(r.Method))
	b = appendBytes(b, []byte(r.Scheme))
	b = appendBytes(b, []byte(r.Authority))
	return appendBytes(b, []byte(r.Path))
}

func appendBytes(b, v []byte) []byte {
	b = quicvarint.Append(b, uint64(len(v)))
	return append(b, v...)
}

func fieldsLen(fields []Field) int {
	n := 0
	for _, f := range fields {
		n += quicvarint.Len(uint64(len(f.Name))) + len(f.Name)
		n += quicvarint.Len(uint64(len(f.Value))) + len(f.Value)
	}
	return n
}

func appendField(b []byte, f Field) []byte {
	b = appendBytes(b, []byte(f.Name))
	return appendBytes(b, []byte(f.Value))
}

func appendKnownFields(b []byte, fields []Field) []byte {
	b = quicvarint.Append(b, uint64(fieldsLen(fields)))
	for _, f := range fields {
		b = appendField(b, f)
	}
	return b
}

func appendIndefiniteFields(b []byte, fields []Field) []byte {
	for _, f := range fields {
		b = appendField(b, f)
	}
	return quicvarint.Append(b, 0)
}

// ReadBinary parses a binary request in either framing. A known-length
// message that ends right after its header or content section is accepted
// and the missing sections are empty.
func ReadBinary(r io.Reader) (*Request, error) {
	d := decoder{r: bufio.NewReader(r)}

	indicator, err := quicvarint.Read(d.r)
	if err != nil {
		return nil, fmt.Errorf("%w: framing indicator: %v", ErrMalformed, err)
	}
	var known bool
	switch indicator {
	case framingKnownRequest:
		known = true
	case framingIndefiniteRequest:
	case framingKnownResponse, framingIndefiniteResponse:
		return nil, ErrNotRequest
	default:
		return nil, fmt.Errorf("%w: unknown framing indicator %d", ErrMalformed, indicator)
	}

	req := &Request{}
	for _, dst := range []*string{&req.Method, &req.Scheme, &req.Authority, &req.Path} {
		v, err := d.bytes()
		if err != nil {
			return nil, fmt.Errorf("%w: control data: %v", ErrMalformed, err)
		}
		*dst = string(v)
	}
	if req.Method == "" {
		return nil, fmt.Errorf("%w: empty method", ErrMalformed)
	}

	if req.Header, err = d.fields(known); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformed, err)
	}

	if d.atEOF() {
		return req, nil
	}
	if req.Content, err = d.content(known); err != nil {
		return nil, fmt.Errorf("%w: content: %v", ErrMalformed, err)
	}

	if d.atEOF() {
		return req, nil
	}
	if req.Trailer, err = d.fields(known); err != nil {
		return nil, fmt.Errorf("%w: trailer: %v", ErrMalformed, err)
	}
	// Anything left is padding.
	return req, nil
}

type decoder struct {
	r *bufio.Reader
}

func (d *decoder) atEOF() bool {
	_, err := d.r.Peek(1)
	return errors.Is(err, io.EOF)
}

func readVar(r io.ByteReader) (uint64, error) {
	v, err := quicvarint.Read(r)
	if errors.Is(err, io.EOF) {
		return 0, io.ErrUnexpectedEOF
	}
	return v, err
}

func readN(r io.Reader, n uint64) ([]byte, error) {
	if n > MaxSectionSize {
		return nil, fmt.Errorf("section of %d bytes exceeds limit", n)
	}
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf, nil
}

func (d *decoder) bytes() ([]byte, error) {
	n, err := readVar(d.r)
	if err != nil {
		return nil, err
	}
	return readN(d.r, n)
}

func (d *decoder) fields(known bool) ([]Field, error) {
	if known {
		n, err := readVar(d.r)
		if err != nil {
			return nil, err
		}
		section, err := readN(d.r, n)
		if err != nil {
			return nil, err
		}
		return parseFields(bytes.NewReader(section))
	}

	var out []Field
	for {
		n, err := readVar(d.r)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return out, nil
		}
		name, err := readN(d.r, n)
		if err != nil {
			return nil, err
		}
		value, err := d.bytes()
		if err != nil {
			return nil, err
		}
		out = append(out, Field{Name: string(name), Value: string(value)})
	}
}

func parseFields(r *bytes.Reader) ([]Field, error) {
	var out []Field
	for r.Len() > 0 {
		n, err := readVar(r)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, errors.New("empty field name")
		}
		name, err := readN(r, n)
		if err != nil {
			return nil, err
		}
		vn, err := readVar(r)
		if err != nil {
			return nil, err
		}
		value, err := readN(r, vn)
		if err != nil {
			return nil, err
		}
		out = append(out, Field{Name: string(name), Value: string(value)})
	}
	return out, nil
}

func (d *decoder) content(known bool) ([]byte, error) {
	if known {
		return d.bytes()
	}
	var out []byte
	for {
		chunk, err := d.bytes()
		if err != nil {
			return nil, err
		}
		if len(chunk) == 0 {
			return out, nil
		}
		if len(out)+len(chunk) > MaxSectionSize {
			return nil, errors.New("content exceeds limit")
		}
		out = append(out, chunk...)
	}
}
