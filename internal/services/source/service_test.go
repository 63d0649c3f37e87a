package source_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ohttpc/internal/domain"
	"ohttpc/internal/protocol/bhttp"
	"ohttpc/internal/services/source"
)

const textRequest = "GET https://example.com/hello HTTP/1.1\r\nUser-Agent: test\r\n\r\n"

func TestLoad_TextFromStdin(t *testing.T) {
	tpl, err := source.Load("", false, strings.NewReader(textRequest))
	require.NoError(t, err)
	assert.Equal(t, "example.com", tpl.Request.Authority)

	canonical, err := tpl.Canonical()
	require.NoError(t, err)
	assert.Equal(t, byte(0x00), canonical[0], "known-length request framing")

	decoded, err := bhttp.ReadBinary(bytes.NewReader(canonical))
	require.NoError(t, err)
	assert.Equal(t, tpl.Request, decoded)
}

func TestLoad_BinaryFromFile(t *testing.T) {
	req := &bhttp.Request{Method: "PUT", Scheme: "https", Authority: "a.example", Path: "/x", Content: []byte("body")}
	raw, err := req.Encode(bhttp.IndefiniteLength)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "req.bin")
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	tpl, err := source.Load(path, true, nil)
	require.NoError(t, err)
	assert.Equal(t, req, tpl.Request)

	// Indefinite input is re-encoded in known-length form.
	want, err := req.Encode(bhttp.KnownLength)
	require.NoError(t, err)
	got, err := tpl.Canonical()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoad_Errors(t *testing.T) {
	_, err := source.Load(filepath.Join(t.TempDir(), "missing"), false, nil)
	assert.True(t, domain.IsKind(err, domain.KindIO))

	_, err = source.Load("", false, nil)
	assert.True(t, domain.IsKind(err, domain.KindIO))

	_, err = source.Load("", false, strings.NewReader("garbage"))
	assert.True(t, domain.IsKind(err, domain.KindDecode))

	// Text parsed in binary mode is not well-formed.
	_, err = source.Load("", true, strings.NewReader(textRequest))
	assert.True(t, domain.IsKind(err, domain.KindDecode))
}

func TestTemplate_CanonicalComputedOnce(t *testing.T) {
	var calls atomic.Int32
	counting := source.EncoderFunc(func(req *bhttp.Request) ([]byte, error) {
		calls.Add(1)
		return source.KnownLength.Encode(req)
	})

	req, err := bhttp.ReadHTTP(strings.NewReader(textRequest))
	require.NoError(t, err)
	tpl := source.NewTemplate(req, counting)

	first, err := tpl.Canonical()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := tpl.Canonical()
			assert.NoError(t, err)
			assert.Equal(t, first, b)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())
}

func TestTemplate_FramingError(t *testing.T) {
	tpl := source.NewTemplate(&bhttp.Request{}, nil)
	_, err := tpl.Canonical()
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindFraming))
	assert.True(t, errors.Is(err, bhttp.ErrFraming))
}
