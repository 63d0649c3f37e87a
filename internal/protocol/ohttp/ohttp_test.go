package ohttp_test

import (
	"crypto/rand"
	"testing"

	"github.com/cloudflare/circl/hpke"
	"github.com/cloudflare/circl/kem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ohttpc/internal/protocol/ohttp"
)

type gateway struct {
	cfg ohttp.KeyConfig
	raw []byte
	sk  kem.PrivateKey
}

func newGateway(t *testing.T, id uint8, kemID hpke.KEM, suites ...ohttp.Suite) gateway {
	t.Helper()
	pk, sk, err := kemID.Scheme().GenerateKeyPair()
	require.NoError(t, err)
	pkb, err := pk.MarshalBinary()
	require.NoError(t, err)

	cfg := ohttp.KeyConfig{ID: id, KEM: kemID, PublicKey: pkb, Suites: suites}
	raw, err := cfg.Marshal()
	require.NoError(t, err)
	return gateway{cfg: cfg, raw: raw, sk: sk}
}

// open reverses Encapsulate for the first supported suite.
func (g gateway) open(t *testing.T, msg []byte) []byte {
	t.Helper()
	suite, err := g.cfg.SelectSuite()
	require.NoError(t, err)

	const hdrLen = 7
	require.Greater(t, len(msg), hdrLen)
	hdr := msg[:hdrLen]
	assert.Equal(t, g.cfg.ID, hdr[0])

	encLen := g.cfg.KEM.Scheme().CiphertextSize()
	enc := msg[hdrLen : hdrLen+encLen]
	ct := msg[hdrLen+encLen:]

	info := append([]byte("message/bhttp request\x00"), hdr...)
	receiver, err := hpke.NewSuite(g.cfg.KEM, suite.KDF, suite.AEAD).NewReceiver(g.sk, info)
	require.NoError(t, err)
	opener, err := receiver.Setup(enc)
	require.NoError(t, err)
	pt, err := opener.Open(ct, nil)
	require.NoError(t, err)
	return pt
}

var x25519Suite = ohttp.Suite{KDF: hpke.KDF_HKDF_SHA256, AEAD: hpke.AEAD_AES128GCM}

func TestEncapsulate_RoundTrip(t *testing.T) {
	kems := map[string]hpke.KEM{
		"x25519": hpke.KEM_X25519_HKDF_SHA256,
		"p256":   hpke.KEM_P256_HKDF_SHA256,
	}
	for name, k := range kems {
		t.Run(name, func(t *testing.T) {
			gw := newGateway(t, 7, k, x25519Suite)
			e := ohttp.NewEncapsulator(rand.Reader)

			plaintext := []byte("binary http request")
			msg, err := e.Encapsulate(gw.raw, plaintext)
			require.NoError(t, err)
			assert.Equal(t, plaintext, gw.open(t, msg))
		})
	}
}

func TestEncapsulate_FreshPerCall(t *testing.T) {
	gw := newGateway(t, 1, hpke.KEM_X25519_HKDF_SHA256, x25519Suite)
	e := ohttp.NewEncapsulator(rand.Reader)

	plaintext := []byte("same payload")
	a, err := e.Encapsulate(gw.raw, plaintext)
	require.NoError(t, err)
	b, err := e.Encapsulate(gw.raw, plaintext)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Equal(t, a[:7], b[:7], "header is fixed by the configuration")
}

func TestEncapsulate_SkipsUnsupportedSuites(t *testing.T) {
	unknown := ohttp.Suite{KDF: hpke.KDF(0x7777), AEAD: hpke.AEAD_AES128GCM}
	chacha := ohttp.Suite{KDF: hpke.KDF_HKDF_SHA256, AEAD: hpke.AEAD_ChaCha20Poly1305}
	gw := newGateway(t, 2, hpke.KEM_X25519_HKDF_SHA256, unknown, chacha)

	suite, err := gw.cfg.SelectSuite()
	require.NoError(t, err)
	assert.Equal(t, chacha, suite)

	msg, err := ohttp.NewEncapsulator(rand.Reader).Encapsulate(gw.raw, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), gw.open(t, msg))
}

func TestParseKeyConfig_Invalid(t *testing.T) {
	gw := newGateway(t, 3, hpke.KEM_X25519_HKDF_SHA256, x25519Suite)

	tests := []struct {
		name string
		raw  []byte
	}{
		{name: "one zero byte", raw: []byte{0x00}},
		{name: "empty", raw: nil},
		{name: "unknown kem", raw: []byte{0x01, 0xff, 0xff, 0x00}},
		{name: "truncated key", raw: gw.raw[:10]},
		{name: "trailing bytes", raw: append(append([]byte{}, gw.raw...), 0x00)},
		{name: "empty suite list", raw: append(append([]byte{}, gw.raw[:3+32]...), 0x00, 0x00)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ohttp.ParseKeyConfig(tt.raw)
			assert.ErrorIs(t, err, ohttp.ErrInvalidConfig)

			_, err = ohttp.NewEncapsulator(rand.Reader).Encapsulate(tt.raw, []byte("x"))
			assert.ErrorIs(t, err, ohttp.ErrInvalidConfig)
		})
	}
}

func TestParseKeyConfig_NoSupportedSuite(t *testing.T) {
	gw := newGateway(t, 4, hpke.KEM_X25519_HKDF_SHA256, ohttp.Suite{KDF: 0x1234, AEAD: 0x5678})

	cfg, err := ohttp.ParseKeyConfig(gw.raw)
	require.NoError(t, err)
	assert.Equal(t, gw.cfg, cfg)

	_, err = ohttp.NewEncapsulator(rand.Reader).Encapsulate(gw.raw, []byte("x"))
	assert.ErrorIs(t, err, ohttp.ErrUnsupportedSuite)
}
