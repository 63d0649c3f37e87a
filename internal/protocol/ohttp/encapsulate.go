package ohttp

import (
	"fmt"
	"io"

	"github.com/cloudflare/circl/hpke"
	"golang.org/x/crypto/cryptobyte"
)

// requestLabel is the HPKE info prefix for encapsulated requests.
const requestLabel = "message/bhttp request"

// Encapsulator seals requests for a gateway. It holds no per-request state:
// every call sets up a new HPKE sender context from rand.
type Encapsulator struct {
	rand io.Reader
}

// NewEncapsulator returns an Encapsulator drawing randomness from rand.
func NewEncapsulator(rand io.Reader) *Encapsulator {
	return &Encapsulator{rand: rand}
}

// Encapsulate parses config and seals plaintext, returning
// header || enc || ciphertext.
func (e *Encapsulator) Encapsulate(config []byte, plaintext []byte) ([]byte, error) {
	cfg, err := ParseKeyConfig(config)
	if err != nil {
		return nil, err
	}
	suite, err := cfg.SelectSuite()
	if err != nil {
		return nil, err
	}
	pk, err := cfg.KEM.Scheme().UnmarshalBinaryPublicKey(cfg.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: public key: %v", ErrInvalidConfig, err)
	}

	hdr := header(cfg.ID, cfg.KEM, suite)
	sender, err := hpke.NewSuite(cfg.KEM, suite.KDF, suite.AEAD).NewSender(pk, info(hdr))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	enc, sealer, err := sender.Setup(e.rand)
	if err != nil {
		return nil, fmt.Errorf("ohttp: hpke setup: %w", err)
	}
	ct, err := sealer.Seal(plaintext, nil)
	if err != nil {
		return nil, fmt.Errorf("ohttp: seal: %w", err)
	}

	out := make([]byte, 0, len(hdr)+len(enc)+len(ct))
	out = append(out, hdr...)
	out = append(out, enc...)
	return append(out, ct...), nil
}

func header(id uint8, kem hpke.KEM, s Suite) []byte {
	var b cryptobyte.Builder
	b.AddUint8(id)
	b.AddUint16(uint16(kem))
	b.AddUint16(uint16(s.KDF))
	b.AddUint16(uint16(s.AEAD))
	return b.BytesOrPanic()
}

func info(hdr []byte) []byte {
	out := make([]byte, 0, len(requestLabel)+1+len(hdr))
	out = append(out, requestLabel...)
	out = append(out, 0)
	return append(out, hdr...)
}
