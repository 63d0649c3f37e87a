package ohttp

import (
	"errors"
	"fmt"

	"github.com/cloudflare/circl/hpke"
	"golang.org/x/crypto/cryptobyte"
)

var (
	// ErrInvalidConfig is returned when a key configuration cannot be parsed
	// or names a KEM this client does not implement.
	ErrInvalidConfig = errors.New("ohttp: invalid key configuration")
	// ErrUnsupportedSuite is returned when none of the symmetric suites in a
	// key configuration is supported.
	ErrUnsupportedSuite = errors.New("ohttp: no supported symmetric suite")
)

// Suite is one (KDF, AEAD) pair offered by a key configuration.
type Suite struct {
	KDF  hpke.KDF
	AEAD hpke.AEAD
}

// Supported reports whether circl implements both algorithms.
func (s Suite) Supported() bool { return s.KDF.IsValid() && s.AEAD.IsValid() }

// KeyConfig is a parsed key configuration.
type KeyConfig struct {
	ID        uint8
	KEM       hpke.KEM
	PublicKey []byte
	Suites    []Suite
}

// ParseKeyConfig parses a single encoded key configuration:
//
//	key_id (8) | kem_id (16) | public_key (Npk) | suites_len (16) | (kdf_id (16), aead_id (16))...
func ParseKeyConfig(raw []byte) (KeyConfig, error) {
	var (
		cfg    KeyConfig
		kemID  uint16
		suites cryptobyte.String
	)
	s := cryptobyte.String(raw)
	if !s.ReadUint8(&cfg.ID) || !s.ReadUint16(&kemID) {
		return KeyConfig{}, fmt.Errorf("%w: truncated header", ErrInvalidConfig)
	}
	cfg.KEM = hpke.KEM(kemID)
	if !cfg.KEM.IsValid() {
		return KeyConfig{}, fmt.Errorf("%w: unsupported kem 0x%04x", ErrInvalidConfig, kemID)
	}

	npk := cfg.KEM.Scheme().PublicKeySize()
	if !s.ReadBytes(&cfg.PublicKey, npk) {
		return KeyConfig{}, fmt.Errorf("%w: truncated public key", ErrInvalidConfig)
	}
	if !s.ReadUint16LengthPrefixed(&suites) || len(suites) == 0 || len(suites)%4 != 0 {
		return KeyConfig{}, fmt.Errorf("%w: bad symmetric suite list", ErrInvalidConfig)
	}
	for !suites.Empty() {
		var kdf, aead uint16
		if !suites.ReadUint16(&kdf) || !suites.ReadUint16(&aead) {
			return KeyConfig{}, fmt.Errorf("%w: bad symmetric suite list", ErrInvalidConfig)
		}
		cfg.Suites = append(cfg.Suites, Suite{KDF: hpke.KDF(kdf), AEAD: hpke.AEAD(aead)})
	}
	if !s.Empty() {
		return KeyConfig{}, fmt.Errorf("%w: %d trailing bytes", ErrInvalidConfig, len(s))
	}
	return cfg, nil
}

// Marshal encodes the configuration in the form ParseKeyConfig reads.
func (c KeyConfig) Marshal() ([]byte, error) {
	var b cryptobyte.Builder
	b.AddUint8(c.ID)
	b.AddUint16(uint16(c.KEM))
	b.AddBytes(c.PublicKey)
	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
		for _, s := range c.Suites {
			b.AddUint16(uint16(s.KDF))
			b.AddUint16(uint16(s.AEAD))
		}
	})
	return b.Bytes()
}

// SelectSuite returns the first supported suite in preference order.
func (c KeyConfig) SelectSuite() (Suite, error) {
	for _, s := range c.Suites {
		if s.Supported() {
			return s, nil
		}
	}
	return Suite{}, ErrUnsupportedSuite
}
