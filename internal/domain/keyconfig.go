package domain

import (
	"encoding/hex"
	"fmt"
)

// ParseKeyConfiguration decodes the hexadecimal form of a key configuration
// as given on the command line. Odd-length or non-hex input is rejected.
func ParseKeyConfiguration(s string) (KeyConfiguration, error) {
	if s == "" {
		return nil, Wrap(KindConfig, "key configuration", ErrEmptyKeyConfig)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, Wrap(KindConfig, "key configuration", fmt.Errorf("invalid hex: %w", err))
	}
	return KeyConfiguration(b), nil
}
