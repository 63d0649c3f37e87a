package memzero_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ohttpc/internal/util/memzero"
)

func TestZero(t *testing.T) {
	a := []byte("secret request")
	b := []byte{1, 2, 3}
	memzero.Zero(a, nil, b)

	assert.Equal(t, make([]byte, len(a)), a)
	assert.Equal(t, []byte{0, 0, 0}, b)
}
