package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandDigits(t *testing.T) {
	code, err := RandDigits(6)
	require.NoError(t, err)
	assert.Len(t, code, 6)
	for _, r := range code {
		assert.True(t, r >= '0' && r <= '9')
	}
}

func TestRandState(t *testing.T) {
	a, err := RandState(16)
	require.NoError(t, err)
	b, err := RandState(16)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, "=")
}
