package helper

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePassToken(t *testing.T) {
	token, err := GeneratePassToken()
	require.NoError(t, err)

	assert.Len(t, token, 32) // 16 byte = 128 bit entropy

	_, err = hex.DecodeString(token)
	assert.NoError(t, err)
}

func TestGeneratePassTokenUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		token, err := GeneratePassToken()
		require.NoError(t, err)
		assert.False(t, seen[token])
		seen[token] = true
	}
}
