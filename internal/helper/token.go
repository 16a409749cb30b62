package helper

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GeneratePassToken bikin token pass 128-bit random, hex 32 karakter.
func GeneratePassToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("rand: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
