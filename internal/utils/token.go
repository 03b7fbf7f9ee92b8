package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// SecureTokenBytes is the entropy of a generated secure-link token.
// 32 bytes yields a 64-character hex token.
const SecureTokenBytes = 32

// GenerateSecureToken returns a random hex token suitable for single-use
// bearer links sent to external clients.
func GenerateSecureToken() (string, error) {
	buf := make([]byte, SecureTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
