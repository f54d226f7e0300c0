// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// MagicLinkTokenBytes yields a 64-character URL-safe token once encoded.
const MagicLinkTokenBytes = 48

// GenerateMagicLinkToken returns a cryptographically random URL-safe token of
// at least 64 characters.
func GenerateMagicLinkToken() (string, error) {
	b := make([]byte, MagicLinkTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func HashString(input string) string {
	hasher := sha256.New()
	hasher.Write([]byte(input))
	return hex.EncodeToString(hasher.Sum(nil))
}
