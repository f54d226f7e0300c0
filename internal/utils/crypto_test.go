// internal/utils/crypto_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMagicLinkToken(t *testing.T) {
	token, err := GenerateMagicLinkToken()
	require.NoError(t, err)

	// 48 random bytes base64url-encode to 64 characters.
	assert.Len(t, token, 64)
	for _, r := range token {
		urlSafe := r == '-' || r == '_' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		assert.True(t, urlSafe, "token contains non-URL-safe character %q", r)
	}

	other, err := GenerateMagicLinkToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestHashString(t *testing.T) {
	assert.Equal(t, HashString("abc"), HashString("abc"))
	assert.NotEqual(t, HashString("abc"), HashString("abd"))
	assert.Len(t, HashString("abc"), 64)
}
