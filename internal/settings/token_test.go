package settings

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	hash, err := HashToken("s3cret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=1,p=4$"))

	ok, err := VerifyToken("s3cret", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyToken("guess", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTokenHashesAreSalted(t *testing.T) {
	a, err := HashToken("same")
	require.NoError(t, err)
	b, err := HashToken("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyTokenHonoursEncodedCost(t *testing.T) {
	hash, err := HashToken("s3cret")
	require.NoError(t, err)
	cheaper := strings.Replace(hash, "m=65536,t=1,p=4", "m=8192,t=2,p=1", 1)

	// Same salt and key under different cost parameters must not verify.
	ok, err := VerifyToken("s3cret", cheaper)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyTokenRejectsMalformedHash(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plain",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=16$m=65536,t=1,p=4$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=1,p=4$c2FsdA$a2V5",
		"$argon2id$v=19$m=65536,t=1,p=4$%%%$a2V5",
		"$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$",
	} {
		_, err := VerifyToken("s3cret", encoded)
		assert.ErrorIs(t, err, ErrMalformedTokenHash, encoded)
	}
}
