package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastParams = Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func TestHashAndVerify(t *testing.T) {
	hash, err := HashPasswordWithParams("correct horse", fastParams)
	require.NoError(t, err)
	assert.Contains(t, string(hash), "$argon2id$v=19$t=1,m=8192,p=1$")
	assert.NotContains(t, string(hash), "correct horse")

	ok, err := VerifyPassword("correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong horse", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashUsesFreshSalt(t *testing.T) {
	a, err := HashPasswordWithParams("same", fastParams)
	require.NoError(t, err)
	b, err := HashPasswordWithParams("same", fastParams)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyMalformed(t *testing.T) {
	for _, in := range []string{"", "plain", "$bcrypt$v=19$t=1,m=1,p=1$aa$bb", "$argon2id$v=18$t=1,m=1,p=1$aa$bb"} {
		_, err := VerifyPassword("x", []byte(in))
		assert.ErrorIs(t, err, ErrMalformedHash, in)
	}
}
