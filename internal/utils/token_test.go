package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewOpaqueTokenIsRandomHex(t *testing.T) {
	a, err := NewOpaqueToken()
	require.NoError(t, err)
	b, err := NewOpaqueToken()
	require.NoError(t, err)

	assert.Len(t, a, opaqueTokenBytes*2)
	assert.NotEqual(t, a, b)
}

func TestHashTokenIsStable(t *testing.T) {
	h := HashToken("abc")
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", h)
	assert.Equal(t, h, HashToken("abc"))
	assert.NotEqual(t, h, HashToken("abd"))
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("password123", bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, VerifyPassword(hash, "password123"))
	assert.False(t, VerifyPassword(hash, "password124"))
	assert.False(t, VerifyPassword("not-a-bcrypt-hash", "password123"))
}

func TestHashPasswordRejectsOverlongInput(t *testing.T) {
	long := make([]byte, 73)
	for i := range long {
		long[i] = 'a'
	}
	_, err := HashPassword(string(long), bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}
