package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret12")
	require.NoError(t, err)
	assert.NotEqual(t, "secret12", hash)

	assert.True(t, h.Verify(hash, "secret12"))
	assert.False(t, h.Verify(hash, "wrong"))
	assert.False(t, h.Verify("not-a-hash", "secret12"))
}

func TestNewBcryptHasher_OutOfRangeCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).Cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).Cost)
	assert.Equal(t, 10, NewBcryptHasher(10).Cost)
}

func TestBcryptHasher_TooLong(t *testing.T) {
	_, err := NewBcryptHasher(bcrypt.MinCost).Hash(strings.Repeat("x", 100))
	require.Error(t, err)
}
