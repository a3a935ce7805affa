package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptPasswordHasher_HashAndVerify(t *testing.T) {
	h := newTestHasher()
	v := NewBcryptPasswordVerifier()

	hashed, err := h.Hash("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hashed)

	assert.True(t, v.Verify("correct horse battery", hashed))
	assert.False(t, v.Verify("wrong horse battery", hashed))
}

func TestBcryptPasswordHasher_SaltDiffersPerHash(t *testing.T) {
	h := newTestHasher()

	a, err := h.Hash("samepassword")
	require.NoError(t, err)
	b, err := h.Hash("samepassword")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestBcryptPasswordHasher_TooLong(t *testing.T) {
	h := newTestHasher()

	_, err := h.Hash(strings.Repeat("a", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = h.Hash(strings.Repeat("a", MaxPasswordBytes))
	assert.NoError(t, err)
}

func TestBcryptPasswordHasher_InvalidCostFallsBackToDefault(t *testing.T) {
	h := NewBcryptPasswordHasher(100)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)

	h = NewBcryptPasswordHasher(1)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)
}

func TestBcryptPasswordVerifier_MalformedHash(t *testing.T) {
	v := NewBcryptPasswordVerifier()

	assert.False(t, v.Verify("anything", ""))
	assert.False(t, v.Verify("anything", "not-a-bcrypt-hash"))
}
