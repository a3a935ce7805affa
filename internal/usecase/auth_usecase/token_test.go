package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signClaims(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestJWTService_IssueAndVerify(t *testing.T) {
	svc := newTestTokens()
	now := time.Now().UTC()

	raw, exp, err := svc.Issue("user-1", now)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(time.Hour), exp, time.Second)

	sub, err := svc.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)
}

func TestJWTService_Issue_EmptySubject(t *testing.T) {
	_, _, err := newTestTokens().Issue("", time.Now())
	assert.Error(t, err)
}

func TestJWTService_Verify_Expired(t *testing.T) {
	svc := newTestTokens()

	raw, _, err := svc.Issue("user-1", time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = svc.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_Verify_WrongSecret(t *testing.T) {
	other := NewJWTService("another-secret-0123456789", "marketplace", time.Hour)
	raw, _, err := other.Issue("user-1", time.Now())
	require.NoError(t, err)

	_, err = newTestTokens().Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_Verify_WrongIssuer(t *testing.T) {
	other := NewJWTService("test-secret-0123456789", "someone-else", time.Hour)
	raw, _, err := other.Issue("user-1", time.Now())
	require.NoError(t, err)

	_, err = newTestTokens().Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_Verify_RejectsOtherAlgorithms(t *testing.T) {
	svc := newTestTokens()
	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "marketplace",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	hs512 := signClaims(t, jwt.SigningMethodHS512, []byte("test-secret-0123456789"), claims)
	_, err := svc.Verify(hs512)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := signClaims(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, claims)
	_, err = svc.Verify(none)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_Verify_MissingExpOrSubject(t *testing.T) {
	svc := newTestTokens()
	key := []byte("test-secret-0123456789")

	noExp := signClaims(t, jwt.SigningMethodHS256, key, jwt.RegisteredClaims{
		Subject: "user-1",
		Issuer:  "marketplace",
	})
	_, err := svc.Verify(noExp)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noSub := signClaims(t, jwt.SigningMethodHS256, key, jwt.RegisteredClaims{
		Issuer:    "marketplace",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	_, err = svc.Verify(noSub)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_Verify_Garbage(t *testing.T) {
	svc := newTestTokens()

	for _, raw := range []string{"", "abc", "a.b.c"} {
		_, err := svc.Verify(raw)
		assert.ErrorIs(t, err, ErrInvalidToken, raw)
	}
}
