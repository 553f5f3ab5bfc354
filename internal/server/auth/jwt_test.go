package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/cyclelogin/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(ts *time.Time) func() time.Time {
	return func() time.Time { return *ts }
}

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	tok, exp, err := GenerateToken(RoleDev, []byte("super-secret"), time.Hour, t0)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(time.Hour), exp)

	claims, err := ParseToken(tok, []byte("super-secret"), t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, RoleDev, claims.Subject)
	assert.Equal(t, RoleDev, claims.Role)
	assert.Len(t, claims.ID, 2*tokenIDBytes)
}

func TestGenerateToken_UniqueIDs(t *testing.T) {
	a, _, err := GenerateToken(RoleDev, []byte("k"), time.Hour, t0)
	require.NoError(t, err)
	b, _, err := GenerateToken(RoleDev, []byte("k"), time.Hour, t0)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	tok, _, err := GenerateToken(RoleDev, []byte("secret"), time.Hour, t0)
	require.NoError(t, err)

	_, err = ParseToken(tok, []byte("secret"), t0.Add(2*time.Hour))
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, _, err := GenerateToken(RoleDev, []byte("right"), time.Hour, t0)
	require.NoError(t, err)

	_, err = ParseToken(tok, []byte("wrong"), t0)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	tok := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(t0.Add(time.Hour))},
		Role:             RoleDev,
	})
	s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseToken(s, []byte("secret"), t0)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParseToken_Garbage(t *testing.T) {
	_, err := ParseToken("not-a-jwt", []byte("secret"), t0)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestIssuer_ExchangeAndVerify(t *testing.T) {
	now := t0
	iss := NewIssuer("secret", "9659829", 24*time.Hour).WithClock(fixedClock(&now))

	_, _, err := iss.Exchange("1234567")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	tok, exp, err := iss.Exchange("9659829")
	require.NoError(t, err)
	assert.Equal(t, t0.Add(24*time.Hour), exp)

	p, err := iss.Verify(tok)
	require.NoError(t, err)
	assert.True(t, p.Allowed(now))
	assert.Equal(t, RoleDev, p.Subject())
	assert.NoError(t, Require(p, now))

	now = t0.Add(25 * time.Hour)
	_, err = iss.Verify(tok)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
	assert.False(t, p.Allowed(now))
	assert.ErrorIs(t, Require(p, now), common.ErrorUnauthorized)
}

func TestIssuer_EmptyPINDisablesOverride(t *testing.T) {
	iss := NewIssuer("secret", "", time.Hour)

	assert.False(t, iss.IsOverride(""))
	_, _, err := iss.Exchange("")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestIssuer_VerifyEmptyToken(t *testing.T) {
	_, err := NewIssuer("secret", "1", time.Hour).Verify("")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestPrivilege_ZeroValueGrantsNothing(t *testing.T) {
	var p Privilege
	assert.False(t, p.Allowed(t0))
	assert.ErrorIs(t, Require(p, t0), common.ErrorUnauthorized)
}
