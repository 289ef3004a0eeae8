package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/slot-booking/internal/models"
)

func TestIssueAndParse(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	u := &models.User{ID: 42, Email: "a@example.com", Role: models.RoleAdmin}

	raw, err := svc.Issue(u)
	require.NoError(t, err)

	claims, err := svc.Parse(raw)
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "a@example.com", claims.Email)
}

func TestParseRejectsBadTokens(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	u := &models.User{ID: 1, Role: models.RolePatient}

	other, err := NewTokenService("other", time.Hour).Issue(u)
	require.NoError(t, err)
	_, err = svc.Parse(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokenService("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Issue(u)
	require.NoError(t, err)
	_, err = svc.Parse(old)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Parse(none)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestClaimsUserIDRequiresNumericSubject(t *testing.T) {
	c := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "abc"}}
	_, err := c.UserID()
	assert.ErrorIs(t, err, ErrInvalidToken)
}
