package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_IssueAndValidate(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, issued, err := svc.Issue(7, "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, issued.ID, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestJWTService_ValidateRejects(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	other, _, err := NewJWTService("other-secret", time.Hour).Issue(7, "alice")
	require.NoError(t, err)
	_, err = svc.Validate(other)
	assert.Error(t, err, "wrong signature")

	expired, _, err := NewJWTService("test-secret", -time.Minute).Issue(7, "alice")
	require.NoError(t, err)
	_, err = svc.Validate(expired)
	assert.Error(t, err, "expired")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 7, Username: "alice"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Validate(unsigned)
	assert.Error(t, err, "alg none")

	_, err = svc.Validate("garbage")
	assert.Error(t, err)
}
