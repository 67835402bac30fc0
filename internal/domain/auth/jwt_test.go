package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))

	token, expiresAt, err := svc.GenerateAccessToken("0190f7a4-0000-7000-8000-000000000001", "ops@example.com", true)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), expiresAt, 5*time.Second)

	user, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "0190f7a4-0000-7000-8000-000000000001", user.UserID)
	assert.Equal(t, "ops@example.com", user.Email)
	assert.True(t, user.IsAdmin)
}

func TestJWTService_Rejects(t *testing.T) {
	issuer := NewJWTService(DefaultJWTConfig("test-secret"))
	token, _, err := issuer.GenerateAccessToken("u-1", "a@example.com", false)
	require.NoError(t, err)

	expired := NewJWTService(DefaultJWTConfig("test-secret"))
	expired.now = func() time.Time { return time.Now().Add(31 * time.Minute) }

	otherIssuer := DefaultJWTConfig("test-secret")
	otherIssuer.Issuer = "someone-else"

	tests := []struct {
		name  string
		svc   *JWTService
		token string
	}{
		{name: "wrong secret", svc: NewJWTService(DefaultJWTConfig("other-secret")), token: token},
		{name: "expired", svc: expired, token: token},
		{name: "wrong issuer", svc: NewJWTService(otherIssuer), token: token},
		{name: "garbage", svc: issuer, token: "not-a-jwt"},
		{name: "empty", svc: issuer, token: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.svc.ValidateToken(tt.token); err == nil {
				t.Fatalf("expected token to be rejected")
			}
		})
	}
}
