package auth_test

import (
	"chatroom/backend/internal/auth"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := auth.NewTokenManager("secret", time.Hour)

	token, err := m.Issue("u1", "alice", "admin")
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "admin", claims.Role)
}

func TestTokenManager_Rejects(t *testing.T) {
	m := auth.NewTokenManager("secret", time.Hour)

	expired, err := auth.NewTokenManager("secret", -time.Minute).Issue("u1", "alice", "user")
	require.NoError(t, err)
	foreign, err := auth.NewTokenManager("other-secret", time.Hour).Issue("u1", "alice", "user")
	require.NoError(t, err)
	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"userId": "u1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"garbage", "not-a-token", auth.ErrInvalidToken},
		{"expired", expired, auth.ErrExpiredToken},
		{"wrong secret", foreign, auth.ErrInvalidToken},
		{"alg none", noneAlg, auth.ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Validate(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPasswordHasher(t *testing.T) {
	h := auth.NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.True(t, h.Verify("correct horse", hash))
	assert.False(t, h.Verify("wrong", hash))
}
