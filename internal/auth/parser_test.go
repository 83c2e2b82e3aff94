package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/billboards-service/internal/model"
)

func sign(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestParser_Parse(t *testing.T) {
	userID := uuid.New()
	parser := NewParser("secret")

	token := sign(t, "secret", Claims{
		Role: "manager",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	principal, err := parser.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, userID, principal.UserID)
	assert.Equal(t, model.UserRoleManager, principal.Role)
	assert.True(t, principal.CanWrite())
}

func TestParser_Rejects(t *testing.T) {
	parser := NewParser("secret")
	valid := jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "wrong secret", token: sign(t, "other", Claims{Role: "ADMIN", RegisteredClaims: valid})},
		{name: "unknown role", token: sign(t, "secret", Claims{Role: "driver", RegisteredClaims: valid})},
		{name: "bad subject", token: sign(t, "secret", Claims{Role: "ADMIN", RegisteredClaims: jwt.RegisteredClaims{Subject: "42"}})},
		{name: "expired", token: sign(t, "secret", Claims{Role: "ADMIN", RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		}})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
