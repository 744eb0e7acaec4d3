package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, err := svc.GenerateToken(42, "ada@example.com")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, tokenIssuer, claims.Issuer)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService("test-secret")

	sign := func(method jwt.SigningMethod, key interface{}, claims Claims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	valid := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "wrong secret", token: sign(jwt.SigningMethodHS256, []byte("other"), Claims{UserID: 1, RegisteredClaims: valid})},
		{name: "wrong algorithm", token: sign(jwt.SigningMethodHS512, []byte("test-secret"), Claims{UserID: 1, RegisteredClaims: valid})},
		{name: "expired", token: sign(jwt.SigningMethodHS256, []byte("test-secret"), Claims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		}})},
		{name: "no expiry", token: sign(jwt.SigningMethodHS256, []byte("test-secret"), Claims{UserID: 1})},
		{name: "no user", token: sign(jwt.SigningMethodHS256, []byte("test-secret"), Claims{Email: "x@example.com", RegisteredClaims: valid})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.ValidateToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}
