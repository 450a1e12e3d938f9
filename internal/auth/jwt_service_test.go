package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJWTService_AccessTokenRoundTrip(t *testing.T) {
	service := NewJWTService("test-secret")

	token, err := service.GenerateAccessToken(7, "member@example.com", true)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "member@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)
}

func TestJWTService_ValidateToken_WrongSecret(t *testing.T) {
	token, err := NewJWTService("test-secret").GenerateAccessToken(7, "member@example.com", false)
	assert.NoError(t, err)

	claims, err := NewJWTService("other-secret").ValidateToken(token)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWTService_ExtractTokenID(t *testing.T) {
	service := NewJWTService("test-secret")

	tokenID, refreshToken, err := service.GenerateRefreshToken(7, "member@example.com", false)
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenID)

	extracted, err := service.ExtractTokenID(refreshToken)
	assert.NoError(t, err)
	assert.Equal(t, tokenID, extracted)

	// Access tokens carry no jti.
	accessToken, err := service.GenerateAccessToken(7, "member@example.com", false)
	assert.NoError(t, err)
	_, err = service.ExtractTokenID(accessToken)
	assert.Error(t, err)
}
