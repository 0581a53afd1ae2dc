package authUtils

import (
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndSetToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	tokenString, err := GenerateAndSetToken("user123")
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "user123", claims["user_id"])
	assert.NotNil(t, claims["exp"])
}

func TestGenerateAndSetTokenMissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := GenerateAndSetToken("user123")
	assert.Error(t, err)
}
