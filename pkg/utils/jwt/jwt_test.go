package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	Init("test-secret")

	token, err := GenerateToken(42, "student@example.com", "Test Student")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "student@example.com", claims.Email)
	assert.Equal(t, "Test Student", claims.FullName)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	Init("test-secret")

	_, err := ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	Init("secret-one")
	token, err := GenerateToken(1, "a@b.com", "A B")
	require.NoError(t, err)

	Init("secret-two")
	_, err = ValidateToken(token)
	assert.Error(t, err)
}
