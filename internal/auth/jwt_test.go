package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerifyToken(t *testing.T) {
	m := NewJWTManager("test-secret", "archive-backend")

	identity := Identity{UserID: 42, Username: "alice", Role: RoleAdmin}

	token, err := m.GenerateToken(identity)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := m.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, identity, got)
	assert.True(t, got.IsAdmin())
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	m := NewJWTManager("secret-a", "")
	token, err := m.GenerateToken(Identity{UserID: 1, Username: "bob", Role: RoleUser})
	require.NoError(t, err)

	other := NewJWTManager("secret-b", "")
	_, err = other.VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyTokenGarbage(t *testing.T) {
	m := NewJWTManager("secret", "")
	_, err := m.VerifyToken("not.a.token")
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	token, err := ExtractTokenFromHeader("Bearer abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	_, err = ExtractTokenFromHeader("abc123")
	assert.Error(t, err)

	_, err = ExtractTokenFromHeader("")
	assert.Error(t, err)
}
