package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUserPassword(t *testing.T) {
	user := &User{Password: "plain-text-pass"}
	require.NoError(t, user.HashPassword())

	assert.NotEqual(t, "plain-text-pass", user.Password)
	assert.True(t, user.CheckPassword("plain-text-pass"))
	assert.False(t, user.CheckPassword("other-pass"))
	assert.False(t, user.CheckPassword(""))
}

func TestUserIsAdmin(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
	assert.False(t, (&User{}).IsAdmin())
}

func TestOAuthClientVerifyPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("client-secret"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name   string
		client OAuthClient
		secret string
		want   bool
	}{
		{name: "confidential match", client: OAuthClient{Secret: string(hash)}, secret: "client-secret", want: true},
		{name: "confidential mismatch", client: OAuthClient{Secret: string(hash)}, secret: "nope", want: false},
		{name: "confidential without secret", client: OAuthClient{Secret: string(hash)}, secret: "", want: false},
		{name: "public without secret", client: OAuthClient{Public: true}, secret: "", want: true},
		{name: "public with secret", client: OAuthClient{Public: true}, secret: "anything", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.client.VerifyPassword(tt.secret))
		})
	}
}

func TestOAuthClientGetUserID(t *testing.T) {
	assert.Equal(t, "", (&OAuthClient{}).GetUserID())
	assert.Equal(t, "42", (&OAuthClient{UserID: 42}).GetUserID())
}

func TestNewAPIError(t *testing.T) {
	err := NewAPIError(ErrNotFound, "Not found")
	assert.Equal(t, ErrNotFound, err.Code)
	assert.Nil(t, err.Details)

	err = NewAPIError(ErrValidationFailed, "Validation failed", map[string]interface{}{"name": []string{"required"}})
	assert.Contains(t, err.Details, "name")
}
