package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	user, err := CreateUser("jane", "jane@example.com", "s3cret-pw")
	require.NoError(t, err)

	assert.Equal(t, "jane", user.Name)
	assert.Equal(t, ROLE_USER, user.Role)
	assert.Equal(t, STATUS_INACTIVE, user.Status)
	assert.False(t, user.IsActive())
	assert.NotEqual(t, "s3cret-pw", user.Password)
	assert.True(t, user.CheckPassword("s3cret-pw"))
	assert.False(t, user.CheckPassword("wrong"))
}

func TestCreateUserRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{name: "short name", username: "ab", email: "jane@example.com", password: "s3cret-pw"},
		{name: "bad email", username: "jane", email: "not-an-email", password: "s3cret-pw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateUser(tt.username, tt.email, tt.password)
			require.Error(t, err)
		})
	}
}

func TestGenerateActivationToken(t *testing.T) {
	user := &User{Name: "jane", Email: "jane@example.com"}
	require.NoError(t, user.GenerateActivationToken())

	assert.Len(t, user.ActivationToken, 32)
	assert.NotNil(t, user.ActivationSentAt)

	first := user.ActivationToken
	require.NoError(t, user.GenerateActivationToken())
	assert.NotEqual(t, first, user.ActivationToken)
}

func TestGeneratePasswordResetToken(t *testing.T) {
	user := &User{Name: "jane", Email: "jane@example.com"}
	require.NoError(t, user.GeneratePasswordResetToken())

	assert.Len(t, user.PasswordResetToken, 32)
	assert.NotNil(t, user.PasswordResetSentAt)
	assert.True(t, user.PasswordResetTokenValid())

	first := user.PasswordResetToken
	require.NoError(t, user.GeneratePasswordResetToken())
	assert.NotEqual(t, first, user.PasswordResetToken)
}

func TestPasswordResetTokenValid(t *testing.T) {
	fresh := time.Now().Add(-5 * time.Minute)
	stale := time.Now().Add(-2 * time.Hour)

	tests := []struct {
		name string
		user User
		want bool
	}{
		{name: "no token", user: User{}, want: false},
		{name: "token without timestamp", user: User{PasswordResetToken: "abc"}, want: false},
		{name: "fresh token", user: User{PasswordResetToken: "abc", PasswordResetSentAt: &fresh}, want: true},
		{name: "expired token", user: User{PasswordResetToken: "abc", PasswordResetSentAt: &stale}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.PasswordResetTokenValid())
		})
	}
}

func TestClearPasswordResetToken(t *testing.T) {
	user := &User{Name: "jane", Email: "jane@example.com"}
	require.NoError(t, user.GeneratePasswordResetToken())

	user.ClearPasswordResetToken()
	assert.Empty(t, user.PasswordResetToken)
	assert.Nil(t, user.PasswordResetSentAt)
	assert.False(t, user.PasswordResetTokenValid())
}

func TestSetPassword(t *testing.T) {
	user := &User{Name: "jane", Email: "jane@example.com"}
	require.NoError(t, user.SetPassword("new-password"))

	assert.True(t, user.CheckPassword("new-password"))
	assert.False(t, user.CheckPassword("old-password"))
}
