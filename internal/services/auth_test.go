package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService() *AuthService {
	return NewAuthService("test-secret", time.Hour)
}

func TestRegister(t *testing.T) {
	setupTestDB(t)
	svc := newTestAuthService()
	ctx := context.Background()

	resp, err := svc.Register(ctx, RegisterInput{
		Email:     "alice@example.com",
		Username:  "alice",
		FirstName: "Alice",
		LastName:  "Smith",
		Password:  "secret123",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.Equal(t, "alice", resp.User.Username)
	assert.False(t, resp.User.IsSubscribed)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	setupTestDB(t)
	svc := newTestAuthService()
	ctx := context.Background()

	input := RegisterInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "secret123",
	}
	_, err := svc.Register(ctx, input)
	require.NoError(t, err)

	input.Username = "alice2"
	_, err = svc.Register(ctx, input)
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	setupTestDB(t)
	svc := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{
		Email:    "other@example.com",
		Username: "alice",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestLogin(t *testing.T) {
	setupTestDB(t)
	svc := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "secret123",
	})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, LoginInput{
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	_, err = svc.Login(ctx, LoginInput{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{
		Email:    "nobody@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
