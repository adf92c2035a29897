package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"recipebox/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapServiceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"recipe not found", services.ErrRecipeNotFound, http.StatusNotFound},
		{"user not found", services.ErrUserNotFound, http.StatusNotFound},
		{"not author", services.ErrNotAuthor, http.StatusForbidden},
		{"invalid credentials", services.ErrInvalidCredentials, http.StatusUnauthorized},
		{"duplicate favorite", services.ErrAlreadyFavorited, http.StatusBadRequest},
		{"duplicate cart entry", services.ErrAlreadyInCart, http.StatusBadRequest},
		{"duplicate subscription", services.ErrAlreadySubscribed, http.StatusBadRequest},
		{"self subscription", services.ErrSelfSubscription, http.StatusBadRequest},
		{"user exists", services.ErrUserExists, http.StatusBadRequest},
		{"absent favorite", services.ErrNotFavorited, http.StatusNotFound},
		{"absent cart entry", services.ErrNotInCart, http.StatusNotFound},
		{"absent subscription", services.ErrNotSubscribed, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapServiceError(tt.err)

			var httpErr *echo.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.code, httpErr.Code)
		})
	}
}

func TestMapServiceErrorValidation(t *testing.T) {
	setupTestDB(t)
	svc := services.NewRecipeService()
	author := seedUser(t, "alice@example.com")

	_, err := svc.Create(context.Background(), author.ID, services.CreateRecipeInput{
		Name:        "Bad",
		CookingTime: 0,
	})

	mapped := mapServiceError(err)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, mapped, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestMapServiceErrorPassesUnknownThrough(t *testing.T) {
	sentinel := errors.New("database on fire")
	assert.Equal(t, sentinel, mapServiceError(sentinel))
}
