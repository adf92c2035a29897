package handlers

import (
	"errors"
	"net/http"

	"recipebox/internal/services"

	"github.com/labstack/echo/v4"
)

// mapServiceError translates service errors into HTTP errors. Validation
// failures and duplicate relations are 400s; missing resources, including an
// absent favorite/cart/subscription pair on remove, are 404; authorship
// violations 403.
func mapServiceError(err error) error {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		return echo.NewHTTPError(http.StatusBadRequest, validationErr.Message)
	}

	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrRecipeNotFound),
		errors.Is(err, services.ErrTagNotFound),
		errors.Is(err, services.ErrIngredientNotFound),
		errors.Is(err, services.ErrNotFavorited),
		errors.Is(err, services.ErrNotInCart),
		errors.Is(err, services.ErrNotSubscribed):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())

	case errors.Is(err, services.ErrNotAuthor):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())

	case errors.Is(err, services.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())

	case errors.Is(err, services.ErrUserExists),
		errors.Is(err, services.ErrAlreadyFavorited),
		errors.Is(err, services.ErrAlreadyInCart),
		errors.Is(err, services.ErrSelfSubscription),
		errors.Is(err, services.ErrAlreadySubscribed):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return err
}

func parseIDParam(c echo.Context, name string) (uint, error) {
	var id uint
	if err := echo.PathParamsBinder(c).Uint(name, &id).BindError(); err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
