package handlers

import (
	"net/http"

	"recipebox/internal/middleware"
	"recipebox/internal/services"

	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	userService         *services.UserService
	subscriptionService *services.SubscriptionService
}

func NewUserHandler(userService *services.UserService, subscriptionService *services.SubscriptionService) *UserHandler {
	return &UserHandler{
		userService:         userService,
		subscriptionService: subscriptionService,
	}
}

// Get returns a user profile. The is_subscribed flag reflects the viewer;
// anonymous viewers always see false.
func (h *UserHandler) Get(c echo.Context) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var viewerID *uint
	if id, ok := middleware.GetUserID(c); ok {
		viewerID = &id
	}

	profile, err := h.userService.GetProfile(c.Request().Context(), viewerID, userID)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) UpdateMe(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	var input services.UpdateUserInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, err := h.userService.Update(c.Request().Context(), userID, input)
	if err != nil {
		return mapServiceError(err)
	}

	resp := user.ToResponse(false)
	return c.JSON(http.StatusOK, resp)
}

// Subscribe adds the target author to the viewer's feed and returns the
// author with a recipe preview list, truncated to recipes_limit when given.
func (h *UserHandler) Subscribe(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	authorID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var recipesLimit int
	echo.QueryParamsBinder(c).Int("recipes_limit", &recipesLimit)

	author, err := h.subscriptionService.Subscribe(c.Request().Context(), userID, authorID, recipesLimit)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusCreated, author)
}

func (h *UserHandler) Unsubscribe(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	authorID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.subscriptionService.Unsubscribe(c.Request().Context(), userID, authorID); err != nil {
		return mapServiceError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *UserHandler) ListSubscriptions(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	var input services.ListSubscriptionsInput
	echo.QueryParamsBinder(c).
		Int("page", &input.Page).
		Int("per_page", &input.PerPage).
		Int("recipes_limit", &input.RecipesLimit)

	resp, err := h.subscriptionService.List(c.Request().Context(), userID, input)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, resp)
}
