package handlers

import (
	"net/http"

	"recipebox/internal/services"

	"github.com/labstack/echo/v4"
)

type IngredientHandler struct {
	ingredientService *services.IngredientService
}

func NewIngredientHandler(ingredientService *services.IngredientService) *IngredientHandler {
	return &IngredientHandler{ingredientService: ingredientService}
}

// List returns ingredients, narrowed by the optional name prefix filter.
func (h *IngredientHandler) List(c echo.Context) error {
	ingredients, err := h.ingredientService.List(c.Request().Context(), c.QueryParam("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ingredients)
}

func (h *IngredientHandler) Get(c echo.Context) error {
	ingredientID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	ingredient, err := h.ingredientService.GetByID(c.Request().Context(), ingredientID)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, ingredient)
}
