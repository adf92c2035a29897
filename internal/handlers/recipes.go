package handlers

import (
	"net/http"
	"strings"

	"recipebox/internal/export"
	"recipebox/internal/jobs"
	"recipebox/internal/logging"
	"recipebox/internal/middleware"
	"recipebox/internal/models"
	"recipebox/internal/services"

	"github.com/labstack/echo/v4"
)

type RecipeHandler struct {
	recipeService       *services.RecipeService
	relationService     *services.RelationService
	shoppingListService *services.ShoppingListService
	userService         *services.UserService
	jobsClient          *jobs.Client
}

func NewRecipeHandler(
	recipeService *services.RecipeService,
	relationService *services.RelationService,
	shoppingListService *services.ShoppingListService,
	userService *services.UserService,
	jobsClient *jobs.Client,
) *RecipeHandler {
	return &RecipeHandler{
		recipeService:       recipeService,
		relationService:     relationService,
		shoppingListService: shoppingListService,
		userService:         userService,
		jobsClient:          jobsClient,
	}
}

func viewerID(c echo.Context) *uint {
	if id, ok := middleware.GetUserID(c); ok {
		return &id
	}
	return nil
}

func isAdmin(c echo.Context) bool {
	return middleware.GetRole(c) == models.RoleAdmin
}

func (h *RecipeHandler) List(c echo.Context) error {
	var input services.ListRecipesInput
	echo.QueryParamsBinder(c).
		Int("page", &input.Page).
		Int("per_page", &input.PerPage).
		Uint("author", &input.AuthorID).
		Bool("is_favorited", &input.IsFavorited).
		Bool("is_in_shopping_cart", &input.IsInShoppingCart)
	input.Search = c.QueryParam("search")

	if tags := c.QueryParams()["tags"]; len(tags) > 0 {
		for _, t := range tags {
			for _, slug := range strings.Split(t, ",") {
				if slug != "" {
					input.TagSlugs = append(input.TagSlugs, slug)
				}
			}
		}
	}

	resp, err := h.recipeService.List(c.Request().Context(), viewerID(c), input)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *RecipeHandler) Get(c echo.Context) error {
	recipeID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	recipe, err := h.recipeService.GetByID(ctx, recipeID)
	if err != nil {
		return mapServiceError(err)
	}

	var favorited, inCart, authorSubscribed bool
	if viewer := viewerID(c); viewer != nil {
		if favorited, err = h.recipeService.IsFavorited(ctx, recipe.ID, *viewer); err != nil {
			return err
		}
		if inCart, err = h.recipeService.IsInShoppingCart(ctx, recipe.ID, *viewer); err != nil {
			return err
		}
		if *viewer != recipe.AuthorID {
			if authorSubscribed, err = h.userService.IsSubscribed(ctx, *viewer, recipe.AuthorID); err != nil {
				return err
			}
		}
	}

	return c.JSON(http.StatusOK, recipe.ToResponse(favorited, inCart, authorSubscribed))
}

func (h *RecipeHandler) Create(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	var input services.CreateRecipeInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if input.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	ctx := c.Request().Context()
	recipe, err := h.recipeService.Create(ctx, userID, input)
	if err != nil {
		return mapServiceError(err)
	}

	if h.jobsClient != nil {
		if err := h.jobsClient.EnqueueRecipePublished(ctx, recipe.ID, recipe.Name, recipe.AuthorID); err != nil {
			logging.Error(ctx).Err(err).Uint("recipe_id", recipe.ID).Msg("failed to enqueue recipe notification")
		}
	}

	return c.JSON(http.StatusCreated, recipe.ToResponse(false, false, false))
}

func (h *RecipeHandler) Update(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	recipeID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var input services.UpdateRecipeInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	recipe, err := h.recipeService.Update(ctx, recipeID, userID, isAdmin(c), input)
	if err != nil {
		return mapServiceError(err)
	}

	favorited, err := h.recipeService.IsFavorited(ctx, recipe.ID, userID)
	if err != nil {
		return err
	}
	inCart, err := h.recipeService.IsInShoppingCart(ctx, recipe.ID, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, recipe.ToResponse(favorited, inCart, false))
}

func (h *RecipeHandler) Delete(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	recipeID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.recipeService.Delete(c.Request().Context(), recipeID, userID, isAdmin(c)); err != nil {
		return mapServiceError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *RecipeHandler) Favorite(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	recipeID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	summary, err := h.relationService.AddFavorite(c.Request().Context(), userID, recipeID)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusCreated, summary)
}

func (h *RecipeHandler) Unfavorite(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	recipeID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.relationService.RemoveFavorite(c.Request().Context(), userID, recipeID); err != nil {
		return mapServiceError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *RecipeHandler) AddToCart(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	recipeID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	summary, err := h.relationService.AddToCart(c.Request().Context(), userID, recipeID)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusCreated, summary)
}

func (h *RecipeHandler) RemoveFromCart(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	recipeID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.relationService.RemoveFromCart(c.Request().Context(), userID, recipeID); err != nil {
		return mapServiceError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// DownloadShoppingCart aggregates the viewer's cart into one row per
// ingredient and streams it back as a PDF attachment. An empty cart still
// yields a document.
func (h *RecipeHandler) DownloadShoppingCart(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	ctx := c.Request().Context()
	rows, err := h.shoppingListService.Aggregate(ctx, userID)
	if err != nil {
		return err
	}

	pdf, err := export.RenderPDF(rows)
	if err != nil {
		logging.Error(ctx).Err(err).Uint("user_id", userID).Msg("failed to render shopping list pdf")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to render shopping list")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+export.PDFFileName+`"`)
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
