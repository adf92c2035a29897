package handlers

import (
	"context"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"recipebox/internal/database"
	"recipebox/internal/middleware"
	"recipebox/internal/models"
	"recipebox/internal/services"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	database.DB = db
	require.NoError(t, database.Migrate())
}

func newTestRecipeHandler() *RecipeHandler {
	return NewRecipeHandler(
		services.NewRecipeService(),
		services.NewRelationService(),
		services.NewShoppingListService(),
		services.NewUserService(),
		nil,
	)
}

type testRequest struct {
	method string
	path   string
	body   string
	userID uint
	params map[string]string
}

func doRequest(t *testing.T, r testRequest, handler echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(r.method, r.path, strings.NewReader(r.body))
	if r.body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if r.userID != 0 {
		c.Set(string(middleware.UserIDKey), r.userID)
		c.Set(string(middleware.RoleKey), models.RoleUser)
	}

	names := make([]string, 0, len(r.params))
	values := make([]string, 0, len(r.params))
	for k, v := range r.params {
		names = append(names, k)
		values = append(values, v)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)

	return rec, handler(c)
}

func seedUser(t *testing.T, email string) *models.User {
	t.Helper()

	user := &models.User{
		Email:        email,
		Username:     email,
		PasswordHash: "hash",
		Role:         models.RoleUser,
	}
	require.NoError(t, database.DB.Create(user).Error)
	return user
}

func seedRecipe(t *testing.T, authorID uint, name string) *models.Recipe {
	t.Helper()

	ingredient := &models.Ingredient{Name: name + " base", MeasurementUnit: "g"}
	require.NoError(t, database.DB.Create(ingredient).Error)

	recipe, err := services.NewRecipeService().Create(context.Background(), authorID, services.CreateRecipeInput{
		Name:        name,
		Text:        "instructions",
		CookingTime: 15,
		Ingredients: []services.IngredientLineInput{{ID: ingredient.ID, Amount: 100}},
	})
	require.NoError(t, err)
	return recipe
}

func idParam(id uint) map[string]string {
	return map[string]string{"id": strconv.FormatUint(uint64(id), 10)}
}
