package services

import (
	"context"
	"fmt"
	"testing"

	"recipebox/internal/database"
	"recipebox/internal/models"

	"github.com/glebarez/sqlite"
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

func createTestUser(t *testing.T, email string) *models.User {
	t.Helper()

	user := &models.User{
		Email:        email,
		Username:     email,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "hash",
		Role:         models.RoleUser,
	}
	require.NoError(t, database.DB.Create(user).Error)
	return user
}

func createTestTag(t *testing.T, name string) *models.Tag {
	t.Helper()

	tag := &models.Tag{
		Name:  name,
		Color: fmt.Sprintf("#%06x", len(name)*1000),
		Slug:  name,
	}
	require.NoError(t, database.DB.Create(tag).Error)
	return tag
}

func createTestIngredient(t *testing.T, name, unit string) *models.Ingredient {
	t.Helper()

	ingredient := &models.Ingredient{
		Name:            name,
		MeasurementUnit: unit,
	}
	require.NoError(t, database.DB.Create(ingredient).Error)
	return ingredient
}

func createTestRecipe(t *testing.T, authorID uint, name string, lines []IngredientLineInput) *models.Recipe {
	t.Helper()

	recipe, err := NewRecipeService().Create(context.Background(), authorID, CreateRecipeInput{
		Name:        name,
		Text:        "some instructions",
		CookingTime: 30,
		Ingredients: lines,
	})
	require.NoError(t, err)
	return recipe
}
