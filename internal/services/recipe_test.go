package services

import (
	"context"
	"testing"

	"recipebox/internal/database"
	"recipebox/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRecipe(t *testing.T) {
	setupTestDB(t)
	svc := NewRecipeService()
	ctx := context.Background()

	author := createTestUser(t, "alice@example.com")
	breakfast := createTestTag(t, "breakfast")
	dinner := createTestTag(t, "dinner")
	flour := createTestIngredient(t, "flour", "g")
	salt := createTestIngredient(t, "salt", "g")

	recipe, err := svc.Create(ctx, author.ID, CreateRecipeInput{
		Name:        "Pancakes",
		Text:        "Mix and fry.",
		Image:       "pancakes.png",
		CookingTime: 20,
		Tags:        []uint{breakfast.ID, dinner.ID},
		Ingredients: []IngredientLineInput{
			{ID: flour.ID, Amount: 200},
			{ID: salt.ID, Amount: 5},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Pancakes", recipe.Name)
	assert.Equal(t, author.ID, recipe.AuthorID)
	assert.Len(t, recipe.Tags, 2)
	require.Len(t, recipe.Ingredients, 2)

	amounts := map[string]int{}
	for _, line := range recipe.Ingredients {
		amounts[line.Ingredient.Name] = line.Amount
	}
	assert.Equal(t, 200, amounts["flour"])
	assert.Equal(t, 5, amounts["salt"])

	reloaded, err := svc.GetByID(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, recipe.ID, reloaded.ID)
	assert.Len(t, reloaded.Ingredients, 2)
}

func TestCreateRecipeValidation(t *testing.T) {
	setupTestDB(t)
	svc := NewRecipeService()
	ctx := context.Background()

	author := createTestUser(t, "alice@example.com")
	flour := createTestIngredient(t, "flour", "g")

	tests := []struct {
		name  string
		input CreateRecipeInput
	}{
		{
			name: "zero cooking time",
			input: CreateRecipeInput{
				Name:        "Bad",
				CookingTime: 0,
			},
		},
		{
			name: "zero amount",
			input: CreateRecipeInput{
				Name:        "Bad",
				CookingTime: 10,
				Ingredients: []IngredientLineInput{{ID: flour.ID, Amount: 0}},
			},
		},
		{
			name: "negative amount",
			input: CreateRecipeInput{
				Name:        "Bad",
				CookingTime: 10,
				Ingredients: []IngredientLineInput{{ID: flour.ID, Amount: -5}},
			},
		},
		{
			name: "duplicate ingredient",
			input: CreateRecipeInput{
				Name:        "Bad",
				CookingTime: 10,
				Ingredients: []IngredientLineInput{
					{ID: flour.ID, Amount: 100},
					{ID: flour.ID, Amount: 50},
				},
			},
		},
		{
			name: "unknown ingredient",
			input: CreateRecipeInput{
				Name:        "Bad",
				CookingTime: 10,
				Ingredients: []IngredientLineInput{{ID: 9999, Amount: 100}},
			},
		},
		{
			name: "unknown tag",
			input: CreateRecipeInput{
				Name:        "Bad",
				CookingTime: 10,
				Tags:        []uint{9999},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, author.ID, tt.input)

			var validationErr *ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}

	var count int64
	database.DB.Model(&models.Recipe{}).Count(&count)
	assert.Zero(t, count, "failed creates must not leave partial recipes")

	database.DB.Model(&models.RecipeIngredient{}).Count(&count)
	assert.Zero(t, count)
}

func TestUpdateRecipeReplacesIngredients(t *testing.T) {
	setupTestDB(t)
	svc := NewRecipeService()
	ctx := context.Background()

	author := createTestUser(t, "alice@example.com")
	flour := createTestIngredient(t, "flour", "g")
	salt := createTestIngredient(t, "salt", "g")
	sugar := createTestIngredient(t, "sugar", "g")

	recipe := createTestRecipe(t, author.ID, "Pancakes", []IngredientLineInput{
		{ID: flour.ID, Amount: 200},
		{ID: salt.ID, Amount: 5},
	})

	newLines := []IngredientLineInput{
		{ID: flour.ID, Amount: 300},
		{ID: sugar.ID, Amount: 50},
	}
	updated, err := svc.Update(ctx, recipe.ID, author.ID, false, UpdateRecipeInput{
		Ingredients: &newLines,
	})
	require.NoError(t, err)
	require.Len(t, updated.Ingredients, 2)

	amounts := map[string]int{}
	for _, line := range updated.Ingredients {
		amounts[line.Ingredient.Name] = line.Amount
	}
	assert.Equal(t, 300, amounts["flour"])
	assert.Equal(t, 50, amounts["sugar"])
	assert.NotContains(t, amounts, "salt")

	var count int64
	database.DB.Model(&models.RecipeIngredient{}).Where("recipe_id = ?", recipe.ID).Count(&count)
	assert.EqualValues(t, 2, count, "old ingredient rows must be gone")
}

func TestUpdateRecipePartialFields(t *testing.T) {
	setupTestDB(t)
	svc := NewRecipeService()
	ctx := context.Background()

	author := createTestUser(t, "alice@example.com")
	flour := createTestIngredient(t, "flour", "g")
	recipe := createTestRecipe(t, author.ID, "Pancakes", []IngredientLineInput{
		{ID: flour.ID, Amount: 200},
	})

	newName := "Crepes"
	updated, err := svc.Update(ctx, recipe.ID, author.ID, false, UpdateRecipeInput{
		Name: &newName,
	})
	require.NoError(t, err)

	assert.Equal(t, "Crepes", updated.Name)
	assert.Equal(t, recipe.Text, updated.Text)
	assert.Len(t, updated.Ingredients, 1, "ingredients untouched when not supplied")
}

func TestUpdateRecipeAuthorization(t *testing.T) {
	setupTestDB(t)
	svc := NewRecipeService()
	ctx := context.Background()

	author := createTestUser(t, "alice@example.com")
	other := createTestUser(t, "bob@example.com")
	flour := createTestIngredient(t, "flour", "g")
	recipe := createTestRecipe(t, author.ID, "Pancakes", []IngredientLineInput{
		{ID: flour.ID, Amount: 200},
	})

	newName := "Stolen"
	_, err := svc.Update(ctx, recipe.ID, other.ID, false, UpdateRecipeInput{Name: &newName})
	assert.ErrorIs(t, err, ErrNotAuthor)

	err = svc.Delete(ctx, recipe.ID, other.ID, false)
	assert.ErrorIs(t, err, ErrNotAuthor)

	// admins may edit anyone's recipe
	_, err = svc.Update(ctx, recipe.ID, other.ID, true, UpdateRecipeInput{Name: &newName})
	assert.NoError(t, err)
}

func TestDeleteRecipe(t *testing.T) {
	setupTestDB(t)
	svc := NewRecipeService()
	relations := NewRelationService()
	ctx := context.Background()

	author := createTestUser(t, "alice@example.com")
	fan := createTestUser(t, "bob@example.com")
	flour := createTestIngredient(t, "flour", "g")
	recipe := createTestRecipe(t, author.ID, "Pancakes", []IngredientLineInput{
		{ID: flour.ID, Amount: 200},
	})

	_, err := relations.AddFavorite(ctx, fan.ID, recipe.ID)
	require.NoError(t, err)
	_, err = relations.AddToCart(ctx, fan.ID, recipe.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, recipe.ID, author.ID, false))

	_, err = svc.GetByID(ctx, recipe.ID)
	assert.ErrorIs(t, err, ErrRecipeNotFound)

	var count int64
	database.DB.Model(&models.RecipeIngredient{}).Where("recipe_id = ?", recipe.ID).Count(&count)
	assert.Zero(t, count)
	database.DB.Model(&models.Favorite{}).Where("recipe_id = ?", recipe.ID).Count(&count)
	assert.Zero(t, count)
	database.DB.Model(&models.ShoppingCartEntry{}).Where("recipe_id = ?", recipe.ID).Count(&count)
	assert.Zero(t, count)
}

func TestListRecipes(t *testing.T) {
	setupTestDB(t)
	svc := NewRecipeService()
	relations := NewRelationService()
	ctx := context.Background()

	alice := createTestUser(t, "alice@example.com")
	bob := createTestUser(t, "bob@example.com")
	breakfast := createTestTag(t, "breakfast")
	flour := createTestIngredient(t, "flour", "g")

	pancakes, err := svc.Create(ctx, alice.ID, CreateRecipeInput{
		Name:        "Pancakes",
		CookingTime: 20,
		Tags:        []uint{breakfast.ID},
		Ingredients: []IngredientLineInput{{ID: flour.ID, Amount: 200}},
	})
	require.NoError(t, err)

	bread := createTestRecipe(t, bob.ID, "Bread", []IngredientLineInput{
		{ID: flour.ID, Amount: 500},
	})

	_, err = relations.AddFavorite(ctx, bob.ID, pancakes.ID)
	require.NoError(t, err)

	t.Run("all", func(t *testing.T) {
		resp, err := svc.List(ctx, nil, ListRecipesInput{})
		require.NoError(t, err)
		assert.EqualValues(t, 2, resp.TotalCount)
	})

	t.Run("by author", func(t *testing.T) {
		resp, err := svc.List(ctx, nil, ListRecipesInput{AuthorID: alice.ID})
		require.NoError(t, err)
		require.Len(t, resp.Recipes, 1)
		assert.Equal(t, "Pancakes", resp.Recipes[0].Name)
	})

	t.Run("by tag slug", func(t *testing.T) {
		resp, err := svc.List(ctx, nil, ListRecipesInput{TagSlugs: []string{"breakfast"}})
		require.NoError(t, err)
		require.Len(t, resp.Recipes, 1)
		assert.Equal(t, "Pancakes", resp.Recipes[0].Name)
	})

	t.Run("search is case-insensitive", func(t *testing.T) {
		resp, err := svc.List(ctx, nil, ListRecipesInput{Search: "BREAD"})
		require.NoError(t, err)
		require.Len(t, resp.Recipes, 1)
		assert.Equal(t, bread.ID, resp.Recipes[0].ID)
	})

	t.Run("favorited filter for viewer", func(t *testing.T) {
		resp, err := svc.List(ctx, &bob.ID, ListRecipesInput{IsFavorited: true})
		require.NoError(t, err)
		require.Len(t, resp.Recipes, 1)
		assert.Equal(t, pancakes.ID, resp.Recipes[0].ID)
		assert.True(t, resp.Recipes[0].IsFavorited)
	})

	t.Run("favorited filter ignored for anonymous", func(t *testing.T) {
		resp, err := svc.List(ctx, nil, ListRecipesInput{IsFavorited: true})
		require.NoError(t, err)
		assert.EqualValues(t, 2, resp.TotalCount)
		for _, r := range resp.Recipes {
			assert.False(t, r.IsFavorited)
			assert.False(t, r.IsInShoppingCart)
		}
	})

	t.Run("flag lookup failure surfaces", func(t *testing.T) {
		require.NoError(t, database.DB.Migrator().RenameTable("favorites", "favorites_gone"))
		defer func() {
			require.NoError(t, database.DB.Migrator().RenameTable("favorites_gone", "favorites"))
		}()

		_, err := svc.IsFavorited(ctx, pancakes.ID, bob.ID)
		assert.Error(t, err)

		_, err = svc.List(ctx, &bob.ID, ListRecipesInput{})
		assert.Error(t, err)
	})

	t.Run("pagination", func(t *testing.T) {
		resp, err := svc.List(ctx, nil, ListRecipesInput{Page: 2, PerPage: 1})
		require.NoError(t, err)
		assert.EqualValues(t, 2, resp.TotalCount)
		assert.Len(t, resp.Recipes, 1)
		assert.Equal(t, 2, resp.Page)
	})
}
