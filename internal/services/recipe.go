package services

import (
	"context"
	"errors"
	"strings"

	"recipebox/internal/database"
	"recipebox/internal/logging"
	"recipebox/internal/models"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"gorm.io/gorm"
)

var recipesCreatedCounter metric.Int64Counter

type RecipeService struct{}

func NewRecipeService() *RecipeService {
	var err error
	recipesCreatedCounter, err = meter.Int64Counter(
		"recipes.created",
		metric.WithDescription("Total number of recipes created"),
	)
	if err != nil {
		logging.Logger().Error().Err(err).Msg("failed to create recipes counter")
	}

	return &RecipeService{}
}

// IngredientLineInput is one (ingredient id, amount) pair of a create or
// update request.
type IngredientLineInput struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

type CreateRecipeInput struct {
	Name        string                `json:"name" validate:"required"`
	Text        string                `json:"text"`
	Image       string                `json:"image"`
	CookingTime int                   `json:"cooking_time" validate:"required,min=1"`
	Tags        []uint                `json:"tags"`
	Ingredients []IngredientLineInput `json:"ingredients"`
}

type UpdateRecipeInput struct {
	Name        *string                `json:"name"`
	Text        *string                `json:"text"`
	Image       *string                `json:"image"`
	CookingTime *int                   `json:"cooking_time"`
	Tags        *[]uint                `json:"tags"`
	Ingredients *[]IngredientLineInput `json:"ingredients"`
}

type ListRecipesInput struct {
	Page             int
	PerPage          int
	Search           string
	AuthorID         uint
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
}

// validateIngredientLines enforces the per-recipe invariants: every amount
// positive, no ingredient referenced twice.
func validateIngredientLines(lines []IngredientLineInput) error {
	seen := make(map[uint]struct{}, len(lines))
	for _, line := range lines {
		if line.Amount <= 0 {
			return newValidationError("ingredients", "amount for ingredient %d must be greater than 0", line.ID)
		}
		if _, ok := seen[line.ID]; ok {
			return newValidationError("ingredients", "ingredient %d appears more than once", line.ID)
		}
		seen[line.ID] = struct{}{}
	}
	return nil
}

// loadTags resolves tag ids inside the given transaction, failing with a
// validation error when any id does not exist.
func loadTags(tx *gorm.DB, tagIDs []uint) ([]models.Tag, error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}

	var tags []models.Tag
	if err := tx.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(uniqueIDs(tagIDs)) {
		return nil, newValidationError("tags", "one or more tag ids do not exist")
	}
	return tags, nil
}

func checkIngredientsExist(tx *gorm.DB, lines []IngredientLineInput) error {
	if len(lines) == 0 {
		return nil
	}

	ids := make([]uint, len(lines))
	for i, line := range lines {
		ids[i] = line.ID
	}

	var count int64
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return newValidationError("ingredients", "one or more ingredient ids do not exist")
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// Create persists the recipe, its tag links, and one RecipeIngredient row
// per input line in a single transaction. A failure anywhere rolls back
// everything; partial recipes are never observable.
func (s *RecipeService) Create(ctx context.Context, authorID uint, input CreateRecipeInput) (*models.Recipe, error) {
	ctx, span := tracer.Start(ctx, "recipe.create")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("author.id", int64(authorID)),
		attribute.String("recipe.name", input.Name),
	)

	if input.CookingTime < 1 {
		return nil, newValidationError("cooking_time", "cooking time must be at least 1 minute")
	}
	if err := validateIngredientLines(input.Ingredients); err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        input.Name,
		Text:        input.Text,
		Image:       input.Image,
		CookingTime: input.CookingTime,
	}

	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := loadTags(tx, input.Tags)
		if err != nil {
			return err
		}
		if err := checkIngredientsExist(tx, input.Ingredients); err != nil {
			return err
		}

		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}

		if len(tags) > 0 {
			if err := tx.Model(&recipe).Association("Tags").Append(&tags); err != nil {
				return err
			}
		}

		return replaceIngredientRows(tx, recipe.ID, input.Ingredients)
	})
	if err != nil {
		return nil, err
	}

	if recipesCreatedCounter != nil {
		recipesCreatedCounter.Add(ctx, 1)
	}

	span.SetAttributes(attribute.Int64("recipe.id", int64(recipe.ID)))

	logging.Info(ctx).
		Uint("recipe_id", recipe.ID).
		Uint("author_id", authorID).
		Int("ingredients", len(input.Ingredients)).
		Msg("recipe created")

	return s.GetByID(ctx, recipe.ID)
}

// replaceIngredientRows deletes every existing ingredient row of the recipe
// and bulk-inserts the new set (the replace-all-children strategy).
func replaceIngredientRows(tx *gorm.DB, recipeID uint, lines []IngredientLineInput) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return err
	}

	if len(lines) == 0 {
		return nil
	}

	rows := make([]models.RecipeIngredient, len(lines))
	for i, line := range lines {
		rows[i] = models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: line.ID,
			Amount:       line.Amount,
		}
	}
	return tx.Create(&rows).Error
}

func (s *RecipeService) GetByID(ctx context.Context, recipeID uint) (*models.Recipe, error) {
	ctx, span := tracer.Start(ctx, "recipe.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.Int64("recipe.id", int64(recipeID)))

	var recipe models.Recipe
	if err := database.DB.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	return &recipe, nil
}

// List returns recipes newest first with per-viewer favorite and cart flags.
// A nil viewer is anonymous: both flags are false and the favorited/in-cart
// filters are ignored.
func (s *RecipeService) List(ctx context.Context, viewerID *uint, input ListRecipesInput) (*models.RecipesResponse, error) {
	ctx, span := tracer.Start(ctx, "recipe.list")
	defer span.End()

	if input.Page < 1 {
		input.Page = 1
	}
	if input.PerPage < 1 || input.PerPage > 100 {
		input.PerPage = 20
	}

	span.SetAttributes(
		attribute.Int("pagination.page", input.Page),
		attribute.Int("pagination.per_page", input.PerPage),
	)

	query := database.DB.WithContext(ctx).Model(&models.Recipe{})

	if input.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(input.Search)+"%")
		span.SetAttributes(attribute.String("search.term", input.Search))
	}

	if input.AuthorID != 0 {
		query = query.Where("author_id = ?", input.AuthorID)
	}

	if len(input.TagSlugs) > 0 {
		tagged := database.DB.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", input.TagSlugs)
		query = query.Where("recipes.id IN (?)", tagged)
	}

	if viewerID != nil && input.IsFavorited {
		favorited := database.DB.Table("favorites").
			Select("recipe_id").
			Where("user_id = ?", *viewerID)
		query = query.Where("recipes.id IN (?)", favorited)
	}

	if viewerID != nil && input.IsInShoppingCart {
		inCart := database.DB.Table("shopping_cart_entries").
			Select("recipe_id").
			Where("user_id = ?", *viewerID)
		query = query.Where("recipes.id IN (?)", inCart)
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, err
	}

	offset := (input.Page - 1) * input.PerPage
	var recipes []models.Recipe
	if err := query.
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Order("created_at DESC").
		Offset(offset).
		Limit(input.PerPage).
		Find(&recipes).Error; err != nil {
		return nil, err
	}

	favoritedMap, cartMap, err := s.viewerFlags(ctx, viewerID, recipes)
	if err != nil {
		return nil, err
	}

	responses := make([]models.RecipeResponse, len(recipes))
	for i, recipe := range recipes {
		responses[i] = recipe.ToResponse(favoritedMap[recipe.ID], cartMap[recipe.ID], false)
	}

	span.SetAttributes(
		attribute.Int64("result.total_count", totalCount),
		attribute.Int("result.count", len(recipes)),
	)

	return &models.RecipesResponse{
		Recipes:    responses,
		TotalCount: totalCount,
		Page:       input.Page,
		PerPage:    input.PerPage,
	}, nil
}

// viewerFlags batch-loads the viewer's favorite and cart membership for the
// given recipes. Anonymous viewers get empty maps.
func (s *RecipeService) viewerFlags(ctx context.Context, viewerID *uint, recipes []models.Recipe) (map[uint]bool, map[uint]bool, error) {
	favoritedMap := make(map[uint]bool)
	cartMap := make(map[uint]bool)

	if viewerID == nil || len(recipes) == 0 {
		return favoritedMap, cartMap, nil
	}

	recipeIDs := make([]uint, len(recipes))
	for i, r := range recipes {
		recipeIDs[i] = r.ID
	}

	var favorites []models.Favorite
	if err := database.DB.WithContext(ctx).
		Where("user_id = ? AND recipe_id IN ?", *viewerID, recipeIDs).
		Find(&favorites).Error; err != nil {
		return nil, nil, err
	}
	for _, f := range favorites {
		favoritedMap[f.RecipeID] = true
	}

	var entries []models.ShoppingCartEntry
	if err := database.DB.WithContext(ctx).
		Where("user_id = ? AND recipe_id IN ?", *viewerID, recipeIDs).
		Find(&entries).Error; err != nil {
		return nil, nil, err
	}
	for _, e := range entries {
		cartMap[e.RecipeID] = true
	}

	return favoritedMap, cartMap, nil
}

func (s *RecipeService) IsFavorited(ctx context.Context, recipeID, userID uint) (bool, error) {
	var count int64
	if err := database.DB.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *RecipeService) IsInShoppingCart(ctx context.Context, recipeID, userID uint) (bool, error) {
	var count int64
	if err := database.DB.WithContext(ctx).Model(&models.ShoppingCartEntry{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update applies a partial update. A supplied ingredient list fully replaces
// the existing rows, a supplied tag list fully replaces the tag set, and the
// whole change is one transaction. Only the author (or an admin) may update.
func (s *RecipeService) Update(ctx context.Context, recipeID, userID uint, isAdmin bool, input UpdateRecipeInput) (*models.Recipe, error) {
	ctx, span := tracer.Start(ctx, "recipe.update")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("recipe.id", int64(recipeID)),
		attribute.Int64("user.id", int64(userID)),
	)

	recipe, err := s.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	if recipe.AuthorID != userID && !isAdmin {
		return nil, ErrNotAuthor
	}

	if input.CookingTime != nil && *input.CookingTime < 1 {
		return nil, newValidationError("cooking_time", "cooking time must be at least 1 minute")
	}
	if input.Ingredients != nil {
		if err := validateIngredientLines(*input.Ingredients); err != nil {
			return nil, err
		}
	}

	err = database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := make(map[string]interface{})
		if input.Name != nil {
			updates["name"] = *input.Name
		}
		if input.Text != nil {
			updates["text"] = *input.Text
		}
		if input.Image != nil {
			updates["image"] = *input.Image
		}
		if input.CookingTime != nil {
			updates["cooking_time"] = *input.CookingTime
		}

		if len(updates) > 0 {
			if err := tx.Model(recipe).Updates(updates).Error; err != nil {
				return err
			}
		}

		if input.Tags != nil {
			tags, err := loadTags(tx, *input.Tags)
			if err != nil {
				return err
			}
			if err := tx.Model(recipe).Association("Tags").Replace(&tags); err != nil {
				return err
			}
		}

		if input.Ingredients != nil {
			if err := checkIngredientsExist(tx, *input.Ingredients); err != nil {
				return err
			}
			if err := replaceIngredientRows(tx, recipe.ID, *input.Ingredients); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.Info(ctx).
		Uint("recipe_id", recipe.ID).
		Uint("user_id", userID).
		Msg("recipe updated")

	return s.GetByID(ctx, recipe.ID)
}

// Delete removes the recipe together with its ingredient rows, tag links,
// and any favorite or cart references to it.
func (s *RecipeService) Delete(ctx context.Context, recipeID, userID uint, isAdmin bool) error {
	ctx, span := tracer.Start(ctx, "recipe.delete")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("recipe.id", int64(recipeID)),
		attribute.Int64("user.id", int64(userID)),
	)

	recipe, err := s.GetByID(ctx, recipeID)
	if err != nil {
		return err
	}

	if recipe.AuthorID != userID && !isAdmin {
		return ErrNotAuthor
	}

	err = database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.ShoppingCartEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(recipe).Error
	})
	if err != nil {
		return err
	}

	logging.Info(ctx).
		Uint("recipe_id", recipe.ID).
		Uint("user_id", userID).
		Msg("recipe deleted")

	return nil
}
