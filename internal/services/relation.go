package services

import (
	"context"
	"errors"

	"recipebox/internal/database"
	"recipebox/internal/logging"
	"recipebox/internal/models"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// RelationService implements the favorite and shopping cart toggles. Both
// are idempotency-checked, not idempotent: a repeated add is a conflict and
// a remove of an absent pair is not found. The composite unique indexes are
// the authoritative guard against concurrent duplicates; the existence
// checks here only produce friendlier errors.
type RelationService struct{}

func NewRelationService() *RelationService {
	return &RelationService{}
}

func (s *RelationService) AddFavorite(ctx context.Context, userID, recipeID uint) (*models.RecipeSummary, error) {
	ctx, span := tracer.Start(ctx, "favorite.add")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user.id", int64(userID)),
		attribute.Int64("recipe.id", int64(recipeID)),
	)

	recipe, err := findRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	var existing models.Favorite
	if err := database.DB.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		First(&existing).Error; err == nil {
		return nil, ErrAlreadyFavorited
	}

	favorite := models.Favorite{UserID: userID, RecipeID: recipeID}
	if err := database.DB.WithContext(ctx).Create(&favorite).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyFavorited
		}
		return nil, err
	}

	logging.Info(ctx).
		Uint("recipe_id", recipeID).
		Uint("user_id", userID).
		Msg("recipe favorited")

	summary := recipe.ToSummary()
	return &summary, nil
}

func (s *RelationService) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	ctx, span := tracer.Start(ctx, "favorite.remove")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user.id", int64(userID)),
		attribute.Int64("recipe.id", int64(recipeID)),
	)

	if _, err := findRecipe(ctx, recipeID); err != nil {
		return err
	}

	result := database.DB.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.Favorite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFavorited
	}

	logging.Info(ctx).
		Uint("recipe_id", recipeID).
		Uint("user_id", userID).
		Msg("recipe unfavorited")

	return nil
}

func (s *RelationService) AddToCart(ctx context.Context, userID, recipeID uint) (*models.RecipeSummary, error) {
	ctx, span := tracer.Start(ctx, "cart.add")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user.id", int64(userID)),
		attribute.Int64("recipe.id", int64(recipeID)),
	)

	recipe, err := findRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	var existing models.ShoppingCartEntry
	if err := database.DB.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		First(&existing).Error; err == nil {
		return nil, ErrAlreadyInCart
	}

	entry := models.ShoppingCartEntry{UserID: userID, RecipeID: recipeID}
	if err := database.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyInCart
		}
		return nil, err
	}

	logging.Info(ctx).
		Uint("recipe_id", recipeID).
		Uint("user_id", userID).
		Msg("recipe added to shopping cart")

	summary := recipe.ToSummary()
	return &summary, nil
}

func (s *RelationService) RemoveFromCart(ctx context.Context, userID, recipeID uint) error {
	ctx, span := tracer.Start(ctx, "cart.remove")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user.id", int64(userID)),
		attribute.Int64("recipe.id", int64(recipeID)),
	)

	if _, err := findRecipe(ctx, recipeID); err != nil {
		return err
	}

	result := database.DB.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.ShoppingCartEntry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotInCart
	}

	logging.Info(ctx).
		Uint("recipe_id", recipeID).
		Uint("user_id", userID).
		Msg("recipe removed from shopping cart")

	return nil
}

func findRecipe(ctx context.Context, recipeID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := database.DB.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}
