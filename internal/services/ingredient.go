package services

import (
	"context"
	"errors"
	"strings"

	"recipebox/internal/database"
	"recipebox/internal/models"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// IngredientService serves the static ingredient reference data.
type IngredientService struct{}

func NewIngredientService() *IngredientService {
	return &IngredientService{}
}

// List returns ingredients ordered by name, optionally narrowed to those
// whose name starts with the given prefix (case-insensitive).
func (s *IngredientService) List(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	ctx, span := tracer.Start(ctx, "ingredient.list")
	defer span.End()

	query := database.DB.WithContext(ctx).Model(&models.Ingredient{})

	if namePrefix != "" {
		query = query.Where("LOWER(name) LIKE ?", strings.ToLower(namePrefix)+"%")
		span.SetAttributes(attribute.String("search.prefix", namePrefix))
	}

	var ingredients []models.Ingredient
	if err := query.Order("name").Find(&ingredients).Error; err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("result.count", len(ingredients)))

	if ingredients == nil {
		ingredients = []models.Ingredient{}
	}
	return ingredients, nil
}

func (s *IngredientService) GetByID(ctx context.Context, ingredientID uint) (*models.Ingredient, error) {
	ctx, span := tracer.Start(ctx, "ingredient.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.Int64("ingredient.id", int64(ingredientID)))

	var ingredient models.Ingredient
	if err := database.DB.WithContext(ctx).First(&ingredient, ingredientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, err
	}

	return &ingredient, nil
}
