package services

import (
	"context"

	"recipebox/internal/database"
	"recipebox/internal/logging"
	"recipebox/internal/models"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var shoppingListsExported metric.Int64Counter

// ShoppingListService aggregates the ingredients of every recipe in a
// user's shopping cart. Rendering is a separate formatting step over the
// aggregate (internal/export); no computation happens there.
type ShoppingListService struct{}

func NewShoppingListService() *ShoppingListService {
	var err error
	shoppingListsExported, err = meter.Int64Counter(
		"shopping_lists.exported",
		metric.WithDescription("Total number of shopping list exports"),
	)
	if err != nil {
		logging.Logger().Error().Err(err).Msg("failed to create shopping list counter")
	}

	return &ShoppingListService{}
}

// Aggregate returns one row per distinct ingredient across the user's cart,
// amounts summed, ordered by ingredient name. An empty cart yields an empty
// slice, never an error.
func (s *ShoppingListService) Aggregate(ctx context.Context, userID uint) ([]models.ShoppingListRow, error) {
	ctx, span := tracer.Start(ctx, "shopping_list.aggregate")
	defer span.End()

	span.SetAttributes(attribute.Int64("user.id", int64(userID)))

	var rows []models.ShoppingListRow
	err := database.DB.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, SUM(recipe_ingredients.amount) AS total_amount, ingredients.measurement_unit AS measurement_unit").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_cart_entries ON shopping_cart_entries.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_cart_entries.user_id = ?", userID).
		Group("ingredients.id, ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	if rows == nil {
		rows = []models.ShoppingListRow{}
	}

	if shoppingListsExported != nil {
		shoppingListsExported.Add(ctx, 1)
	}

	span.SetAttributes(attribute.Int("result.count", len(rows)))

	logging.Info(ctx).
		Uint("user_id", userID).
		Int("rows", len(rows)).
		Msg("shopping list aggregated")

	return rows, nil
}
