package database

import (
	"recipebox/internal/models"
)

func Migrate() error {
	return DB.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.ShoppingCartEntry{},
		&models.Subscription{},
	)
}
