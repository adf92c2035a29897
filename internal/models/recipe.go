package models

import (
	"time"
)

type Recipe struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AuthorID    uint      `gorm:"not null;index" json:"author_id"`
	Name        string    `gorm:"not null" json:"name"`
	Text        string    `gorm:"type:text" json:"text"`
	Image       string    `json:"image"`
	CookingTime int       `gorm:"not null" json:"cooking_time"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Author      User               `gorm:"foreignKey:AuthorID" json:"-"`
	Tags        []Tag              `gorm:"many2many:recipe_tags" json:"-"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

// RecipeIngredient links one recipe to one ingredient with a positive
// amount. Rows are owned by the recipe and replaced wholesale on update.
type RecipeIngredient struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	RecipeID     uint `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"recipe_id"`
	IngredientID uint `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"ingredient_id"`
	Amount       int  `gorm:"not null" json:"amount"`

	Ingredient Ingredient `gorm:"foreignKey:IngredientID" json:"-"`
}

type IngredientLineResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type RecipeResponse struct {
	ID                uint                     `json:"id"`
	Tags              []Tag                    `json:"tags"`
	Author            UserResponse             `json:"author"`
	Ingredients       []IngredientLineResponse `json:"ingredients"`
	IsFavorited       bool                     `json:"is_favorited"`
	IsInShoppingCart  bool                     `json:"is_in_shopping_cart"`
	Name              string                   `json:"name"`
	Image             string                   `json:"image"`
	Text              string                   `json:"text"`
	CookingTime       int                      `json:"cooking_time"`
	CreatedAt         time.Time                `json:"created_at"`
}

// ToResponse projects the recipe for a given viewer. Both flags are
// existence lookups computed at read time; anonymous viewers get false.
func (r *Recipe) ToResponse(favorited, inCart, authorSubscribed bool) RecipeResponse {
	lines := make([]IngredientLineResponse, len(r.Ingredients))
	for i, ri := range r.Ingredients {
		lines[i] = IngredientLineResponse{
			ID:              ri.IngredientID,
			Name:            ri.Ingredient.Name,
			MeasurementUnit: ri.Ingredient.MeasurementUnit,
			Amount:          ri.Amount,
		}
	}

	tags := r.Tags
	if tags == nil {
		tags = []Tag{}
	}

	return RecipeResponse{
		ID:               r.ID,
		Tags:             tags,
		Author:           r.Author.ToResponse(authorSubscribed),
		Ingredients:      lines,
		IsFavorited:      favorited,
		IsInShoppingCart: inCart,
		Name:             r.Name,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
		CreatedAt:        r.CreatedAt,
	}
}

// RecipeSummary is the short projection returned by the favorite and
// shopping cart toggles and embedded in subscription previews.
type RecipeSummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

func (r *Recipe) ToSummary() RecipeSummary {
	return RecipeSummary{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

type RecipesResponse struct {
	Recipes    []RecipeResponse `json:"recipes"`
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	PerPage    int              `json:"per_page"`
}
