package models

type Ingredient struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Name            string `gorm:"index;not null" json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// ShoppingListRow is one aggregate row of the shopping list export: a
// distinct ingredient with its amounts summed across every recipe in the
// user's cart.
type ShoppingListRow struct {
	Name            string `json:"name"`
	TotalAmount     int    `json:"total_amount"`
	MeasurementUnit string `json:"measurement_unit"`
}
