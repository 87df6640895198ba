package models

import (
	"gorm.io/gorm"
)

// RecipeIngredient is one ingredient usage inside a recipe. Unit may differ from
// the ingredient's base unit.
type RecipeIngredient struct {
	gorm.Model
	RecipeID     uint    `gorm:"not null;index" json:"recipe_id"`
	IngredientID uint    `gorm:"not null" json:"ingredient_id"`
	Quantity     float64 `gorm:"not null" json:"quantity"`
	Unit         string  `gorm:"not null" json:"unit"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
}
