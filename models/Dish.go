package models

import (
	"gorm.io/gorm"
)

// Dish is a menu item combining recipes and standalone ingredients.
type Dish struct {
	gorm.Model
	Name         string           `gorm:"not null" json:"name"`
	SellingPrice float64          `gorm:"not null;default:0" json:"selling_price"`
	Portions     float64          `gorm:"not null;default:1" json:"portions"`
	Recipes      []DishRecipe     `gorm:"foreignKey:DishID" json:"recipes"`
	Ingredients  []DishIngredient `gorm:"foreignKey:DishID" json:"ingredients"`
}

// DishRecipe links a recipe into a dish. Quantity is measured in portions of the
// recipe's yield.
type DishRecipe struct {
	gorm.Model
	DishID   uint    `gorm:"not null;index" json:"dish_id"`
	RecipeID uint    `gorm:"not null" json:"recipe_id"`
	Quantity float64 `gorm:"not null" json:"quantity"`

	Recipe *Recipe `gorm:"foreignKey:RecipeID" json:"recipe,omitempty"`
}

// DishIngredient is an ingredient used by a dish directly.
type DishIngredient struct {
	gorm.Model
	DishID       uint    `gorm:"not null;index" json:"dish_id"`
	IngredientID uint    `gorm:"not null" json:"ingredient_id"`
	Quantity     float64 `gorm:"not null" json:"quantity"`
	Unit         string  `gorm:"not null" json:"unit"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
}
