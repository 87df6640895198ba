// Package costing turns ingredient, recipe and dish records into cost figures and
// recommended selling prices. Every function in this package is pure: inputs are
// plain values and results are computed fresh on each call.
package costing

import (
	"errors"
	"fmt"
	"strings"
)

// CategoryConsumables marks ingredients that skip waste and yield adjustments.
const CategoryConsumables = "Consumables"

var (
	ErrUnknownUnit       = errors.New("costing: unknown unit")
	ErrIncompatibleUnits = errors.New("costing: incompatible units")
	ErrInvalidYield      = errors.New("costing: yield must be positive")
	ErrInvalidPortions   = errors.New("costing: portions must be positive")
	ErrInvalidWaste      = errors.New("costing: waste percentage must be below 100")
	ErrInvalidQuantity   = errors.New("costing: quantity must be positive")
)

// Ingredient is a purchasable item with its base cost and processing losses.
type Ingredient struct {
	ID          uint
	Name        string
	BaseUnit    string
	CostPerUnit float64
	// CostPerUnitInclTrim, when set, is a per-base-unit cost that already
	// accounts for trim loss.
	CostPerUnitInclTrim *float64
	WastePercent        float64
	YieldPercent        float64
	Category            string
	Supplier            string
}

// Consumable reports whether the ingredient belongs to the consumables category.
func (i Ingredient) Consumable() bool {
	return strings.EqualFold(strings.TrimSpace(i.Category), CategoryConsumables)
}

// IngredientLine is one usage of an ingredient inside a recipe or directly in a dish.
type IngredientLine struct {
	Ingredient Ingredient
	Quantity   float64
	Unit       string
}

// Recipe produces Yield portions from its ingredient lines.
type Recipe struct {
	ID           uint
	Name         string
	Yield        float64
	YieldUnit    string
	Instructions string
	Lines        []IngredientLine
}

// DishRecipe links a recipe into a dish. Quantity is expressed in units of the
// recipe's own yield.
type DishRecipe struct {
	Recipe   Recipe
	Quantity float64
}

// Dish combines nested recipes and standalone ingredients.
type Dish struct {
	ID           uint
	Name         string
	SellingPrice float64
	Portions     float64
	Recipes      []DishRecipe
	Ingredients  []IngredientLine
}

// CostLine is the derived cost of one ingredient occurrence.
type CostLine struct {
	RecipeID          uint    `json:"recipe_id,omitempty"`
	DishID            uint    `json:"dish_id,omitempty"`
	IngredientID      uint    `json:"ingredient_id"`
	IngredientName    string  `json:"ingredient_name"`
	Quantity          float64 `json:"quantity"`
	Unit              string  `json:"unit"`
	CostPerUnit       float64 `json:"cost_per_unit"`
	TotalCost         float64 `json:"total_cost"`
	WasteAdjustedCost float64 `json:"waste_adjusted_cost"`
	YieldAdjustedCost float64 `json:"yield_adjusted_cost"`
	Consumable        bool    `json:"consumable"`
}

// scaled returns a copy of the line with every numeric field multiplied by factor.
func (l CostLine) scaled(factor float64) CostLine {
	l.Quantity *= factor
	l.CostPerUnit *= factor
	l.TotalCost *= factor
	l.WasteAdjustedCost *= factor
	l.YieldAdjustedCost *= factor
	return l
}

// LineError records an item that was left out of an aggregate.
type LineError struct {
	RecipeID       uint
	IngredientID   uint
	IngredientName string
	Err            error
}

func (e LineError) Error() string {
	switch {
	case e.IngredientName != "":
		return fmt.Sprintf("%s: %v", e.IngredientName, e.Err)
	case e.RecipeID != 0:
		return fmt.Sprintf("recipe %d: %v", e.RecipeID, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e LineError) Unwrap() error {
	return e.Err
}
