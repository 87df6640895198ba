package costing

import (
	"fmt"
	"math"
)

// RecipeContribution summarises how much one nested recipe adds to a dish.
type RecipeContribution struct {
	RecipeID        uint    `json:"recipe_id"`
	RecipeName      string  `json:"recipe_name"`
	Quantity        float64 `json:"quantity"`
	RecipeYield     float64 `json:"recipe_yield"`
	Multiplier      float64 `json:"multiplier"`
	RecipeTotalCost float64 `json:"recipe_total_cost"`
	Cost            float64 `json:"cost"`
}

// DishCost is the cost breakdown of a dish. Lines holds both the scaled recipe lines
// and the standalone ingredient lines, all expressed as the dish's consumption.
type DishCost struct {
	DishID         uint
	DishName       string
	Portions       float64
	Lines          []CostLine
	Recipes        []RecipeContribution
	Skipped        []LineError
	RecipeCost     float64
	StandaloneCost float64
	TotalCOGS      float64
	CostPerPortion float64
}

// CostDish aggregates the nested recipes and standalone ingredients of d.
//
// Each nested recipe is costed at its own yield and then scaled by
// link quantity / recipe yield. Recipes with an invalid yield and lines that fail to
// resolve are reported in Skipped; the totals cover everything that succeeded.
func CostDish(d Dish) (DishCost, error) {
	if math.IsNaN(d.Portions) || d.Portions <= 0 {
		return DishCost{}, fmt.Errorf("%w: dish %d has %v portions", ErrInvalidPortions, d.ID, d.Portions)
	}

	result := DishCost{
		DishID:   d.ID,
		DishName: d.Name,
		Portions: d.Portions,
	}

	for _, link := range d.Recipes {
		if math.IsNaN(link.Quantity) || link.Quantity < 0 {
			result.Skipped = append(result.Skipped, LineError{
				RecipeID: link.Recipe.ID,
				Err:      fmt.Errorf("%w: %v", ErrInvalidQuantity, link.Quantity),
			})
			continue
		}

		recipeCost, err := CostRecipe(link.Recipe)
		if err != nil {
			result.Skipped = append(result.Skipped, LineError{RecipeID: link.Recipe.ID, Err: err})
			continue
		}
		result.Skipped = append(result.Skipped, recipeCost.Skipped...)

		multiplier := link.Quantity / link.Recipe.Yield
		contribution := RecipeContribution{
			RecipeID:        link.Recipe.ID,
			RecipeName:      link.Recipe.Name,
			Quantity:        link.Quantity,
			RecipeYield:     link.Recipe.Yield,
			Multiplier:      multiplier,
			RecipeTotalCost: recipeCost.TotalCost,
		}
		for _, line := range recipeCost.Lines {
			scaled := line.scaled(multiplier)
			scaled.DishID = d.ID
			result.Lines = append(result.Lines, scaled)
			contribution.Cost += scaled.YieldAdjustedCost
		}
		result.Recipes = append(result.Recipes, contribution)
		result.RecipeCost += contribution.Cost
	}

	for _, line := range d.Ingredients {
		cost, err := ResolveLine(line)
		if err != nil {
			result.Skipped = append(result.Skipped, LineError{
				IngredientID:   line.Ingredient.ID,
				IngredientName: line.Ingredient.Name,
				Err:            err,
			})
			continue
		}
		cost.DishID = d.ID
		result.Lines = append(result.Lines, cost)
		result.StandaloneCost += cost.YieldAdjustedCost
	}

	result.TotalCOGS = result.RecipeCost + result.StandaloneCost
	result.CostPerPortion = result.TotalCOGS / d.Portions
	return result, nil
}
