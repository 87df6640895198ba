package costing

import (
	"fmt"
	"math"
)

// RecipeCost is the cost breakdown of one recipe batch at its stated yield.
type RecipeCost struct {
	RecipeID       uint
	RecipeName     string
	Yield          float64
	YieldUnit      string
	Lines          []CostLine
	Skipped        []LineError
	TotalCost      float64
	CostPerPortion float64
}

// CostRecipe resolves every line of r. Lines that fail are reported in Skipped and
// excluded from the total. A non-positive yield fails the whole recipe.
func CostRecipe(r Recipe) (RecipeCost, error) {
	if math.IsNaN(r.Yield) || r.Yield <= 0 {
		return RecipeCost{}, fmt.Errorf("%w: recipe %d has yield %v", ErrInvalidYield, r.ID, r.Yield)
	}

	result := RecipeCost{
		RecipeID:   r.ID,
		RecipeName: r.Name,
		Yield:      r.Yield,
		YieldUnit:  r.YieldUnit,
		Lines:      make([]CostLine, 0, len(r.Lines)),
	}

	for _, line := range r.Lines {
		cost, err := ResolveLine(line)
		if err != nil {
			result.Skipped = append(result.Skipped, LineError{
				RecipeID:       r.ID,
				IngredientID:   line.Ingredient.ID,
				IngredientName: line.Ingredient.Name,
				Err:            err,
			})
			continue
		}
		cost.RecipeID = r.ID
		result.Lines = append(result.Lines, cost)
		result.TotalCost += cost.YieldAdjustedCost
	}

	result.CostPerPortion = result.TotalCost / r.Yield
	return result, nil
}
