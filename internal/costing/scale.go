package costing

import (
	"fmt"
	"math"
	"strings"
)

// ScaleQuantity rescales a quantity written for recipeYield portions to previewYield portions.
func ScaleQuantity(quantity, recipeYield, previewYield float64) (float64, error) {
	if math.IsNaN(recipeYield) || recipeYield <= 0 {
		return 0, fmt.Errorf("%w: recipe yield %v", ErrInvalidYield, recipeYield)
	}
	if math.IsNaN(previewYield) || previewYield <= 0 {
		return 0, fmt.Errorf("%w: preview yield %v", ErrInvalidYield, previewYield)
	}
	return quantity * (previewYield / recipeYield), nil
}

// FormatQuantity renders a quantity for display. Grams and millilitres from 1000 up
// are promoted to kilograms and litres with the original value kept in parentheses.
// The output is presentational only and never feeds back into cost math.
func FormatQuantity(quantity float64, unit string) string {
	label := strings.TrimSpace(unit)
	canonical, known := CanonicalUnit(unit)
	if known {
		label = canonical
	}

	// Promote on the displayed value so 999.96 g does not print as "1000.0 g".
	shown := math.Round(quantity*10) / 10
	switch {
	case known && canonical == "g" && shown >= 1000:
		return fmt.Sprintf("%.1f kg (%.0f g)", quantity/1000, quantity)
	case known && canonical == "ml" && shown >= 1000:
		return fmt.Sprintf("%.1f L (%.0f ml)", quantity/1000, quantity)
	case quantity < 1:
		return strings.TrimSpace(fmt.Sprintf("%.2f %s", quantity, label))
	default:
		return strings.TrimSpace(fmt.Sprintf("%.1f %s", quantity, label))
	}
}

// PreviewLine is one ingredient line rescaled to a preview yield.
type PreviewLine struct {
	IngredientID   uint    `json:"ingredient_id"`
	IngredientName string  `json:"ingredient_name"`
	BaseQuantity   float64 `json:"base_quantity"`
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit"`
	Display        string  `json:"display"`
}

// RecipePreview shows a recipe's ingredient quantities for a different yield.
type RecipePreview struct {
	RecipeID     uint          `json:"recipe_id"`
	RecipeName   string        `json:"recipe_name"`
	BaseYield    float64       `json:"base_yield"`
	PreviewYield float64       `json:"preview_yield"`
	YieldUnit    string        `json:"yield_unit"`
	Factor       float64       `json:"factor"`
	Lines        []PreviewLine `json:"lines"`
}

// PreviewRecipe scales every line of r to previewYield portions.
func PreviewRecipe(r Recipe, previewYield float64) (RecipePreview, error) {
	factor, err := ScaleQuantity(1, r.Yield, previewYield)
	if err != nil {
		return RecipePreview{}, err
	}

	preview := RecipePreview{
		RecipeID:     r.ID,
		RecipeName:   r.Name,
		BaseYield:    r.Yield,
		PreviewYield: previewYield,
		YieldUnit:    r.YieldUnit,
		Factor:       factor,
		Lines:        make([]PreviewLine, 0, len(r.Lines)),
	}
	for _, line := range r.Lines {
		quantity := line.Quantity * factor
		preview.Lines = append(preview.Lines, PreviewLine{
			IngredientID:   line.Ingredient.ID,
			IngredientName: line.Ingredient.Name,
			BaseQuantity:   line.Quantity,
			Quantity:       quantity,
			Unit:           line.Unit,
			Display:        FormatQuantity(quantity, line.Unit),
		})
	}
	return preview, nil
}
