package handlers

import (
	"net/http"

	"brigade/internal/costing"
	"brigade/internal/views/pages"
)

type ingredientResponse struct {
	ID                  uint     `json:"id"`
	Name                string   `json:"name"`
	BaseUnit            string   `json:"base_unit"`
	CostPerUnit         float64  `json:"cost_per_unit"`
	CostPerUnitInclTrim *float64 `json:"cost_per_unit_incl_trim,omitempty"`
	WastePercent        float64  `json:"waste_percent"`
	YieldPercent        float64  `json:"yield_percent"`
	Category            string   `json:"category"`
	Supplier            string   `json:"supplier"`
	Consumable          bool     `json:"consumable"`
}

func projectIngredient(ingredient costing.Ingredient) ingredientResponse {
	return ingredientResponse{
		ID:                  ingredient.ID,
		Name:                ingredient.Name,
		BaseUnit:            ingredient.BaseUnit,
		CostPerUnit:         ingredient.CostPerUnit,
		CostPerUnitInclTrim: ingredient.CostPerUnitInclTrim,
		WastePercent:        ingredient.WastePercent,
		YieldPercent:        ingredient.YieldPercent,
		Category:            ingredient.Category,
		Supplier:            ingredient.Supplier,
		Consumable:          ingredient.Consumable(),
	}
}

// Ingredients lists ingredients, optionally filtered by ?q= and ?category=.
func Ingredients(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	all, err := kitchen.Ingredients(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	filtered := pages.FilterIngredients(all, pages.IngredientFiltersFromRequest(r))

	out := make([]ingredientResponse, 0, len(filtered))
	for _, ingredient := range filtered {
		out = append(out, projectIngredient(ingredient))
	}
	writeJSON(w, http.StatusOK, out)
}
