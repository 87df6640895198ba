package handlers

import (
	"net/http"

	"brigade/internal/costing"
)

const dishesPrefix = "/app/api/dishes"

type dishCostResponse struct {
	DishID         uint                         `json:"dish_id"`
	DishName       string                       `json:"dish_name"`
	Portions       float64                      `json:"portions"`
	SellingPrice   float64                      `json:"selling_price"`
	Lines          []costing.CostLine           `json:"lines"`
	Recipes        []costing.RecipeContribution `json:"recipes"`
	Skipped        []skippedLine                `json:"skipped,omitempty"`
	RecipeCost     float64                      `json:"recipe_cost"`
	StandaloneCost float64                      `json:"standalone_cost"`
	TotalCOGS      float64                      `json:"total_cogs"`
	CostPerPortion float64                      `json:"cost_per_portion"`
	// Actual holds the metrics at the dish's current selling price.
	Actual *costing.Metrics `json:"actual,omitempty"`
	pricing
}

// DishResource serves GET /app/api/dishes/{id}/cost.
func DishResource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id, action, ok := resourcePath(r.URL.Path, dishesPrefix)
	if !ok || action != "cost" {
		writeJSONError(w, http.StatusNotFound, "dish resource not found")
		return
	}

	dish, err := kitchen.Dish(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	cost, err := costing.CostDish(dish)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := dishCostResponse{
		DishID:         cost.DishID,
		DishName:       cost.DishName,
		Portions:       cost.Portions,
		SellingPrice:   dish.SellingPrice,
		Lines:          nonNilLines(cost.Lines),
		Recipes:        cost.Recipes,
		Skipped:        projectSkipped(cost.Skipped),
		RecipeCost:     cost.RecipeCost,
		StandaloneCost: cost.StandaloneCost,
		TotalCOGS:      cost.TotalCOGS,
		CostPerPortion: cost.CostPerPortion,
		pricing:        recommend(cost.CostPerPortion),
	}
	if resp.Recipes == nil {
		resp.Recipes = []costing.RecipeContribution{}
	}
	if actual, ok := costing.Analyze(dish.SellingPrice, cost.CostPerPortion, currentPolicy()); ok {
		resp.Actual = &actual
	}
	writeJSON(w, http.StatusOK, resp)
}
