package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"brigade/internal/costing"
)

const recipesPrefix = "/app/api/recipes"

type recipeCostResponse struct {
	RecipeID       uint               `json:"recipe_id"`
	RecipeName     string             `json:"recipe_name"`
	Yield          float64            `json:"yield"`
	YieldUnit      string             `json:"yield_unit"`
	Lines          []costing.CostLine `json:"lines"`
	Skipped        []skippedLine      `json:"skipped,omitempty"`
	TotalCost      float64            `json:"total_cost"`
	CostPerPortion float64            `json:"cost_per_portion"`
	pricing
}

type recipePreviewResponse struct {
	costing.RecipePreview
	BatchCost      float64 `json:"batch_cost"`
	CostPerPortion float64 `json:"cost_per_portion"`
}

// RecipeResource serves the cost breakdown and scaled preview of one recipe:
// GET /app/api/recipes/{id}/cost and GET /app/api/recipes/{id}/preview?yield=N.
func RecipeResource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id, action, ok := resourcePath(r.URL.Path, recipesPrefix)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "recipe not found")
		return
	}

	switch action {
	case "cost":
		recipeCost(w, r, id)
	case "preview":
		recipePreview(w, r, id)
	default:
		writeJSONError(w, http.StatusNotFound, "unknown recipe resource")
	}
}

func recipeCost(w http.ResponseWriter, r *http.Request, id uint) {
	recipe, err := kitchen.Recipe(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	cost, err := costing.CostRecipe(recipe)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recipeCostResponse{
		RecipeID:       cost.RecipeID,
		RecipeName:     cost.RecipeName,
		Yield:          cost.Yield,
		YieldUnit:      cost.YieldUnit,
		Lines:          nonNilLines(cost.Lines),
		Skipped:        projectSkipped(cost.Skipped),
		TotalCost:      cost.TotalCost,
		CostPerPortion: cost.CostPerPortion,
		pricing:        recommend(cost.CostPerPortion),
	})
}

func recipePreview(w http.ResponseWriter, r *http.Request, id uint) {
	previewYield, err := strconv.ParseFloat(strings.TrimSpace(r.URL.Query().Get("yield")), 64)
	if err != nil || previewYield <= 0 {
		writeJSONError(w, http.StatusBadRequest, "yield must be a positive number")
		return
	}

	recipe, err := kitchen.Recipe(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	preview, err := costing.PreviewRecipe(recipe, previewYield)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	cost, err := costing.CostRecipe(recipe)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recipePreviewResponse{
		RecipePreview:  preview,
		BatchCost:      cost.TotalCost * preview.Factor,
		CostPerPortion: cost.CostPerPortion,
	})
}
