package handlers

import (
	"net/http"
	"time"

	"brigade/internal/costing"
	"brigade/internal/views/pages"
)

const recipeReportsPrefix = "/app/reports/recipes"

var nowFunc = time.Now

// RecipeCostReport renders the printable cost report of one recipe at
// GET /app/reports/recipes/{id}.
func RecipeCostReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id, action, ok := resourcePath(r.URL.Path, recipeReportsPrefix)
	if !ok || action != "" {
		http.NotFound(w, r)
		return
	}

	report, err := buildRecipeCostReport(r, id)
	if err != nil {
		status := statusForError(err)
		switch status {
		case http.StatusNotFound:
			http.Error(w, "The selected recipe no longer exists.", status)
		case http.StatusUnprocessableEntity:
			http.Error(w, "The recipe needs a positive yield before it can be costed.", status)
		case http.StatusServiceUnavailable:
			http.Error(w, "Reporting is unavailable because no database connection is configured.", status)
		default:
			writeDomainError(w, r, err)
		}
		return
	}

	renderComponent(w, r, pages.RecipeCostReport(report))
}

func buildRecipeCostReport(r *http.Request, id uint) (pages.RecipeCostReportData, error) {
	recipe, err := kitchen.Recipe(r.Context(), id)
	if err != nil {
		return pages.RecipeCostReportData{}, err
	}
	cost, err := costing.CostRecipe(recipe)
	if err != nil {
		return pages.RecipeCostReportData{}, err
	}
	recs := costing.RecommendAll(cost.CostPerPortion, currentPolicy())
	return pages.NewRecipeCostReport(cost, recs, nowFunc().UTC()), nil
}
