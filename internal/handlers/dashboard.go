package handlers

import (
	"errors"
	"net/http"

	templpkg "github.com/a-h/templ"

	"brigade/internal/costing"
	applog "brigade/internal/log"
	"brigade/internal/scheduler"
	"brigade/internal/views/pages"
)

// Dashboard renders the recipe overview with current costs and recommended prices.
func Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	data, err := buildDashboardData(r)
	if err != nil {
		applog.Error(r.Context(), "failed to build dashboard", "error", err)
		http.Error(w, "We were unable to load your recipes. Please try again.", statusForError(err))
		return
	}

	var component templpkg.Component
	if isHTMX(r) {
		component = pages.DashboardPartial(data)
	} else {
		component = pages.Dashboard(data)
	}
	renderComponent(w, r, component)
}

func buildDashboardData(r *http.Request) (pages.DashboardData, error) {
	policy := currentPolicy()
	data := pages.DashboardData{
		UserName:              currentUserName(r),
		TargetFoodCostPercent: policy.TargetFoodCostPercent,
	}
	if data.TargetFoodCostPercent <= 0 {
		data.TargetFoodCostPercent = costing.DefaultTargetFoodCostPercent
	}

	recipes, err := kitchen.Recipes(r.Context(), nil)
	if err != nil {
		return data, err
	}
	if len(recipes) == 0 {
		return data, nil
	}

	ids := make([]uint, 0, len(recipes))
	for _, recipe := range recipes {
		ids = append(ids, recipe.ID)
	}
	result, err := priceRecipes(scheduler.WithStream(r.Context(), pricingStream(r, "dashboard")), ids)
	if err != nil {
		return data, err
	}

	for _, recipe := range recipes {
		row := pages.DashboardRow{
			RecipeID:  recipe.ID,
			Name:      recipe.Name,
			Yield:     recipe.Yield,
			YieldUnit: recipe.YieldUnit,
		}
		if cost, ok := result.Costs[recipe.ID]; ok {
			row.CostPerPortion = cost.CostPerPortion
		}
		if rec, ok := result.Prices[recipe.ID]; ok {
			row.Priced = true
			row.Price = rec.Price
			row.FoodCostPercent = rec.FoodCostPercent
		}
		if err, ok := result.Errors[recipe.ID]; ok {
			row.Problem = dashboardProblem(err)
		}
		data.Rows = append(data.Rows, row)
	}
	return data, nil
}

func dashboardProblem(err error) string {
	switch {
	case errors.Is(err, costing.ErrInvalidYield):
		return "yield missing"
	default:
		return "cost unavailable"
	}
}
