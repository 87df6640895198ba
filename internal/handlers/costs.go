package handlers

import (
	"brigade/internal/costing"
)

type skippedLine struct {
	RecipeID       uint   `json:"recipe_id,omitempty"`
	IngredientID   uint   `json:"ingredient_id,omitempty"`
	IngredientName string `json:"ingredient_name,omitempty"`
	Reason         string `json:"reason"`
}

func projectSkipped(errs []costing.LineError) []skippedLine {
	if len(errs) == 0 {
		return nil
	}
	out := make([]skippedLine, 0, len(errs))
	for _, e := range errs {
		out = append(out, skippedLine{
			RecipeID:       e.RecipeID,
			IngredientID:   e.IngredientID,
			IngredientName: e.IngredientName,
			Reason:         e.Err.Error(),
		})
	}
	return out
}

func nonNilLines(lines []costing.CostLine) []costing.CostLine {
	if lines == nil {
		return []costing.CostLine{}
	}
	return lines
}

// pricing is the recommendation block shared by recipe and dish responses.
type pricing struct {
	Recommendation *costing.Recommendation  `json:"recommendation"`
	Strategies     []costing.Recommendation `json:"strategies"`
}

func recommend(costPerPortion float64) pricing {
	policy := currentPolicy()
	out := pricing{Strategies: costing.RecommendAll(costPerPortion, policy)}
	if rec, ok := costing.Recommend(costPerPortion, policy); ok {
		out.Recommendation = &rec
	}
	if out.Strategies == nil {
		out.Strategies = []costing.Recommendation{}
	}
	return out
}
