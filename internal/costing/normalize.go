package costing

import (
	"math"
	"strings"
)

// NormalizeUnit returns the canonical unit symbol, or the trimmed lower-case input
// when the unit is not in the catalogue.
func NormalizeUnit(unit string) string {
	canonical, ok := CanonicalUnit(unit)
	if ok {
		return canonical
	}
	return strings.ToLower(strings.TrimSpace(unit))
}

// NormalizeIngredient fills defaults so the resolver can assume a complete record:
// negative waste becomes 0, a missing yield becomes 100 and yield is capped at 100.
// Waste of 100 or more is kept so that the resolver reports it.
func NormalizeIngredient(i Ingredient) Ingredient {
	i.Name = strings.TrimSpace(i.Name)
	i.BaseUnit = NormalizeUnit(i.BaseUnit)
	i.Category = strings.TrimSpace(i.Category)
	i.Supplier = strings.TrimSpace(i.Supplier)

	if math.IsNaN(i.WastePercent) || i.WastePercent < 0 {
		i.WastePercent = 0
	}
	if math.IsNaN(i.YieldPercent) || i.YieldPercent <= 0 || i.YieldPercent > 100 {
		i.YieldPercent = 100
	}
	if i.CostPerUnitInclTrim != nil && (math.IsNaN(*i.CostPerUnitInclTrim) || *i.CostPerUnitInclTrim <= 0) {
		i.CostPerUnitInclTrim = nil
	}
	return i
}

// NormalizeLine normalises the ingredient and defaults the unit to its base unit.
func NormalizeLine(l IngredientLine) IngredientLine {
	l.Ingredient = NormalizeIngredient(l.Ingredient)
	l.Unit = NormalizeUnit(l.Unit)
	if l.Unit == "" {
		l.Unit = l.Ingredient.BaseUnit
	}
	return l
}

// NormalizeRecipe normalises every line. The yield is left untouched: a recipe
// without a positive yield is an input error, not something to default.
func NormalizeRecipe(r Recipe) Recipe {
	r.Name = strings.TrimSpace(r.Name)
	r.YieldUnit = strings.TrimSpace(r.YieldUnit)
	lines := make([]IngredientLine, len(r.Lines))
	for i, line := range r.Lines {
		lines[i] = NormalizeLine(line)
	}
	r.Lines = lines
	return r
}

// NormalizeDish normalises nested recipes and lines and defaults portions to 1.
func NormalizeDish(d Dish) Dish {
	d.Name = strings.TrimSpace(d.Name)
	if math.IsNaN(d.Portions) || d.Portions <= 0 {
		d.Portions = 1
	}
	recipes := make([]DishRecipe, len(d.Recipes))
	for i, link := range d.Recipes {
		recipes[i] = DishRecipe{Recipe: NormalizeRecipe(link.Recipe), Quantity: link.Quantity}
	}
	d.Recipes = recipes
	lines := make([]IngredientLine, len(d.Ingredients))
	for i, line := range d.Ingredients {
		lines[i] = NormalizeLine(line)
	}
	d.Ingredients = lines
	return d
}
