package costing

import (
	"fmt"
	"math"
)

// ResolveIngredientCost computes the cost of using quantity (in unit) of ing.
//
// A trim-inclusive cost, when present, replaces the base cost and waste is not applied
// on top of it. Consumables skip waste and yield entirely. The returned error is
// scoped to this single line; callers decide whether to skip or flag it.
func ResolveIngredientCost(ing Ingredient, quantity float64, unit string) (CostLine, error) {
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity <= 0 {
		return CostLine{}, fmt.Errorf("%w: %v", ErrInvalidQuantity, quantity)
	}
	if unit == "" {
		unit = ing.BaseUnit
	}

	trimInclusive := ing.CostPerUnitInclTrim != nil && *ing.CostPerUnitInclTrim > 0
	costPerUnit := ing.CostPerUnit
	if trimInclusive {
		costPerUnit = *ing.CostPerUnitInclTrim
	}
	if ing.BaseUnit != "" {
		converted, err := ConvertCostPerUnit(costPerUnit, ing.BaseUnit, unit)
		if err != nil {
			return CostLine{}, err
		}
		costPerUnit = converted
	}

	line := CostLine{
		IngredientID:   ing.ID,
		IngredientName: ing.Name,
		Quantity:       quantity,
		Unit:           unit,
		CostPerUnit:    costPerUnit,
		TotalCost:      quantity * costPerUnit,
		Consumable:     ing.Consumable(),
	}

	if line.Consumable {
		line.WasteAdjustedCost = line.TotalCost
		line.YieldAdjustedCost = line.TotalCost
		return line, nil
	}

	switch {
	case trimInclusive:
		line.WasteAdjustedCost = line.TotalCost
	case ing.WastePercent >= 100:
		return CostLine{}, fmt.Errorf("%w: %v%%", ErrInvalidWaste, ing.WastePercent)
	case ing.WastePercent > 0:
		line.WasteAdjustedCost = line.TotalCost / (1 - ing.WastePercent/100)
	default:
		line.WasteAdjustedCost = line.TotalCost
	}

	yieldPercent := ing.YieldPercent
	if yieldPercent <= 0 || math.IsNaN(yieldPercent) {
		yieldPercent = 100
	}
	line.YieldAdjustedCost = line.WasteAdjustedCost / (yieldPercent / 100)

	return line, nil
}

// ResolveLine is ResolveIngredientCost applied to an IngredientLine.
func ResolveLine(line IngredientLine) (CostLine, error) {
	return ResolveIngredientCost(line.Ingredient, line.Quantity, line.Unit)
}
