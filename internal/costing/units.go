package costing

import (
	"fmt"
	"strings"
)

// Dimension groups units that can be converted into each other.
type Dimension int

const (
	DimensionUnknown Dimension = iota
	DimensionMass
	DimensionVolume
	DimensionCount
)

func (d Dimension) String() string {
	switch d {
	case DimensionMass:
		return "mass"
	case DimensionVolume:
		return "volume"
	case DimensionCount:
		return "count"
	default:
		return "unknown"
	}
}

type unitDef struct {
	dimension Dimension
	// factor converts one of this unit into the dimension's base unit (g, ml, each).
	factor float64
}

var unitTable = map[string]unitDef{
	"mg":    {DimensionMass, 0.001},
	"g":     {DimensionMass, 1},
	"kg":    {DimensionMass, 1000},
	"oz":    {DimensionMass, 28.349523125},
	"lb":    {DimensionMass, 453.59237},
	"ml":    {DimensionVolume, 1},
	"cl":    {DimensionVolume, 10},
	"dl":    {DimensionVolume, 100},
	"l":     {DimensionVolume, 1000},
	"tsp":   {DimensionVolume, 4.92892159375},
	"tbsp":  {DimensionVolume, 14.78676478125},
	"cup":   {DimensionVolume, 236.5882365},
	"floz":  {DimensionVolume, 29.5735295625},
	"each":  {DimensionCount, 1},
	"dozen": {DimensionCount, 12},
}

var unitAliases = map[string]string{
	"gram": "g", "grams": "g", "gr": "g", "gm": "g",
	"kilogram": "kg", "kilograms": "kg", "kilo": "kg", "kilos": "kg", "kgs": "kg",
	"milligram": "mg", "milligrams": "mg",
	"ounce": "oz", "ounces": "oz",
	"pound": "lb", "pounds": "lb", "lbs": "lb",
	"milliliter": "ml", "milliliters": "ml", "millilitre": "ml", "millilitres": "ml",
	"centiliter": "cl", "centilitre": "cl",
	"deciliter": "dl", "decilitre": "dl",
	"liter": "l", "liters": "l", "litre": "l", "litres": "l", "lt": "l", "ltr": "l",
	"teaspoon": "tsp", "teaspoons": "tsp",
	"tablespoon": "tbsp", "tablespoons": "tbsp",
	"cups":        "cup",
	"fluidounce":  "floz",
	"fluidounces": "floz",
	"ea": "each", "pc": "each", "pcs": "each", "piece": "each", "pieces": "each",
	"unit": "each", "units": "each", "count": "each", "ct": "each", "x": "each",
	"dz": "dozen", "doz": "dozen",
}

// CanonicalUnit maps a unit spelling onto its canonical symbol. The boolean is
// false when the unit is not part of the catalogue.
func CanonicalUnit(unit string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(unit))
	key = strings.NewReplacer(".", "", " ", "", "_", "").Replace(key)
	if _, ok := unitTable[key]; ok {
		return key, true
	}
	if alias, ok := unitAliases[key]; ok {
		return alias, true
	}
	return key, false
}

// UnitDimension returns the dimension a unit belongs to.
func UnitDimension(unit string) Dimension {
	canonical, ok := CanonicalUnit(unit)
	if !ok {
		return DimensionUnknown
	}
	return unitTable[canonical].dimension
}

// lookupUnits resolves both units. Identical spellings need no conversion, so a
// unit outside the catalogue is accepted when both sides use it.
func lookupUnits(from, to string) (unitDef, unitDef, bool, error) {
	fromKey, ok := CanonicalUnit(from)
	if toKey, _ := CanonicalUnit(to); fromKey != "" && fromKey == toKey {
		return unitTable[fromKey], unitTable[toKey], true, nil
	}
	if !ok {
		return unitDef{}, unitDef{}, false, fmt.Errorf("%w: %q", ErrUnknownUnit, from)
	}
	toKey, ok := CanonicalUnit(to)
	if !ok {
		return unitDef{}, unitDef{}, false, fmt.Errorf("%w: %q", ErrUnknownUnit, to)
	}
	fromDef, toDef := unitTable[fromKey], unitTable[toKey]
	if fromDef.dimension != toDef.dimension {
		return unitDef{}, unitDef{}, false, fmt.Errorf("%w: %s (%s) to %s (%s)", ErrIncompatibleUnits, fromKey, fromDef.dimension, toKey, toDef.dimension)
	}
	return fromDef, toDef, fromKey == toKey, nil
}

// ConvertQuantity expresses value, given in fromUnit, in toUnit.
func ConvertQuantity(value float64, fromUnit, toUnit string) (float64, error) {
	fromDef, toDef, same, err := lookupUnits(fromUnit, toUnit)
	if err != nil {
		return 0, err
	}
	if same {
		return value, nil
	}
	return value * fromDef.factor / toDef.factor, nil
}

// ConvertCostPerUnit re-expresses a price per fromUnit as a price per toUnit so that
// quantity(to) * cost(to) equals quantity(from) * cost(from).
func ConvertCostPerUnit(cost float64, fromUnit, toUnit string) (float64, error) {
	fromDef, toDef, same, err := lookupUnits(fromUnit, toUnit)
	if err != nil {
		return 0, err
	}
	if same {
		return cost, nil
	}
	return cost * toDef.factor / fromDef.factor, nil
}
