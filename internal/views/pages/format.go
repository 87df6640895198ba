package pages

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"brigade/internal/costing"
)

// DefaultDash returns an em dash when the provided value is empty or whitespace.
func DefaultDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "—"
	}
	return value
}

// FormatMoney renders an amount rounded half away from zero to whole cents.
func FormatMoney(value float64) string {
	amount := decimal.NewFromFloat(value).Round(2)
	if amount.IsNegative() {
		return "-$" + amount.Neg().StringFixed(2)
	}
	return "$" + amount.StringFixed(2)
}

// FormatPercent renders a percentage with one decimal place.
func FormatPercent(value float64) string {
	return decimal.NewFromFloat(value).Round(1).StringFixed(1) + "%"
}

// FormatReportDate renders the supplied time using a kitchen-friendly layout.
func FormatReportDate(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.Format("02 Jan 2006")
}

// ParseUint extracts a uint from the provided string, returning zero on failure.
func ParseUint(value string) uint {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0
	}
	parsed, err := strconv.ParseUint(trimmed, 10, 64)
	if err != nil {
		return 0
	}
	return uint(parsed)
}

// IngredientFilters capture the client-driven state for ingredient lookups.
type IngredientFilters struct {
	Query    string
	Category string
}

// IngredientFiltersFromRequest extracts filter inputs from an HTTP request.
func IngredientFiltersFromRequest(r *http.Request) IngredientFilters {
	filters := IngredientFilters{}
	if err := r.ParseForm(); err != nil {
		return filters
	}
	filters.Query = strings.TrimSpace(r.FormValue("q"))
	filters.Category = strings.TrimSpace(r.FormValue("category"))
	return filters
}

// FilterIngredients applies the provided filters to a list of ingredients.
func FilterIngredients(all []costing.Ingredient, filters IngredientFilters) []costing.Ingredient {
	if filters.Query == "" && filters.Category == "" {
		return all
	}
	query := strings.ToLower(filters.Query)
	filtered := make([]costing.Ingredient, 0, len(all))
	for _, ingredient := range all {
		if filters.Category != "" && !strings.EqualFold(ingredient.Category, filters.Category) {
			continue
		}
		if containsFold(ingredient.Name, query) || containsFold(ingredient.Supplier, query) {
			filtered = append(filtered, ingredient)
		}
	}
	return filtered
}

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), needle)
}
