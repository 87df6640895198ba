package costing

import (
	"math"

	"github.com/shopspring/decimal"
)

// DefaultTargetFoodCostPercent is the food-cost share a recommended price aims for.
const DefaultTargetFoodCostPercent = 30.0

// TargetStrategyName labels the recommendation computed from Policy.TargetFoodCostPercent.
const TargetStrategyName = "target"

var charmEnding = decimal.RequireFromString("0.95")

// Strategy is a named target food-cost percentage.
type Strategy struct {
	Name                  string  `json:"name"`
	TargetFoodCostPercent float64 `json:"target_food_cost_percent"`
}

// Policy configures how selling prices are recommended.
type Policy struct {
	TargetFoodCostPercent float64
	Strategies            []Strategy
	// VariableCostPerPortion and VariableCostPercent (of revenue) are deducted on top of
	// the ingredient cost when computing the contributing margin.
	VariableCostPerPortion float64
	VariableCostPercent    float64
}

// DefaultPolicy returns the 30% target with value/standard/premium alternatives.
func DefaultPolicy() Policy {
	return Policy{
		TargetFoodCostPercent: DefaultTargetFoodCostPercent,
		Strategies: []Strategy{
			{Name: "value", TargetFoodCostPercent: 35},
			{Name: "standard", TargetFoodCostPercent: 30},
			{Name: "premium", TargetFoodCostPercent: 25},
		},
	}
}

func validPercent(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

func (p Policy) target() float64 {
	if !validPercent(p.TargetFoodCostPercent) {
		return DefaultTargetFoodCostPercent
	}
	return p.TargetFoodCostPercent
}

// Metrics are the cost and profit figures of selling one portion at Price.
type Metrics struct {
	Price                     float64 `json:"price"`
	FoodCostPercent           float64 `json:"food_cost_percent"`
	GrossProfit               float64 `json:"gross_profit"`
	GrossProfitMargin         float64 `json:"gross_profit_margin"`
	ContributingMargin        float64 `json:"contributing_margin"`
	ContributingMarginPercent float64 `json:"contributing_margin_percent"`
}

// Recommendation is a recommended selling price for one cost-per-portion.
type Recommendation struct {
	Strategy              string  `json:"strategy"`
	TargetFoodCostPercent float64 `json:"target_food_cost_percent"`
	CostPerServing        float64 `json:"cost_per_serving"`
	RawPrice              float64 `json:"raw_price"`
	Metrics
	Alternatives map[string]float64 `json:"alternatives,omitempty"`
}

// RawPrice is the price at which costPerPortion equals targetPercent of revenue.
func RawPrice(costPerPortion, targetPercent float64) float64 {
	return costPerPortion * 100 / targetPercent
}

// CharmPrice rounds raw down to the whole unit and adds 0.95.
func CharmPrice(raw float64) float64 {
	// Only float division noise below 1e-9 is absorbed before flooring.
	whole := decimal.NewFromFloat(raw).Round(9).Floor()
	return whole.Add(charmEnding).InexactFloat64()
}

// Analyze computes the metrics of selling a portion costing costPerPortion at price.
// ok is false when either figure is not positive.
func Analyze(price, costPerPortion float64, policy Policy) (Metrics, bool) {
	if !validPercent(price) || !validPercent(costPerPortion) {
		return Metrics{}, false
	}
	grossProfit := price - costPerPortion
	variable := costPerPortion + policy.VariableCostPerPortion + price*policy.VariableCostPercent/100
	contributing := price - variable
	return Metrics{
		Price:                     price,
		FoodCostPercent:           costPerPortion / price * 100,
		GrossProfit:               grossProfit,
		GrossProfitMargin:         grossProfit / price * 100,
		ContributingMargin:        contributing,
		ContributingMarginPercent: contributing / price * 100,
	}, true
}

func recommendAt(name string, target, costPerPortion float64, policy Policy) Recommendation {
	raw := RawPrice(costPerPortion, target)
	metrics, _ := Analyze(CharmPrice(raw), costPerPortion, policy)
	return Recommendation{
		Strategy:              name,
		TargetFoodCostPercent: target,
		CostPerServing:        costPerPortion,
		RawPrice:              raw,
		Metrics:               metrics,
	}
}

// Recommend prices costPerPortion at the policy target and lists every configured
// strategy's charm price in Alternatives. ok is false when costPerPortion is not
// positive, meaning no recommendation is available.
func Recommend(costPerPortion float64, policy Policy) (Recommendation, bool) {
	if !validPercent(costPerPortion) {
		return Recommendation{}, false
	}
	rec := recommendAt(TargetStrategyName, policy.target(), costPerPortion, policy)
	for _, strategy := range policy.Strategies {
		if !validPercent(strategy.TargetFoodCostPercent) || strategy.Name == "" {
			continue
		}
		if rec.Alternatives == nil {
			rec.Alternatives = make(map[string]float64, len(policy.Strategies))
		}
		rec.Alternatives[strategy.Name] = CharmPrice(RawPrice(costPerPortion, strategy.TargetFoodCostPercent))
	}
	return rec, true
}

// RecommendAll returns full metrics for every configured strategy in one pass. When
// the policy has no usable strategies the target recommendation is returned alone.
func RecommendAll(costPerPortion float64, policy Policy) []Recommendation {
	if !validPercent(costPerPortion) {
		return nil
	}
	results := make([]Recommendation, 0, len(policy.Strategies))
	for _, strategy := range policy.Strategies {
		if !validPercent(strategy.TargetFoodCostPercent) || strategy.Name == "" {
			continue
		}
		results = append(results, recommendAt(strategy.Name, strategy.TargetFoodCostPercent, costPerPortion, policy))
	}
	if len(results) == 0 {
		results = append(results, recommendAt(TargetStrategyName, policy.target(), costPerPortion, policy))
	}
	return results
}
