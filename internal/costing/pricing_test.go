package costing

import (
	"math"
	"testing"
)

func TestCharmPrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  float64
		want float64
	}{
		{10, 10.95},
		{9.999999999999, 10.95},
		{10.9999996, 10.95},
		{8.571428571428571, 8.95},
		{0.4, 0.95},
		{12.01, 12.95},
	}

	for _, tt := range tests {
		if got := CharmPrice(tt.raw); got != tt.want {
			t.Fatalf("CharmPrice(%v) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestCharmPriceIsIdempotent(t *testing.T) {
	t.Parallel()

	for _, price := range []float64{0.95, 4.95, 9.95, 10.95, 129.95} {
		if got := CharmPrice(price); got != price {
			t.Fatalf("CharmPrice(%v) = %v, want unchanged", price, got)
		}
	}

	rec, ok := Recommend(2.985, DefaultPolicy())
	if !ok {
		t.Fatal("expected recommendation")
	}
	if rec.Price != 9.95 {
		t.Fatalf("Price = %v, want 9.95", rec.Price)
	}
	if again := CharmPrice(rec.Price); again != rec.Price {
		t.Fatalf("CharmPrice(%v) drifted to %v", rec.Price, again)
	}
}

func TestRecommendRecipeScenario(t *testing.T) {
	t.Parallel()

	rec, ok := Recommend(3, DefaultPolicy())
	if !ok {
		t.Fatal("expected recommendation")
	}
	nearlyEqual(t, "RawPrice", rec.RawPrice, 10)
	if rec.Price != 10.95 {
		t.Fatalf("Price = %v, want 10.95", rec.Price)
	}
	if rec.Strategy != TargetStrategyName || rec.TargetFoodCostPercent != 30 {
		t.Fatalf("strategy = %q at %v%%", rec.Strategy, rec.TargetFoodCostPercent)
	}
	nearlyEqual(t, "CostPerServing", rec.CostPerServing, 3)
	nearlyEqual(t, "FoodCostPercent", rec.FoodCostPercent, 3/10.95*100)
	nearlyEqual(t, "GrossProfit", rec.GrossProfit, 7.95)
	nearlyEqual(t, "GrossProfitMargin", rec.GrossProfitMargin, 7.95/10.95*100)
	nearlyEqual(t, "ContributingMargin", rec.ContributingMargin, rec.GrossProfit)

	want := map[string]float64{"value": 8.95, "standard": 10.95, "premium": 12.95}
	if len(rec.Alternatives) != len(want) {
		t.Fatalf("Alternatives = %v", rec.Alternatives)
	}
	for name, price := range want {
		if rec.Alternatives[name] != price {
			t.Fatalf("Alternatives[%s] = %v, want %v", name, rec.Alternatives[name], price)
		}
	}
}

func TestRecommendRejectsDegenerateCost(t *testing.T) {
	t.Parallel()

	for _, cost := range []float64{0, -1, math.NaN()} {
		if _, ok := Recommend(cost, DefaultPolicy()); ok {
			t.Fatalf("Recommend(%v) returned a recommendation", cost)
		}
		if got := RecommendAll(cost, DefaultPolicy()); got != nil {
			t.Fatalf("RecommendAll(%v) = %v, want nil", cost, got)
		}
	}
}

func TestRecommendFallsBackToDefaultTarget(t *testing.T) {
	t.Parallel()

	rec, ok := Recommend(3, Policy{})
	if !ok {
		t.Fatal("expected recommendation")
	}
	if rec.TargetFoodCostPercent != DefaultTargetFoodCostPercent {
		t.Fatalf("TargetFoodCostPercent = %v", rec.TargetFoodCostPercent)
	}
	if rec.Alternatives != nil {
		t.Fatalf("Alternatives = %v, want none", rec.Alternatives)
	}
}

func TestRecommendAllComputesEveryStrategy(t *testing.T) {
	t.Parallel()

	all := RecommendAll(3, DefaultPolicy())
	if len(all) != 3 {
		t.Fatalf("len(RecommendAll) = %d, want 3", len(all))
	}
	names := []string{"value", "standard", "premium"}
	prices := []float64{8.95, 10.95, 12.95}
	for i, rec := range all {
		if rec.Strategy != names[i] || rec.Price != prices[i] {
			t.Fatalf("RecommendAll[%d] = %s at %v, want %s at %v", i, rec.Strategy, rec.Price, names[i], prices[i])
		}
		nearlyEqual(t, "FoodCostPercent", rec.FoodCostPercent, 3/prices[i]*100)
	}

	single := RecommendAll(3, Policy{TargetFoodCostPercent: 25})
	if len(single) != 1 || single[0].Strategy != TargetStrategyName || single[0].Price != 12.95 {
		t.Fatalf("RecommendAll without strategies = %+v", single)
	}
}

func TestAnalyzeContributingMargin(t *testing.T) {
	t.Parallel()

	policy := Policy{VariableCostPerPortion: 0.5, VariableCostPercent: 10}
	metrics, ok := Analyze(10.95, 3, policy)
	if !ok {
		t.Fatal("expected metrics")
	}
	nearlyEqual(t, "ContributingMargin", metrics.ContributingMargin, 10.95-3-0.5-1.095)
	nearlyEqual(t, "ContributingMarginPercent", metrics.ContributingMarginPercent, (10.95-3-0.5-1.095)/10.95*100)
	nearlyEqual(t, "GrossProfit", metrics.GrossProfit, 7.95)

	if _, ok := Analyze(0, 3, policy); ok {
		t.Fatal("expected no metrics for zero price")
	}
}
