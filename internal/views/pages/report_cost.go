package pages

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"

	"brigade/internal/costing"
	"brigade/internal/views/components"
	"brigade/internal/views/layout"
)

// RecipeCostReportLine is one ingredient row of the cost report.
type RecipeCostReportLine struct {
	IngredientName string
	Quantity       string
	CostPerUnit    float64
	Unit           string
	TotalCost      float64
	AdjustedCost   float64
	Consumable     bool
}

// RecipeCostReportData aggregates what the recipe cost report shows.
type RecipeCostReportData struct {
	RecipeName      string
	Yield           float64
	YieldUnit       string
	GeneratedAt     time.Time
	Lines           []RecipeCostReportLine
	Skipped         []string
	TotalCost       float64
	CostPerPortion  float64
	Recommendations []costing.Recommendation
}

// NewRecipeCostReport builds report data from a costed recipe and its price
// recommendations, which may be empty for an unpriceable recipe.
func NewRecipeCostReport(cost costing.RecipeCost, recs []costing.Recommendation, generated time.Time) RecipeCostReportData {
	data := RecipeCostReportData{
		RecipeName:      cost.RecipeName,
		Yield:           cost.Yield,
		YieldUnit:       cost.YieldUnit,
		GeneratedAt:     generated,
		TotalCost:       cost.TotalCost,
		CostPerPortion:  cost.CostPerPortion,
		Recommendations: recs,
	}
	for _, line := range cost.Lines {
		data.Lines = append(data.Lines, RecipeCostReportLine{
			IngredientName: line.IngredientName,
			Quantity:       costing.FormatQuantity(line.Quantity, line.Unit),
			CostPerUnit:    line.CostPerUnit,
			Unit:           line.Unit,
			TotalCost:      line.TotalCost,
			AdjustedCost:   line.YieldAdjustedCost,
			Consumable:     line.Consumable,
		})
	}
	for _, skipped := range cost.Skipped {
		data.Skipped = append(data.Skipped, skipped.Error())
	}
	return data
}

func (d RecipeCostReportData) lineRows() [][]string {
	rows := make([][]string, 0, len(d.Lines))
	for _, line := range d.Lines {
		note := ""
		if line.Consumable {
			note = "consumable"
		}
		rows = append(rows, []string{
			line.IngredientName,
			line.Quantity,
			FormatMoney(line.CostPerUnit) + " / " + line.Unit,
			FormatMoney(line.TotalCost),
			FormatMoney(line.AdjustedCost),
			DefaultDash(note),
		})
	}
	return rows
}

func (d RecipeCostReportData) priceRows() [][]string {
	rows := make([][]string, 0, len(d.Recommendations))
	for _, rec := range d.Recommendations {
		rows = append(rows, []string{
			rec.Strategy,
			FormatPercent(rec.TargetFoodCostPercent),
			FormatMoney(rec.Price),
			FormatPercent(rec.FoodCostPercent),
			FormatMoney(rec.GrossProfit),
			FormatPercent(rec.GrossProfitMargin),
		})
	}
	return rows
}

// RecipeCostReport renders a printable cost breakdown for one recipe.
func RecipeCostReport(data RecipeCostReportData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<article class="cost-report"><header><h1>%s</h1><p>Yield %g %s</p><p>Generated %s</p></header>`,
			templ.EscapeString(data.RecipeName), data.Yield, templ.EscapeString(data.YieldUnit), FormatReportDate(data.GeneratedAt)); err != nil {
			return err
		}
		if err := components.StatCard("Batch cost", FormatMoney(data.TotalCost), "", "").Render(ctx, w); err != nil {
			return err
		}
		if err := components.StatCard("Cost per portion", FormatMoney(data.CostPerPortion), "", "").Render(ctx, w); err != nil {
			return err
		}
		headers := []string{"Ingredient", "Quantity", "Unit cost", "Cost", "Adjusted cost", "Note"}
		if err := components.Table(headers, data.lineRows()).Render(ctx, w); err != nil {
			return err
		}
		if len(data.Skipped) > 0 {
			if _, err := io.WriteString(w, `<section class="skipped"><h2>Not costed</h2><ul>`); err != nil {
				return err
			}
			for _, reason := range data.Skipped {
				if _, err := fmt.Fprintf(w, `<li>%s</li>`, templ.EscapeString(reason)); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</ul></section>`); err != nil {
				return err
			}
		}
		if len(data.Recommendations) == 0 {
			_, err := io.WriteString(w, `<p class="unpriced">No price recommendation: the recipe has no cost per portion.</p></article>`)
			return err
		}
		if _, err := io.WriteString(w, `<h2>Recommended prices</h2>`); err != nil {
			return err
		}
		priceHeaders := []string{"Strategy", "Target", "Price", "Food cost", "Gross profit", "Margin"}
		if err := components.Table(priceHeaders, data.priceRows()).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</article>`)
		return err
	})
	return layout.Layout(data.RecipeName+" · Cost report", layout.DefaultNav(), body)
}
