package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"brigade/internal/views/components"
	"brigade/internal/views/layout"
)

// DashboardRow is one recipe in the workspace overview.
type DashboardRow struct {
	RecipeID        uint
	Name            string
	Yield           float64
	YieldUnit       string
	CostPerPortion  float64
	Price           float64
	FoodCostPercent float64
	Priced          bool
	Problem         string
}

// DashboardData feeds the workspace overview.
type DashboardData struct {
	UserName              string
	TargetFoodCostPercent float64
	Rows                  []DashboardRow
}

// AverageFoodCost is the mean food-cost percentage of the priced rows.
func (d DashboardData) AverageFoodCost() (float64, bool) {
	var sum float64
	var n int
	for _, row := range d.Rows {
		if row.Priced {
			sum += row.FoodCostPercent
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func dashboardRows(rows []DashboardRow) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		price, foodCost := "—", "—"
		if row.Priced {
			price = FormatMoney(row.Price)
			foodCost = FormatPercent(row.FoodCostPercent)
		}
		portion := FormatMoney(row.CostPerPortion)
		if row.Problem != "" {
			portion = row.Problem
		}
		yield := fmt.Sprintf("%g %s", row.Yield, row.YieldUnit)
		out = append(out, []string{row.Name, yield, portion, price, foodCost})
	}
	return out
}

// DashboardPartial renders the overview body for HTMX swaps.
func DashboardPartial(data DashboardData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<section id="dashboard"><h1>Recipes</h1><p class="greeting">%s</p><div class="stats">`,
			templ.EscapeString(DefaultDash(data.UserName))); err != nil {
			return err
		}
		average, ok := data.AverageFoodCost()
		value, delta := "—", ""
		if ok {
			value = FormatPercent(average)
			delta = FormatPercent(average - data.TargetFoodCostPercent)
			if average-data.TargetFoodCostPercent > 0 {
				delta = "+" + delta
			}
		}
		card := components.StatCard("Average food cost", value, delta, "Against a "+FormatPercent(data.TargetFoodCostPercent)+" target")
		if err := card.Render(ctx, w); err != nil {
			return err
		}
		if err := components.StatCard("Recipes", fmt.Sprintf("%d", len(data.Rows)), "", "Costed from current ingredient prices").Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `</div>`); err != nil {
			return err
		}
		headers := []string{"Recipe", "Yield", "Cost / portion", "Recommended price", "Food cost"}
		if err := components.Table(headers, dashboardRows(data.Rows)).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<ul class="reports">`); err != nil {
			return err
		}
		for _, row := range data.Rows {
			if _, err := fmt.Fprintf(w, `<li><a href="/app/reports/recipes/%d">%s cost report</a></li>`, row.RecipeID, templ.EscapeString(row.Name)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</ul></section>`)
		return err
	})
}

// Dashboard renders the full workspace overview page.
func Dashboard(data DashboardData) templ.Component {
	return layout.Layout("Recipes · Brigade", layout.DefaultNav(), DashboardPartial(data))
}
