package components

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

func deltaState(delta string) string {
	switch {
	case delta == "":
		return "none"
	case delta[0] == '-':
		return "negative"
	default:
		return "positive"
	}
}

// StatCard renders a labelled figure with an optional delta and caption.
func StatCard(label, value, delta, caption string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="stat-card"><p class="stat-label">%s</p><p class="stat-value">%s</p><p class="stat-delta" data-state="%s">%s</p><p class="stat-caption">%s</p></div>`,
			templ.EscapeString(label), templ.EscapeString(value), deltaState(delta), templ.EscapeString(delta), templ.EscapeString(caption))
		return err
	})
}

// Table renders a plain table. Cells are escaped.
func Table(headers []string, rows [][]string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<table class="cost-table"><thead><tr>`); err != nil {
			return err
		}
		for _, header := range headers {
			if _, err := fmt.Fprintf(w, `<th>%s</th>`, templ.EscapeString(header)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</tr></thead><tbody>`); err != nil {
			return err
		}
		for _, row := range rows {
			if _, err := io.WriteString(w, `<tr>`); err != nil {
				return err
			}
			for _, cell := range row {
				if _, err := fmt.Fprintf(w, `<td>%s</td>`, templ.EscapeString(cell)); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</tr>`); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</tbody></table>`)
		return err
	})
}
