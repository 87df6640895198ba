package layout

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// NavLink is one entry of the top navigation.
type NavLink struct {
	Label string
	Path  string
}

// DefaultNav lists the workspace sections.
func DefaultNav() []NavLink {
	return []NavLink{
		{Label: "Recipes", Path: "/app"},
		{Label: "Ingredients", Path: "/app/api/ingredients"},
		{Label: "Sign out", Path: "/logout"},
	}
}

func bodyClass(withNav bool) string {
	if withNav {
		return "min-h-screen bg-stone-50 text-stone-900"
	}
	return "min-h-screen bg-stone-100 text-stone-900 flex items-center justify-center"
}

// Layout wraps content in the HTML document shell. A nil nav renders a bare page.
func Layout(title string, nav []NavLink, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>%s</title><script src="https://unpkg.com/htmx.org@1.9.12"></script></head><body class="%s">`,
			templ.EscapeString(title), bodyClass(nav != nil)); err != nil {
			return err
		}
		if nav != nil {
			if _, err := io.WriteString(w, `<nav class="brigade-nav">`); err != nil {
				return err
			}
			for _, link := range nav {
				if _, err := fmt.Fprintf(w, `<a href="%s">%s</a>`, templ.EscapeString(link.Path), templ.EscapeString(link.Label)); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</nav>`); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `<main>`); err != nil {
			return err
		}
		if content != nil {
			if err := content.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}
