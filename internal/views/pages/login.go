package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"brigade/internal/views/layout"
)

// Login renders the full sign-in page.
func Login(message, email string) templ.Component {
	return layout.Layout("Sign in · Brigade", nil, LoginPartial(message, email))
}

// LoginPartial renders the sign-in form for HTMX swaps.
func LoginPartial(message, email string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<section id="login" class="login-card"><h1>Brigade</h1><p>Sign in to cost your kitchen.</p>`); err != nil {
			return err
		}
		if message != "" {
			if _, err := fmt.Fprintf(w, `<p class="login-message" role="alert">%s</p>`, templ.EscapeString(message)); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w,
			`<form method="post" action="/login" hx-post="/login" hx-target="#login" hx-swap="outerHTML"><label>Email<input type="email" name="email" value="%s" required></label><label>Password<input type="password" name="password" required></label><button type="submit">Sign in</button></form></section>`,
			templ.EscapeString(email))
		return err
	})
}
