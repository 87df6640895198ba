package server

import (
	"context"
	"net/http"

	"brigade/internal/handlers"
	applog "brigade/internal/log"
)

type route struct {
	pattern   string
	handler   http.HandlerFunc
	protected bool
}

func routes() []route {
	return []route{
		{pattern: "/healthz", handler: handlers.Health},
		{pattern: "/login", handler: handlers.Login},
		{pattern: "/logout", handler: handlers.Logout},
		{pattern: "/app", handler: handlers.Dashboard, protected: true},
		{pattern: "/app/api/ingredients", handler: handlers.Ingredients, protected: true},
		{pattern: "/app/api/recipes/", handler: handlers.RecipeResource, protected: true},
		{pattern: "/app/api/dishes/", handler: handlers.DishResource, protected: true},
		{pattern: "/app/api/pricing/batch", handler: handlers.BatchPricing, protected: true},
		{pattern: "/app/api/pricing/visible", handler: handlers.VisiblePricing, protected: true},
		{pattern: "/app/reports/recipes/", handler: handlers.RecipeCostReport, protected: true},
		{pattern: "/app/tools/import-ingredients", handler: handlers.ToolsImportIngredients, protected: true},
	}
}

func newRouter() http.Handler {
	mux := http.NewServeMux()
	ctx := context.Background()
	for _, rt := range routes() {
		var h http.Handler = rt.handler
		if rt.protected {
			h = handlers.RequireAuthentication(h)
		}
		mux.Handle(rt.pattern, h)
		applog.Debug(ctx, "route registered", "path", rt.pattern, "protected", rt.protected)
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/app", http.StatusSeeOther)
	})
	return mux
}
