package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"gorm.io/gorm"

	"brigade/internal/costing"
	"brigade/internal/handlers"
	applog "brigade/internal/log"
	"brigade/internal/scheduler"
	"brigade/internal/store"
)

const defaultCookieName = "brigade_session"

// Config captures the runtime configuration for the HTTP server.
type Config struct {
	Addr      string
	Session   SessionConfig
	Database  *gorm.DB
	Pricing   costing.Policy
	Scheduler SchedulerConfig
}

// SessionConfig controls session behavior for the HTTP server.
type SessionConfig struct {
	Lifetime     time.Duration
	CookieName   string
	CookieDomain string
	CookieSecure bool
}

// SchedulerConfig tunes batch pricing.
type SchedulerConfig struct {
	Debounce       time.Duration
	MaxConcurrency int
}

// Server wraps an http.Server together with the pricing scheduler it serves.
type Server struct {
	config     Config
	httpServer *http.Server
	scheduler  *scheduler.Scheduler
}

// New builds a Server: session manager, kitchen store, pricing scheduler and
// the route table.
func New(cfg Config) (*Server, error) {
	ctx := context.Background()

	sessionCfg := cfg.Session
	if sessionCfg.Lifetime <= 0 {
		sessionCfg.Lifetime = 12 * time.Hour
	}
	if strings.TrimSpace(sessionCfg.CookieName) == "" {
		sessionCfg.CookieName = defaultCookieName
	}

	sessionManager := scs.New()
	sessionManager.Lifetime = sessionCfg.Lifetime
	sessionManager.Cookie.Name = sessionCfg.CookieName
	sessionManager.Cookie.Domain = sessionCfg.CookieDomain
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Secure = sessionCfg.CookieSecure

	applog.Debug(ctx, "session manager configured",
		"cookieName", sessionCfg.CookieName,
		"cookieDomain", sessionCfg.CookieDomain,
		"cookieSecure", sessionCfg.CookieSecure,
		"lifetime", sessionCfg.Lifetime.String(),
	)

	policy := cfg.Pricing
	if policy.TargetFoodCostPercent <= 0 {
		policy = costing.DefaultPolicy()
	}
	kitchen := store.New(cfg.Database)
	sched := scheduler.New(scheduler.Options{
		Fetch:          kitchen.RecipeLines,
		BatchFetch:     kitchen.BatchRecipeLines,
		Policy:         policy,
		MaxConcurrency: cfg.Scheduler.MaxConcurrency,
	})

	handlers.Configure(sessionManager, cfg.Database)
	handlers.ConfigurePricing(sched, cfg.Scheduler.Debounce)

	applog.Debug(ctx, "handler dependencies configured",
		"targetFoodCost", policy.TargetFoodCostPercent,
		"strategies", len(policy.Strategies),
		"debounce", cfg.Scheduler.Debounce.String(),
	)

	handler := withRequestID(withAccessLog(sessionManager.LoadAndSave(newRouter())))

	return &Server{
		config:    cfg,
		scheduler: sched,
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Start begins serving HTTP traffic using the underlying http.Server.
func (s *Server) Start() error {
	applog.Info(context.Background(), "server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the HTTP server with a timeout.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	applog.Info(ctx, "server shutting down", "inflightPricing", s.scheduler.InFlight())
	handlers.ConfigurePricing(nil, 0)
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the configured HTTP handler, enabling integration tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
