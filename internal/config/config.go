package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"brigade/internal/costing"
)

const defaultStrategies = "value:35,standard:30,premium:25"

// Config captures the runtime configuration for the application.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Logging   LoggingConfig
	Auth      AuthConfig
	Pricing   PricingConfig
	Scheduler SchedulerConfig
}

// ServerConfig configures the HTTP server runtime behavior.
type ServerConfig struct {
	Addr string
}

// DatabaseConfig contains the database connection settings.
type DatabaseConfig struct {
	URL             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	UseMock         bool
}

// LoggingConfig controls the global logger.
type LoggingConfig struct {
	Level string
}

// AuthConfig groups authentication settings.
type AuthConfig struct {
	Session SessionConfig
}

// SessionConfig configures the session cookie.
type SessionConfig struct {
	Lifetime     time.Duration
	CookieName   string
	CookieDomain string
	CookieSecure bool
}

// PricingConfig configures selling price recommendations.
type PricingConfig struct {
	TargetFoodCostPercent  float64
	Strategies             []costing.Strategy
	VariableCostPerPortion float64
	VariableCostPercent    float64
}

// Policy converts the configuration into a costing policy.
func (p PricingConfig) Policy() costing.Policy {
	return costing.Policy{
		TargetFoodCostPercent:  p.TargetFoodCostPercent,
		Strategies:             append([]costing.Strategy(nil), p.Strategies...),
		VariableCostPerPortion: p.VariableCostPerPortion,
		VariableCostPercent:    p.VariableCostPercent,
	}
}

// SchedulerConfig configures batch pricing.
type SchedulerConfig struct {
	Debounce       time.Duration
	MaxConcurrency int
}

// Load inspects the environment and builds a Config value. Variables from the
// file named by ENV_FILE (default .env) are applied first without overriding the
// real environment.
func Load() (Config, error) {
	if err := loadDotEnv(firstNonEmpty(os.Getenv("ENV_FILE"), ".env")); err != nil {
		return Config{}, err
	}

	cfg := Config{}

	cfg.Server = ServerConfig{
		Addr: firstNonEmpty(
			os.Getenv("SERVER_ADDR"),
			os.Getenv("ADDR"),
			":8080",
		),
	}

	cfg.Database = DatabaseConfig{
		URL: firstNonEmpty(
			os.Getenv("DATABASE_URL"),
			os.Getenv("DB_URL"),
			"",
		),
		MaxIdleConns:    parseIntWithDefault(os.Getenv("DATABASE_MAX_IDLE_CONNS"), 5),
		MaxOpenConns:    parseIntWithDefault(os.Getenv("DATABASE_MAX_OPEN_CONNS"), 25),
		ConnMaxLifetime: parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_LIFETIME"), 30*time.Minute),
		ConnMaxIdleTime: parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_IDLE_TIME"), 5*time.Minute),
		UseMock:         parseBoolWithDefault(os.Getenv("DATABASE_USE_MOCK"), false),
	}

	cfg.Logging = LoggingConfig{
		Level: strings.ToLower(firstNonEmpty(os.Getenv("LOG_LEVEL"), "info")),
	}

	cfg.Auth = AuthConfig{
		Session: SessionConfig{
			Lifetime:     parseDurationWithDefault(os.Getenv("SESSION_LIFETIME"), 12*time.Hour),
			CookieName:   firstNonEmpty(os.Getenv("SESSION_COOKIE_NAME"), "brigade_session"),
			CookieDomain: strings.TrimSpace(os.Getenv("SESSION_COOKIE_DOMAIN")),
			CookieSecure: parseBoolWithDefault(os.Getenv("SESSION_COOKIE_SECURE"), true),
		},
	}

	strategies, err := parseStrategies(firstNonEmpty(os.Getenv("PRICING_STRATEGIES"), defaultStrategies))
	if err != nil {
		return Config{}, err
	}
	cfg.Pricing = PricingConfig{
		TargetFoodCostPercent:  parseFloatWithDefault(os.Getenv("PRICING_TARGET_FOOD_COST"), costing.DefaultTargetFoodCostPercent),
		Strategies:             strategies,
		VariableCostPerPortion: parseFloatWithDefault(os.Getenv("PRICING_VARIABLE_COST_PER_PORTION"), 0),
		VariableCostPercent:    parseFloatWithDefault(os.Getenv("PRICING_VARIABLE_COST_PERCENT"), 0),
	}

	cfg.Scheduler = SchedulerConfig{
		Debounce:       parseDurationWithDefault(os.Getenv("SCHEDULER_DEBOUNCE"), 50*time.Millisecond),
		MaxConcurrency: parseIntWithDefault(os.Getenv("SCHEDULER_MAX_CONCURRENCY"), 8),
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return Config{}, fmt.Errorf("server address must not be empty")
	}
	if cfg.Pricing.TargetFoodCostPercent <= 0 || cfg.Pricing.TargetFoodCostPercent >= 100 {
		return Config{}, fmt.Errorf("target food cost must be between 0 and 100, got %v", cfg.Pricing.TargetFoodCostPercent)
	}

	return cfg, nil
}

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// parseStrategies reads "name:percent" pairs separated by commas.
func parseStrategies(value string) ([]costing.Strategy, error) {
	var strategies []costing.Strategy
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, percent, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("pricing strategy %q: want name:percent", part)
		}
		target, err := strconv.ParseFloat(strings.TrimSpace(percent), 64)
		if err != nil || target <= 0 || target >= 100 {
			return nil, fmt.Errorf("pricing strategy %q: invalid percent", part)
		}
		strategies = append(strategies, costing.Strategy{
			Name:                  strings.TrimSpace(name),
			TargetFoodCostPercent: target,
		})
	}
	return strategies, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func parseIntWithDefault(value string, def int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return parsed
}

func parseFloatWithDefault(value string, def float64) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return def
	}
	return parsed
}

func parseDurationWithDefault(value string, def time.Duration) time.Duration {
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return parsed
}

func parseBoolWithDefault(value string, def bool) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return parsed
}
