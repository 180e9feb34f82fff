package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/revendelo/backend-tienda/internal/pricing"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	UpstreamBaseURL    string
	RedisURL           string
	CORSAllowedOrigins []string
	TaxRegime          pricing.Regime
	DefaultTier        string
	VariantCacheTTL    time.Duration
	UpstreamTimeout    time.Duration
	UpstreamAttempts   int
	IdempotencyTTL     time.Duration
	RateLimitPerMin    int
	EventStream        string
	OTLPEndpoint       string
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		UpstreamBaseURL:    strings.TrimSpace(k.String("UPSTREAM_BASE_URL")),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		TaxRegime:          pricing.ParseRegime(k.String("TAX_REGIME")),
		DefaultTier:        valueOrDefault(strings.TrimSpace(k.String("DEFAULT_TIER")), "cat1"),
		VariantCacheTTL:    parseDuration(k.String("VARIANT_CACHE_TTL"), "5m"),
		UpstreamTimeout:    parseDuration(k.String("UPSTREAM_TIMEOUT"), "5s"),
		UpstreamAttempts:   parseInt(k.String("UPSTREAM_ATTEMPTS"), 2),
		IdempotencyTTL:     parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),
		RateLimitPerMin:    parseInt(k.String("RATE_LIMIT_PER_MIN"), 120),
		EventStream:        valueOrDefault(strings.TrimSpace(k.String("EVENT_STREAM")), "tienda:events"),
		OTLPEndpoint:       strings.TrimSpace(k.String("OTLP_ENDPOINT")),
	}

	if cfg.UpstreamBaseURL == "" {
		return nil, errors.New("UPSTREAM_BASE_URL is required")
	}
	validTier := false
	for _, tier := range pricing.ResellerTiers {
		if tier == cfg.DefaultTier {
			validTier = true
			break
		}
	}
	if !validTier {
		return nil, fmt.Errorf("DEFAULT_TIER %q is not a known reseller tier", cfg.DefaultTier)
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	base := strings.TrimSpace(value)
	if base == "" {
		return fallback
	}
	var n int
	if _, err := fmt.Sscanf(base, "%d", &n); err != nil || n <= 0 {
		return fallback
	}
	return n
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
