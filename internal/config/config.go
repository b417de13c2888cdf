package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config is the storefront CLI configuration, read from environment
// variables with development defaults.
type Config struct {
	APIBaseURL     string
	GatewayBaseURL string
	TokenFile      string
	HTTPTimeout    time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads the CLI configuration. The payment gateway defaults to the
// widget endpoints the stub server exposes.
func Load() Config {
	base := getEnv("STOREFRONT_API_URL", "http://localhost:8080")
	return Config{
		APIBaseURL:     base,
		GatewayBaseURL: getEnv("STOREFRONT_GATEWAY_URL", base),
		TokenFile:      getEnv("STOREFRONT_TOKEN_FILE", defaultTokenFile()),
		HTTPTimeout:    getDuration("HTTP_TIMEOUT", 30*time.Second),
		RateLimitRPS:   getFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getInt("RATE_LIMIT_BURST", 40),
	}
}

// StubConfig configures the stub server binary.
type StubConfig struct {
	Port      string
	Env       string
	JWTSecret string
	JWTExpiry time.Duration
	Seed      bool
}

// LoadStub reads the stub server configuration.
func LoadStub() StubConfig {
	cfg := StubConfig{
		Port:      getEnv("PORT", "8080"),
		Env:       getEnv("ENV", "development"),
		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		JWTExpiry: getDuration("JWT_EXPIRY", 24*time.Hour),
		Seed:      getBool("SEED_DEMO_DATA", true),
	}

	if cfg.Env == "production" && cfg.JWTSecret == "dev-secret-change-in-production" {
		slog.Error("JWT_SECRET must be set in production environment")
		os.Exit(1)
	}

	return cfg
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".storefront/token"
	}
	return filepath.Join(home, ".storefront", "token")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		slog.Warn("invalid duration, using default", "key", key, "value", v)
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		slog.Warn("invalid number, using default", "key", key, "value", v)
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		slog.Warn("invalid number, using default", "key", key, "value", v)
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		slog.Warn("invalid boolean, using default", "key", key, "value", v)
	}
	return fallback
}
