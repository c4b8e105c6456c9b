package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env        string
	LogLevel   string
	Port       uint16
	HTTP       HTTPConfig
	CanadaPost CanadaPostConfig
	RateLimit  RateLimitConfig
	Metrics    MetricsConfig
}

// HTTPConfig holds server-level settings.
type HTTPConfig struct {
	AllowedOrigins  []string // CORS; empty disables cross-origin access
	ShutdownTimeout time.Duration
}

// CanadaPostConfig holds the AddressComplete credentials and lookup defaults.
type CanadaPostConfig struct {
	APIKey   string
	BaseURL  string
	Country  string // ISO 3166 alpha-3, e.g. "CAN"
	Language string // "en" or "fr"
	Timeout  time.Duration
}

// RateLimitConfig bounds how often a single client may hit the suggestion endpoint.
// AddressComplete bills per lookup, so this protects the key as much as the server.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type MetricsConfig struct {
	Namespace string
}

func NewConfig() (*Config, error) {
	// Try to load .env from current directory, then walk up to find it (max 2 levels)
	err := godotenv.Load()
	if err != nil {
		dir, _ := os.Getwd()
		found := false
		for i := 0; i < 2; i++ {
			dir = filepath.Join(dir, "..")
			if err := godotenv.Load(filepath.Join(dir, ".env")); err == nil {
				found = true
				break
			}
		}
		if !found {
			slog.Default().Warn("Warning: .env file not found, using environment variables and defaults")
		}
	}

	return configFrom(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PORT", 3000)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("CANADA_POST_API_KEY", "")
	v.SetDefault("CANADA_POST_BASE_URL", "https://ws1.postescanada-canadapost.ca")
	v.SetDefault("CANADA_POST_COUNTRY", "CAN")
	v.SetDefault("CANADA_POST_LANGUAGE", "en")
	v.SetDefault("CANADA_POST_TIMEOUT", "10s")
	v.SetDefault("RATE_LIMIT_RPS", 5.0)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("METRICS_NAMESPACE", "addresscomplete")

	return v
}

func configFrom(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Env:      v.GetString("ENV"),
		LogLevel: v.GetString("LOG_LEVEL"),
		Port:     v.GetUint16("PORT"),
		HTTP: HTTPConfig{
			AllowedOrigins:  splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		},
		CanadaPost: CanadaPostConfig{
			APIKey:   v.GetString("CANADA_POST_API_KEY"),
			BaseURL:  v.GetString("CANADA_POST_BASE_URL"),
			Country:  v.GetString("CANADA_POST_COUNTRY"),
			Language: v.GetString("CANADA_POST_LANGUAGE"),
			Timeout:  v.GetDuration("CANADA_POST_TIMEOUT"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:             v.GetInt("RATE_LIMIT_BURST"),
		},
		Metrics: MetricsConfig{
			Namespace: v.GetString("METRICS_NAMESPACE"),
		},
	}

	// Validate env
	validEnv := cfg.Env == "dev" || cfg.Env == "prod"
	if !validEnv {
		slog.Default().Warn("Invalid environment. Using default: prod", slog.String("env", cfg.Env))
		cfg.Env = "prod"
	}

	// Validate log level
	validLevel := cfg.LogLevel == "info" || cfg.LogLevel == "debug" || cfg.LogLevel == "warn" || cfg.LogLevel == "error"
	if !validLevel {
		slog.Default().Warn("Invalid log level. Using default: info", slog.String("value", cfg.LogLevel))
		cfg.LogLevel = "info"
	}

	if cfg.CanadaPost.Timeout <= 0 {
		cfg.CanadaPost.Timeout = 10 * time.Second
	}

	if cfg.HTTP.ShutdownTimeout <= 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Env == "prod" && cfg.CanadaPost.APIKey == "" {
		return nil, fmt.Errorf("CANADA_POST_API_KEY must be set in production environment")
	}

	return cfg, nil
}

// splitList parses a comma separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
