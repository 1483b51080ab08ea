package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv              string
	Port                string
	FalKey              string
	FalBaseURL          string
	GenerateProvider    string
	PollinationsBaseURL string
	UpstreamTimeout     time.Duration
	FetchTimeout        time.Duration
	MaxFetchBytes       int64
	MaxRequestBytes     int64
	MaxImageDimension   int
	DiagnosticLimit     int
	CORSAllowedOrigins  []string
	HTTPReadTimeout     time.Duration
	HTTPWriteTimeout    time.Duration
	HTTPIdleTimeout     time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:              getEnv("APP_ENV", "development"),
		Port:                getEnv("PORT", "8080"),
		FalKey:              strings.TrimSpace(os.Getenv("FAL_KEY")),
		FalBaseURL:          getEnv("FAL_BASE_URL", "https://fal.run"),
		GenerateProvider:    strings.ToLower(getEnv("GENERATE_PROVIDER", "fal")),
		PollinationsBaseURL: getEnv("POLLINATIONS_BASE_URL", "https://image.pollinations.ai"),
		UpstreamTimeout:     time.Second * time.Duration(getEnvInt("UPSTREAM_TIMEOUT_SECONDS", 120)),
		FetchTimeout:        time.Second * time.Duration(getEnvInt("FETCH_TIMEOUT_SECONDS", 60)),
		MaxFetchBytes:       int64(getEnvInt("MAX_FETCH_BYTES", 32<<20)),
		MaxRequestBytes:     int64(getEnvInt("MAX_REQUEST_BYTES", 25<<20)),
		MaxImageDimension:   getEnvInt("MAX_IMAGE_DIMENSION", 2048),
		DiagnosticLimit:     getEnvInt("DIAGNOSTIC_PAYLOAD_LIMIT", 4096),
		CORSAllowedOrigins:  getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		HTTPReadTimeout:     time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout:    time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 200)),
		HTTPIdleTimeout:     time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.FalKey == "" {
		return nil, fmt.Errorf("FAL_KEY is required")
	}

	switch cfg.GenerateProvider {
	case "fal", "pollinations":
	default:
		return nil, fmt.Errorf("GENERATE_PROVIDER must be fal or pollinations, got %q", cfg.GenerateProvider)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
