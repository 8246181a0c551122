package infra

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv            string
	Port              string
	GeminiAPIKey      string
	GeminiModel       string
	GeminiBaseURL     string
	AllowedOrigins    []string
	MaxImageDimension int
	JobTimeout        time.Duration
	SessionTTL        time.Duration
	SweepInterval     time.Duration
	HTTPReadTimeout   time.Duration
	HTTPWriteTimeout  time.Duration
	HTTPIdleTimeout   time.Duration
	RateLimitPerMin   int
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. GEMINI_API_KEY is optional: without it the service
// runs on the synthetic provider.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-flash-image"),
		GeminiBaseURL:     getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		AllowedOrigins:    splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		MaxImageDimension: getEnvInt("MAX_IMAGE_DIMENSION", 1024),
		JobTimeout:        time.Second * time.Duration(getEnvInt("JOB_TIMEOUT_SECONDS", 120)),
		SessionTTL:        time.Minute * time.Duration(getEnvInt("SESSION_TTL_MINUTES", 60)),
		SweepInterval:     time.Minute * time.Duration(getEnvInt("SESSION_SWEEP_MINUTES", 5)),
		HTTPReadTimeout:   time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout:  time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:   time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:   getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
