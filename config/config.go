package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port           string
	Timezone       string
	DBPath         string
	APIBase        string
	PageSize       int
	ProductTimeout time.Duration
	LogLevel       string
	Env            string
	RequireLogin   bool
	FallbackData   bool
	SessionCookie  string

	// EnvFileErr is set when no .env file could be loaded; callers log it once
	// the logger exists.
	EnvFileErr error
}

func Load() AppConfig {
	// Load .env file if it exists
	envErr := godotenv.Load()

	get := func(k, def string) string {
		if v := os.Getenv(k); v != "" {
			return v
		}
		return def
	}
	cfg := AppConfig{
		Port:          get("PORT", "8080"),
		Timezone:      get("TZ", "America/Argentina/Buenos_Aires"),
		DBPath:        get("DB_PATH", "cooperativa.db"),
		APIBase:       get("API_BASE", "http://localhost:8000"),
		PageSize:      atoi(get("PAGE_SIZE", "25"), 25),
		LogLevel:      get("LOG_LEVEL", "info"),
		Env:           get("APP_ENV", "development"),
		RequireLogin:  get("REQUIRE_LOGIN", "true") == "true",
		FallbackData:  get("FALLBACK_DATA", "true") == "true",
		SessionCookie: get("SESSION_COOKIE", "coop_sid"),
		EnvFileErr:    envErr,
	}
	cfg.ProductTimeout = duration(get("PRODUCT_TIMEOUT", "10s"), 10*time.Second)
	return cfg
}

// Location resolves Timezone, falling back to UTC.
func (c AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func atoi(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func duration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
