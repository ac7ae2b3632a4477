// Package config loads application settings from the environment, with
// optional .env file support. Settings are constructed once per run and
// passed down explicitly; nothing in this package holds global state.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Settings holds every tunable for one scraper run.
type Settings struct {
	// Database
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBURL      string // overrides the host/port fields when set

	// HTML cache
	CacheTTL time.Duration

	// AERC source
	AERCBaseURL     string
	AERCCalendarURL string

	// LLM address enrichment (optional; empty key disables it)
	LLMAPIKey     string
	LLMModel      string
	LLMMaxRetries int
	LLMRetryDelay time.Duration

	LogLevel string
}

// Load reads settings from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() *Settings {
	_ = godotenv.Load()

	return &Settings{
		DBHost:     getenv("DB_HOST", "localhost"),
		DBPort:     getenvInt("DB_PORT", 5432),
		DBName:     getenv("DB_NAME", "trailblaze"),
		DBUser:     getenv("DB_USER", "postgres"),
		DBPassword: getenv("DB_PASSWORD", ""),
		DBURL:      getenv("DATABASE_URL", ""),

		CacheTTL: time.Duration(getenvInt("CACHE_TTL", 86400)) * time.Second,

		AERCBaseURL:     getenv("AERC_BASE_URL", "https://aerc.org/wp-admin/admin-ajax.php"),
		AERCCalendarURL: getenv("AERC_CALENDAR_URL", "https://aerc.org/calendar"),

		LLMAPIKey:     getenv("LLM_API_KEY", ""),
		LLMModel:      getenv("LLM_MODEL", "gpt-4o-mini"),
		LLMMaxRetries: getenvInt("LLM_MAX_RETRIES", 3),
		LLMRetryDelay: time.Duration(getenvInt("LLM_RETRY_DELAY_SECONDS", 2)) * time.Second,

		LogLevel: getenv("LOG_LEVEL", "info"),
	}
}

// DSN returns the Postgres connection string, preferring DATABASE_URL when
// configured.
func (s *Settings) DSN() string {
	if s.DBURL != "" {
		return s.DBURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		url.QueryEscape(s.DBUser), url.QueryEscape(s.DBPassword),
		s.DBHost, s.DBPort, s.DBName)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
