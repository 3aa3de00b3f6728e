// Package config provides configuration management for the Fixxy admin dashboard.
//
// This package handles loading configuration from environment variables,
// validating required settings, and providing sensible defaults for optional
// parameters. Configuration is loaded once at startup and remains immutable
// during runtime.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (highest priority)
//  2. External .env file in the working directory
//  3. Embedded .env file (fallback, included in binary)
//  4. Hard-coded defaults (lowest priority)
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAPIBaseURL is the complaint API host the dashboard talks to when
// API_BASE_URL is not set.
const DefaultAPIBaseURL = "https://fixxyapi.rajvikash-r2022cse.workers.dev"

// minSessionSecretLen is the shortest accepted cookie signing key.
const minSessionSecretLen = 32

// embeddedEnv contains the .env file embedded at build time.
//
// The embedded file only carries non-secret defaults. SESSION_SECRET must
// come from the real environment or an external .env.
//
//go:embed .env
var embeddedEnv string

// Config holds all application configuration.
type Config struct {
	// Complaint API
	APIBaseURL   string        // Base URL of the remote complaint API
	HTTPTimeout  time.Duration // API client timeout
	HTTPMaxConns int           // Maximum idle connections in pool

	// HTTP server
	Port         string // Port the dashboard listens on
	RequireLogin bool   // Gate /home and /details behind a logged-in session

	// Sessions
	SessionSecret string        // Cookie signing key (required)
	SessionMaxAge time.Duration // Session lifetime
	CookieSecure  bool          // Mark cookies Secure and enable HTTPS-only headers

	// Presentation
	DefaultLocale   string         // Date locale when the browser sends none
	DisplayTimezone string         // IANA zone name or "Local"
	Location        *time.Location // Resolved DisplayTimezone

	// Debug mode - simulates the resolve call instead of sending it
	DebugMode bool

	// Logging
	LogLevel    string
	Environment string

	// Telegram configuration (optional)
	TelegramBotToken string // Telegram bot API token
	TelegramChatID   string // Telegram chat ID for resolve notices
}

// LoadConfig loads configuration from environment variables with defaults.
//
// Loading process:
//  1. Parse embedded .env file and set as fallback environment variables
//  2. Try to load external .env file
//  3. Read environment variables, applying defaults for missing values
//  4. Validate (server-only settings are checked by ValidateServer)
func LoadConfig() (*Config, error) {
	// Embedded values only fill gaps left by the real environment.
	envMap, err := godotenv.Unmarshal(embeddedEnv)
	if err == nil {
		for k, v := range envMap {
			if os.Getenv(k) == "" {
				os.Setenv(k, v)
			}
		}
	}

	// godotenv.Load never overrides variables that are already set.
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:   strings.TrimRight(getEnvOrDefault("API_BASE_URL", DefaultAPIBaseURL), "/"),
		HTTPTimeout:  getEnvDuration("HTTP_TIMEOUT", 30*time.Second),
		HTTPMaxConns: getEnvInt("HTTP_MAX_CONNS", 100),

		Port:         getEnvOrDefault("PORT", "8080"),
		RequireLogin: getEnvBool("REQUIRE_LOGIN", true),

		SessionSecret: os.Getenv("SESSION_SECRET"),
		SessionMaxAge: getEnvDuration("SESSION_MAX_AGE", 12*time.Hour),
		CookieSecure:  getEnvBool("COOKIE_SECURE", false),

		DefaultLocale:   getEnvOrDefault("DEFAULT_LOCALE", "en-US"),
		DisplayTimezone: getEnvOrDefault("DISPLAY_TIMEZONE", "Local"),

		DebugMode: getEnvBool("DEBUG_MODE", false),

		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		Environment: getEnvOrDefault("ENV", "production"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present and values are
// sensible. It also resolves DisplayTimezone into Location.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL cannot be empty")
	}
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("API_BASE_URL must start with http:// or https://, got %q", c.APIBaseURL)
	}
	if c.HTTPMaxConns < 1 {
		return fmt.Errorf("HTTP_MAX_CONNS must be at least 1, got %d", c.HTTPMaxConns)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.HTTPTimeout)
	}

	loc, err := loadLocation(c.DisplayTimezone)
	if err != nil {
		return fmt.Errorf("DISPLAY_TIMEZONE %q: %w", c.DisplayTimezone, err)
	}
	c.Location = loc

	return nil
}

// ValidateServer runs Validate plus the checks only the HTTP server needs.
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if len(c.SessionSecret) < minSessionSecretLen {
		return fmt.Errorf("SESSION_SECRET must be at least %d bytes", minSessionSecretLen)
	}
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	return nil
}

// TelegramEnabled reports whether both Telegram settings are present.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

// Helper functions for environment variable parsing

// getEnvOrDefault returns the environment variable value or a default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as an integer or a default if not set/invalid
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvBool returns the environment variable as a bool or a default if not set/invalid.
//
// Accepts anything strconv.ParseBool does ("1", "true", "FALSE", ...).
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration returns the environment variable as a duration or a default if not set/invalid.
//
// Accepts standard Go duration strings like "5s", "10m", "1h30m"
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
