// Package config provides environment-driven configuration for the CLI.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// DefaultGatewayURL is the tool-execution gateway used when
// ARCADE_BASE_URL is not set.
const DefaultGatewayURL = "https://api.arcade.dev"

// Config holds everything the agent needs from the environment. Field
// validation runs once at load time so downstream packages can assume a
// well-formed Config.
type Config struct {
	// Credentials
	ArcadeAPIKey string `validate:"required"`
	GeminiAPIKey string `validate:"required"`

	// Endpoints
	ArcadeBaseURL string `validate:"required,url"`

	// Optional PostgreSQL connection URL for run persistence. Empty
	// disables the store.
	DatabaseURL string `validate:"omitempty"`

	// Limits
	MaxEmails        int `validate:"gte=1,lte=100"`
	MaxSearchResults int `validate:"gte=1,lte=20"`
	MaxTokens        int `validate:"gte=100"`
}

// Load reads configuration from the environment and validates it. Callers
// are expected to have run godotenv.Load first when a .env file is in play.
func Load() (*Config, error) {
	cfg := &Config{
		ArcadeAPIKey:     os.Getenv("ARCADE_API_KEY"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		ArcadeBaseURL:    getenvDefault("ARCADE_BASE_URL", DefaultGatewayURL),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		MaxEmails:        getenvInt("MAX_EMAILS", 20),
		MaxSearchResults: getenvInt("MAX_SEARCH_RESULTS", 5),
		MaxTokens:        getenvInt("MAX_TOKENS", 2000),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against its struct tags and translates
// the first failure into a message naming the environment variable to fix.
func (c *Config) Validate() error {
	validate := validator.New()
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return fmt.Errorf("config validation failed: %w", err)
	}

	field := errs[0].Field()
	envName, found := envNames[field]
	if !found {
		envName = field
	}
	return fmt.Errorf("config error: %s is missing or invalid (rule %q)", envName, errs[0].Tag())
}

var envNames = map[string]string{
	"ArcadeAPIKey":     "ARCADE_API_KEY",
	"GeminiAPIKey":     "GEMINI_API_KEY",
	"ArcadeBaseURL":    "ARCADE_BASE_URL",
	"DatabaseURL":      "DATABASE_URL",
	"MaxEmails":        "MAX_EMAILS",
	"MaxSearchResults": "MAX_SEARCH_RESULTS",
	"MaxTokens":        "MAX_TOKENS",
}

func getenvDefault(key, fallback string) string {
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
