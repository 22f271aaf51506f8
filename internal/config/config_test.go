package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("ARCADE_API_KEY", "arc_test_key")
	t.Setenv("GEMINI_API_KEY", "gem_test_key")
}

func TestLoad_DefaultsApplied(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ARCADE_BASE_URL", "")
	t.Setenv("MAX_EMAILS", "")
	t.Setenv("MAX_TOKENS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultGatewayURL, cfg.ArcadeBaseURL)
	assert.Equal(t, 20, cfg.MaxEmails)
	assert.Equal(t, 5, cfg.MaxSearchResults)
	assert.Equal(t, 2000, cfg.MaxTokens)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ARCADE_BASE_URL", "https://gateway.internal.test")
	t.Setenv("DATABASE_URL", "postgres://localhost/prep")
	t.Setenv("MAX_EMAILS", "40")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://gateway.internal.test", cfg.ArcadeBaseURL)
	assert.Equal(t, "postgres://localhost/prep", cfg.DatabaseURL)
	assert.Equal(t, 40, cfg.MaxEmails)
}

func TestLoad_MissingArcadeKey(t *testing.T) {
	t.Setenv("ARCADE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gem_test_key")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ARCADE_API_KEY")
}

func TestLoad_MissingGeminiKey(t *testing.T) {
	t.Setenv("ARCADE_API_KEY", "arc_test_key")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestLoad_MalformedIntFallsBack(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MAX_EMAILS", "lots")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.MaxEmails)
}

func TestValidate_OutOfRangeLimit(t *testing.T) {
	cfg := &Config{
		ArcadeAPIKey:     "k",
		GeminiAPIKey:     "k",
		ArcadeBaseURL:    DefaultGatewayURL,
		MaxEmails:        500,
		MaxSearchResults: 5,
		MaxTokens:        2000,
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_EMAILS")
}
