// Package llm provides the text-generation adapter used for URL ranking and
// report synthesis.
package llm

// ModelTier represents the capability level of a model.
type ModelTier string

const (
	// TierLite is for simple tasks: URL ranking, classification.
	TierLite ModelTier = "lite"
	// TierStandard is for moderate reasoning and structured output.
	TierStandard ModelTier = "standard"
	// TierAdvanced is for the synthesis of the final prep report.
	TierAdvanced ModelTier = "advanced"
)

// Config holds the model configuration for the agent.
type Config struct {
	Models    map[ModelTier]string
	MaxTokens int
}

// DefaultConfig returns the default Gemini model mapping.
func DefaultConfig() *Config {
	return &Config{
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		MaxTokens: 2000,
	}
}

// Model returns the model name for a tier, falling back down the tier chain
// when the requested tier is not configured.
func (c *Config) Model(tier ModelTier) string {
	if m, ok := c.Models[tier]; ok {
		return m
	}
	if m, ok := c.Models[TierStandard]; ok {
		return m
	}
	if m, ok := c.Models[TierLite]; ok {
		return m
	}
	return ""
}
