// Package llm provides centralized LLM configuration and client abstractions.
package llm

import (
	"maps"
	"time"
)

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for short generations: interview questions, chat replies
	TierLite ModelTier = "lite"
	// TierStandard is for scoring and structured output
	TierStandard ModelTier = "standard"
	// TierAdvanced is for long-form writing: enhancement, rewrites, portfolios
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// DefaultTemperature keeps scores and rewrites stable between calls
const DefaultTemperature float32 = 0.1

// DefaultTimeout bounds a single LLM call
const DefaultTimeout = 60 * time.Second

// Config holds the model configuration for the application
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float32
	// Timeout bounds each call. Zero means no timeout beyond the caller's context.
	Timeout time.Duration
}

// DefaultConfig returns the Gemini configuration used when nothing is overridden
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig maps lite, standard and advanced onto the 2.5 model family
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature: DefaultTemperature,
		Timeout:     DefaultTimeout,
	}
}

// fallbackTiers is tried in order when a tier has no model of its own
var fallbackTiers = []ModelTier{TierStandard, TierLite}

// GetModel returns the model for tier, falling back to the standard and then
// the lite model. It returns "" when none is configured.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	for _, fallback := range fallbackTiers {
		if model, ok := c.Models[fallback]; ok {
			return model
		}
	}
	return ""
}

// WithModel returns a copy with tier mapped to model
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	out := c.clone()
	out.Models[tier] = model
	return out
}

// WithTimeout returns a copy with a different per-call timeout
func (c *Config) WithTimeout(timeout time.Duration) *Config {
	out := c.clone()
	out.Timeout = timeout
	return out
}

func (c *Config) clone() *Config {
	out := *c
	out.Models = maps.Clone(c.Models)
	if out.Models == nil {
		out.Models = make(map[ModelTier]string)
	}
	return &out
}
