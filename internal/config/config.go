// Package config loads the server configuration from a JSON file and the environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/resume-enhancer/internal/llm"
	"github.com/jonathan/resume-enhancer/internal/secrets"
)

// Defaults applied by MergeWithDefaults
const (
	DefaultPort                 = 8080
	DefaultLLMTimeoutSeconds    = 60
	DefaultSpeechTimeoutSeconds = 30
	DefaultSessionTTLMinutes    = 120
)

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults, the environment or
// CLI flags.
type Config struct {
	Port        int    `json:"port,omitempty"`
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL URL; empty keeps sessions in memory

	APIKey     string `json:"api_key,omitempty"`      // Gemini API key
	APIKeyFile string `json:"api_key_file,omitempty"` // File holding the Gemini API key, wins over api_key

	Models        map[string]string `json:"models,omitempty"`         // Model per tier: lite, standard, advanced
	LegacyParsing bool              `json:"legacy_parsing,omitempty"` // Free-text prompts with random fallbacks

	LLMTimeoutSeconds    int `json:"llm_timeout_seconds,omitempty"`
	SpeechTimeoutSeconds int `json:"speech_timeout_seconds,omitempty"`
	SessionTTLMinutes    int `json:"session_ttl_minutes,omitempty"`

	ChromePath string `json:"chrome_path,omitempty"` // Chrome binary for PDF export
	NoSandbox  bool   `json:"no_sandbox,omitempty"`  // Run Chrome without its sandbox
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

var validTiers = map[llm.ModelTier]bool{
	llm.TierLite:     true,
	llm.TierStandard: true,
	llm.TierAdvanced: true,
}

// Validate checks that the configuration has valid values
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.LLMTimeoutSeconds < 0 || c.SpeechTimeoutSeconds < 0 || c.SessionTTLMinutes < 0 {
		return fmt.Errorf("config error: timeouts and TTLs must be non-negative")
	}
	for tier, model := range c.Models {
		if !validTiers[llm.ModelTier(tier)] {
			return fmt.Errorf("config error: unknown model tier %q", tier)
		}
		if model == "" {
			return fmt.Errorf("config error: model for tier %q is empty", tier)
		}
	}
	if c.APIKeyFile != "" {
		if _, err := os.Stat(c.APIKeyFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: api key file not found: %s", c.APIKeyFile)
		}
	}
	if c.ChromePath != "" {
		if _, err := os.Stat(c.ChromePath); os.IsNotExist(err) {
			return fmt.Errorf("config error: chrome not found: %s", c.ChromePath)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults,
// then from the built-in defaults
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.APIKeyFile == "" {
		result.APIKeyFile = defaults.APIKeyFile
	}
	if result.ChromePath == "" {
		result.ChromePath = defaults.ChromePath
	}
	if len(result.Models) == 0 {
		result.Models = defaults.Models
	}

	result.Port = firstPositive(result.Port, defaults.Port, DefaultPort)
	result.LLMTimeoutSeconds = firstPositive(result.LLMTimeoutSeconds, defaults.LLMTimeoutSeconds, DefaultLLMTimeoutSeconds)
	result.SpeechTimeoutSeconds = firstPositive(result.SpeechTimeoutSeconds, defaults.SpeechTimeoutSeconds, DefaultSpeechTimeoutSeconds)
	result.SessionTTLMinutes = firstPositive(result.SessionTTLMinutes, defaults.SessionTTLMinutes, DefaultSessionTTLMinutes)

	// Bool fields cannot distinguish unset from false; true on either side wins
	result.LegacyParsing = result.LegacyParsing || defaults.LegacyParsing
	result.NoSandbox = result.NoSandbox || defaults.NoSandbox

	return result
}

// FromEnv returns the values the environment provides: GEMINI_API_KEY,
// GEMINI_API_KEY_FILE and DATABASE_URL
func FromEnv() Config {
	return Config{
		APIKey:      os.Getenv("GEMINI_API_KEY"),
		APIKeyFile:  os.Getenv("GEMINI_API_KEY_FILE"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}
}

// ResolveAPIKey returns the Gemini API key from api_key_file or api_key
func (c *Config) ResolveAPIKey() (string, error) {
	return secrets.Load(secrets.Source{Name: "Gemini API key", Value: c.APIKey, File: c.APIKeyFile})
}

// LLMConfig builds the LLM client configuration
func (c *Config) LLMConfig() *llm.Config {
	cfg := llm.DefaultConfig()
	for tier, model := range c.Models {
		cfg = cfg.WithModel(llm.ModelTier(tier), model)
	}
	if c.LLMTimeoutSeconds > 0 {
		cfg = cfg.WithTimeout(time.Duration(c.LLMTimeoutSeconds) * time.Second)
	}
	return cfg
}

// SpeechTimeout bounds a single transcription
func (c *Config) SpeechTimeout() time.Duration {
	return time.Duration(c.SpeechTimeoutSeconds) * time.Second
}

// SessionTTL is how long idle sessions are kept
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
