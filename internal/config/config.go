// Package config provides configuration loading for datavault.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/erazemk/datavault/internal/report"
)

// Providers supported by the suggestion gateway.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config represents the complete datavault configuration.
type Config struct {
	// DB is the SQLite database path.
	DB string `yaml:"db"`
	// Addr is the HTTP listen address for serve.
	Addr string `yaml:"addr"`
	// Log is an optional log file; empty logs to stdout/stderr only.
	Log string `yaml:"log"`
	// Currency is the ISO 4217 code used to display amounts.
	Currency string `yaml:"currency"`

	Suggest SuggestConfig `yaml:"suggest"`
}

// SuggestConfig configures the completion service.
type SuggestConfig struct {
	// Provider is "openai" (any OpenAI-compatible endpoint) or "gemini".
	Provider string `yaml:"provider"`
	// BaseURL overrides the provider endpoint.
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv   string  `yaml:"api_key_env"`
	Temperature float64 `yaml:"temperature"`
	// FieldsMaxTokens and EstimationMaxTokens bound the reply length.
	FieldsMaxTokens     int `yaml:"fields_max_tokens"`
	EstimationMaxTokens int `yaml:"estimation_max_tokens"`
	// DailyLimit caps successful estimations per day.
	DailyLimit int           `yaml:"daily_limit"`
	Timeout    time.Duration `yaml:"timeout"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DB:       "datavault.db",
		Addr:     ":8080",
		Currency: report.DefaultCurrency,
		Suggest: SuggestConfig{
			Provider:            ProviderOpenAI,
			BaseURL:             "https://api.groq.com/openai/v1",
			Model:               "llama-3.2-90b-text-preview",
			APIKeyEnv:           "DATAVAULT_API_KEY",
			Temperature:         0.5,
			FieldsMaxTokens:     150,
			EstimationMaxTokens: 100,
			DailyLimit:          20,
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DB == "" {
		return fmt.Errorf("db is required")
	}
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if !report.KnownCurrency(c.Currency) {
		return fmt.Errorf("currency %q is not a known ISO 4217 code", c.Currency)
	}

	s := c.Suggest
	switch s.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("suggest.provider must be %q or %q, got %q", ProviderOpenAI, ProviderGemini, s.Provider)
	}
	if s.Model == "" {
		return fmt.Errorf("suggest.model is required")
	}
	if s.Temperature < 0 || s.Temperature > 2 {
		return fmt.Errorf("suggest.temperature must be between 0 and 2")
	}
	if s.FieldsMaxTokens <= 0 || s.EstimationMaxTokens <= 0 {
		return fmt.Errorf("suggest max tokens must be positive")
	}
	if s.DailyLimit <= 0 {
		return fmt.Errorf("suggest.daily_limit must be positive")
	}
	if s.Timeout < 0 {
		return fmt.Errorf("suggest.timeout must not be negative")
	}
	return nil
}

// APIKey returns the completion service key from the environment.
func (s SuggestConfig) APIKey() string {
	if s.APIKeyEnv == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(s.APIKeyEnv))
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
// Unknown keys are rejected.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	defer f.Close()

	config := DefaultConfig()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Load returns the defaults, or the file at path layered over them when path
// is non-empty. The result is validated.
func Load(path string) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		var err error
		if config, err = LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
