package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, c.Validate())
	assert.Equal(t, "EUR", c.Currency)
	assert.Equal(t, 0.5, c.Suggest.Temperature)
	assert.Equal(t, 20, c.Suggest.DailyLimit)
	assert.Equal(t, 150, c.Suggest.FieldsMaxTokens)
	assert.Equal(t, 100, c.Suggest.EstimationMaxTokens)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no db", func(c *Config) { c.DB = "" }},
		{"no addr", func(c *Config) { c.Addr = "" }},
		{"bad currency", func(c *Config) { c.Currency = "EURO" }},
		{"bad provider", func(c *Config) { c.Suggest.Provider = "anthropic" }},
		{"no model", func(c *Config) { c.Suggest.Model = "" }},
		{"hot temperature", func(c *Config) { c.Suggest.Temperature = 3 }},
		{"zero tokens", func(c *Config) { c.Suggest.EstimationMaxTokens = 0 }},
		{"zero limit", func(c *Config) { c.Suggest.DailyLimit = 0 }},
		{"negative timeout", func(c *Config) { c.Suggest.Timeout = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoadFromFileLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datavault.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db: /var/lib/datavault/items.db
suggest:
  provider: gemini
  model: gemini-2.5-flash
  daily_limit: 5
  timeout: 30s
`), 0o644))

	c, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/datavault/items.db", c.DB)
	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, ProviderGemini, c.Suggest.Provider)
	assert.Equal(t, "gemini-2.5-flash", c.Suggest.Model)
	assert.Equal(t, 5, c.Suggest.DailyLimit)
	assert.Equal(t, 30*time.Second, c.Suggest.Timeout)
	assert.Equal(t, 0.5, c.Suggest.Temperature)
}

func TestLoadFromFileRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datavault.yaml")
	require.NoError(t, os.WriteFile(path, []byte("databse: typo.db\n"), 0o644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("currency: ZZZ\n"), 0o644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "invalid config")
}

func TestSaveToFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "datavault.yaml")
	c := DefaultConfig()
	c.Addr = "127.0.0.1:9000"
	require.NoError(t, c.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}

func TestAPIKeyFromEnvironment(t *testing.T) {
	t.Setenv("DV_TEST_KEY", "  secret  ")
	s := SuggestConfig{APIKeyEnv: "DV_TEST_KEY"}
	assert.Equal(t, "secret", s.APIKey())
	assert.Equal(t, "", SuggestConfig{}.APIKey())
}
