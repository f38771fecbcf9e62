// Package config manages persisted settings and API key resolution.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/glemmtal/alpbot/internal/model"
)

// EnvAPIKey is the externally supplied secret; it takes precedence over the
// persisted configuration value.
const EnvAPIKey = "OPENAI_API_KEY"

// Settings holds model generation settings.
type Settings struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Language    string  `json:"language"`
}

// RAGSettings holds retrieval settings.
type RAGSettings struct {
	PreferModelKnowledge bool `json:"prefer_model_knowledge"`
	ResultCount          int  `json:"result_count"`
}

// Config is the persisted configuration file content.
type Config struct {
	APIKeys     map[string]string `json:"api_keys"`
	Settings    Settings          `json:"settings"`
	RAGSettings RAGSettings       `json:"rag_settings"`

	path string
}

// Default returns the shipped defaults.
func Default() *Config {
	return &Config{
		APIKeys: map[string]string{"openai": ""},
		Settings: Settings{
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
			MaxTokens:   1000,
			Language:    "de",
		},
		RAGSettings: RAGSettings{
			PreferModelKnowledge: true,
			ResultCount:          5,
		},
	}
}

// Load reads the configuration from path. A missing or unreadable file
// yields the defaults; the path is kept for later Save calls.
func Load(path string) *Config {
	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return Default().withPath(path)
	}
	if cfg.APIKeys == nil {
		cfg.APIKeys = map[string]string{}
	}
	return cfg
}

func (c *Config) withPath(path string) *Config {
	c.path = path
	return c
}

// Save writes the configuration back to its file, readable only by the
// owner since it may contain an API key.
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o600)
}

// APIKey resolves the OpenAI API key: environment first, then the persisted
// value.
func (c *Config) APIKey() string {
	if key := os.Getenv(EnvAPIKey); key != "" {
		return key
	}
	return c.APIKeys["openai"]
}

// SetAPIKey stores the key in the persisted configuration.
func (c *Config) SetAPIKey(key string) error {
	if c.APIKeys == nil {
		c.APIKeys = map[string]string{}
	}
	c.APIKeys["openai"] = key
	return c.Save()
}

// Retrieval converts the persisted retrieval settings to the core type.
func (c *Config) Retrieval() model.RetrievalConfig {
	rc := model.RetrievalConfig{
		ResultCount:          c.RAGSettings.ResultCount,
		PreferModelKnowledge: c.RAGSettings.PreferModelKnowledge,
	}
	if rc.ResultCount <= 0 {
		rc.ResultCount = model.DefaultRetrievalConfig().ResultCount
	}
	return rc
}

// DefaultPath returns the configuration file location under the user's home
// directory, falling back to the working directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(home, ".alpbot", "config.json")
}
