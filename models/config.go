// Package models defines the data structures shared across the pipeline,
// the stores, and the API surface.
package models

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration. Values come from an optional YAML
// file plus environment variables; CLI flags override both.
type Config struct {
	// DBPath is the sqlite database location. Empty means a file next to
	// the binary.
	DBPath string `yaml:"db_path"`

	// Addr is the HTTP API listen address for the serve command.
	Addr string `yaml:"addr"`

	// WatchInterval is the poll interval for the watch command. Written
	// in the YAML file as a Go duration string, e.g. "30s".
	WatchInterval time.Duration `yaml:"-"`

	// AllowedHosts are operator-owned domains that never trigger warnings.
	AllowedHosts []string `yaml:"allowed_hosts"`

	// OpenAI settings. The key is read from the environment
	// (OPENAI_API_KEY), never from the YAML file.
	OpenAIModel  string `yaml:"openai_model"`
	OpenAIAPIKey string `yaml:"-"`

	// HistoryTurns caps how many stored turns are replayed into a chat
	// request.
	HistoryTurns int `yaml:"history_turns"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Addr:          "127.0.0.1:8790",
		WatchInterval: 15 * time.Second,
		AllowedHosts:  []string{"ramseysolutions.com", "everydollar.com"},
		OpenAIModel:   "gpt-4o-mini",
		HistoryTurns:  20,
	}
}

// UnmarshalYAML decodes the config, parsing watch_interval from a
// duration string. yaml.v3 cannot decode into time.Duration directly.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	type plain Config
	if err := value.Decode((*plain)(c)); err != nil {
		return err
	}

	var aux struct {
		WatchInterval string `yaml:"watch_interval"`
	}
	if err := value.Decode(&aux); err != nil {
		return err
	}
	if aux.WatchInterval != "" {
		d, err := time.ParseDuration(aux.WatchInterval)
		if err != nil {
			return fmt.Errorf("invalid watch_interval: %w", err)
		}
		c.WatchInterval = d
	}
	return nil
}

// LoadConfig reads the YAML config at path, layered over the defaults.
// A missing file is not an error; a malformed one is.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	return cfg, nil
}
