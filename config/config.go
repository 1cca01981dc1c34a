// Package config provides configuration loading and management for the
// coordination engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete engine configuration.
type Config struct {
	Model        ModelConfig        `yaml:"model"`
	Coordination CoordinationConfig `yaml:"coordination"`
	Tools        ToolsConfig        `yaml:"tools"`
	NATS         NATSConfig         `yaml:"nats"`
}

// ModelConfig configures the LLM endpoint.
type ModelConfig struct {
	// Provider selects the provider adapter ("ollama", "openai", "anthropic").
	Provider string `yaml:"provider"`
	// Endpoint is the base API URL (default: http://localhost:11434/v1).
	Endpoint string `yaml:"endpoint"`
	// Name is the model identifier (e.g., "qwen2.5-coder:32b").
	Name string `yaml:"name"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env"`
	// Temperature controls randomness (0.0-1.0, default: 0.2). A pointer
	// so an explicit 0 (deterministic) is distinguishable from unset.
	Temperature *float64 `yaml:"temperature"`
	// MaxTokens caps completion length (0 = endpoint default).
	MaxTokens int `yaml:"max_tokens"`
	// Timeout is the maximum time to wait for model responses.
	Timeout time.Duration `yaml:"timeout"`
}

// CoordinationConfig bounds the coordination loop.
type CoordinationConfig struct {
	// MaxIterations bounds loop iterations per session.
	MaxIterations int `yaml:"max_iterations"`
	// NoToolCallLimit is how many consecutive unusable replies are
	// tolerated before the session fails.
	NoToolCallLimit int `yaml:"no_tool_call_limit"`
	// ToolTimeout bounds a single tool handler invocation.
	ToolTimeout time.Duration `yaml:"tool_timeout"`
}

// ToolsConfig configures the builtin tool executors.
type ToolsConfig struct {
	// Root is the workspace root tools may touch (default: cwd).
	Root string `yaml:"root"`
	// Allowlist restricts registered tool names (empty = allow all).
	Allowlist []string `yaml:"allowlist"`
}

// NATSConfig configures session event publishing.
type NATSConfig struct {
	// URL is the NATS server URL (empty = publishing disabled).
	URL string `yaml:"url"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	temperature := 0.2
	return &Config{
		Model: ModelConfig{
			Provider:    "ollama",
			Endpoint:    "http://localhost:11434/v1",
			Name:        "qwen2.5-coder:32b",
			Temperature: &temperature,
			Timeout:     5 * time.Minute,
		},
		Coordination: CoordinationConfig{
			MaxIterations:   10,
			NoToolCallLimit: 3,
			ToolTimeout:     60 * time.Second,
		},
		Tools: ToolsConfig{
			Root:      "", // Defaults to current directory
			Allowlist: nil,
		},
		NATS: NATSConfig{
			URL: "",
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Model.Provider == "" {
		return fmt.Errorf("model.provider is required")
	}
	if c.Model.Name == "" {
		return fmt.Errorf("model.name is required")
	}
	if c.Model.Temperature != nil && (*c.Model.Temperature < 0 || *c.Model.Temperature > 1) {
		return fmt.Errorf("model.temperature must be between 0 and 1")
	}
	if c.Coordination.MaxIterations <= 0 {
		return fmt.Errorf("coordination.max_iterations must be positive")
	}
	if c.Coordination.NoToolCallLimit <= 0 {
		return fmt.Errorf("coordination.no_tool_call_limit must be positive")
	}
	return nil
}

// APIKey resolves the configured API key from the environment.
func (c *ModelConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

// Merge overlays non-zero fields from other onto c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.Model.Provider != "" {
		c.Model.Provider = other.Model.Provider
	}
	if other.Model.Endpoint != "" {
		c.Model.Endpoint = other.Model.Endpoint
	}
	if other.Model.Name != "" {
		c.Model.Name = other.Model.Name
	}
	if other.Model.APIKeyEnv != "" {
		c.Model.APIKeyEnv = other.Model.APIKeyEnv
	}
	if other.Model.Temperature != nil {
		c.Model.Temperature = other.Model.Temperature
	}
	if other.Model.MaxTokens != 0 {
		c.Model.MaxTokens = other.Model.MaxTokens
	}
	if other.Model.Timeout != 0 {
		c.Model.Timeout = other.Model.Timeout
	}
	if other.Coordination.MaxIterations != 0 {
		c.Coordination.MaxIterations = other.Coordination.MaxIterations
	}
	if other.Coordination.NoToolCallLimit != 0 {
		c.Coordination.NoToolCallLimit = other.Coordination.NoToolCallLimit
	}
	if other.Coordination.ToolTimeout != 0 {
		c.Coordination.ToolTimeout = other.Coordination.ToolTimeout
	}
	if other.Tools.Root != "" {
		c.Tools.Root = other.Tools.Root
	}
	if len(other.Tools.Allowlist) > 0 {
		c.Tools.Allowlist = other.Tools.Allowlist
	}
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
