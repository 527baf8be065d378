// Package config loads and validates the juru configuration from
// ~/.juru/juru.json, the environment, and flags layered on top.
package config

import (
	"fmt"
)

// Config represents the main juru configuration
type Config struct {
	// Anthropic API access
	Anthropic AnthropicConfig `json:"anthropic" mapstructure:"anthropic"`

	// Agent loop behavior
	Agent AgentConfig `json:"agent" mapstructure:"agent"`

	// Browser display the agent drives
	Display DisplayConfig `json:"display" mapstructure:"display"`

	// Persistent shell session
	Shell ShellConfig `json:"shell" mapstructure:"shell"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`

	// Working directory for the editor and shell
	Workdir string `json:"workdir" mapstructure:"workdir"`
}

// AnthropicConfig holds API access configuration
type AnthropicConfig struct {
	APIKey         string  `json:"api_key" mapstructure:"api_key"`
	Model          string  `json:"model" mapstructure:"model"`
	MaxTokens      int     `json:"max_tokens" mapstructure:"max_tokens"`
	Temperature    float64 `json:"temperature" mapstructure:"temperature"`
	ThinkingBudget int     `json:"thinking_budget" mapstructure:"thinking_budget"`
}

// AgentConfig controls the iteration loop
type AgentConfig struct {
	MaxIterations int    `json:"max_iterations" mapstructure:"max_iterations"`
	KeepImages    int    `json:"keep_images" mapstructure:"keep_images"`
	SystemPrompt  string `json:"system_prompt" mapstructure:"system_prompt"`
}

// DisplayConfig sizes the browser viewport the agent sees
type DisplayConfig struct {
	Width      int    `json:"width" mapstructure:"width"`
	Height     int    `json:"height" mapstructure:"height"`
	Headless   bool   `json:"headless" mapstructure:"headless"`
	ChromePath string `json:"chrome_path" mapstructure:"chrome_path"`
	StartURL   string `json:"start_url" mapstructure:"start_url"`
}

// ShellConfig controls the persistent bash session
type ShellConfig struct {
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	File      string `json:"file" mapstructure:"file"`
	Console   bool   `json:"console" mapstructure:"console"`
	Pretty    bool   `json:"pretty" mapstructure:"pretty"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Anthropic: AnthropicConfig{
			Model:          "claude-sonnet-4-5",
			MaxTokens:      8192,
			ThinkingBudget: 2048,
		},
		Agent: AgentConfig{
			MaxIterations: 60,
			KeepImages:    5,
		},
		Display: DisplayConfig{
			Width:    1280,
			Height:   800,
			Headless: true,
		},
		Shell: ShellConfig{
			TimeoutSeconds: 120,
		},
		Logging: LoggingConfig{
			Level:     "info",
			Console:   true,
			Pretty:    true,
			Redaction: true,
		},
	}
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	v := NewValidator()
	if err := v.ValidateAPIKey(c.Anthropic.APIKey); err != nil {
		return fmt.Errorf("anthropic api key: %w (set anthropic.api_key or ANTHROPIC_API_KEY)", err)
	}
	if err := v.ValidateModel(c.Anthropic.Model); err != nil {
		return fmt.Errorf("anthropic model: %w", err)
	}
	if c.Anthropic.MaxTokens <= 0 {
		return fmt.Errorf("anthropic max_tokens must be positive, got %d", c.Anthropic.MaxTokens)
	}
	if c.Anthropic.ThinkingBudget < 0 {
		return fmt.Errorf("anthropic thinking_budget must not be negative, got %d", c.Anthropic.ThinkingBudget)
	}
	if c.Anthropic.ThinkingBudget > 0 && c.Anthropic.ThinkingBudget >= c.Anthropic.MaxTokens {
		return fmt.Errorf("thinking_budget (%d) must be below max_tokens (%d)",
			c.Anthropic.ThinkingBudget, c.Anthropic.MaxTokens)
	}
	if c.Agent.MaxIterations <= 0 {
		return fmt.Errorf("agent max_iterations must be positive, got %d", c.Agent.MaxIterations)
	}
	if c.Agent.KeepImages < 0 {
		return fmt.Errorf("agent keep_images must not be negative, got %d", c.Agent.KeepImages)
	}
	if err := v.ValidateDisplaySize(c.Display.Width, c.Display.Height); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	if c.Shell.TimeoutSeconds <= 0 {
		return fmt.Errorf("shell timeout_seconds must be positive, got %d", c.Shell.TimeoutSeconds)
	}
	return nil
}
