package config

import (
	"fmt"
	"strings"
)

// Validator validates configuration values
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAPIKey validates the Anthropic API key format
func (v *Validator) ValidateAPIKey(key string) error {
	if key == "" {
		return fmt.Errorf("API key cannot be empty")
	}
	if !strings.HasPrefix(key, "sk-ant-") {
		return fmt.Errorf("invalid Anthropic API key format (should start with sk-ant-)")
	}
	return nil
}

// ValidateModel validates a model name
func (v *Validator) ValidateModel(model string) error {
	if model == "" {
		return fmt.Errorf("model name cannot be empty")
	}
	if !strings.HasPrefix(model, "claude-") {
		return fmt.Errorf("unknown model %q (expected a claude- model)", model)
	}
	return nil
}

// ValidateDisplaySize validates the viewport dimensions
func (v *Validator) ValidateDisplaySize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("display size must be positive, got %dx%d", width, height)
	}
	if width > 7680 || height > 4320 {
		return fmt.Errorf("display size %dx%d is unreasonably large", width, height)
	}
	return nil
}
