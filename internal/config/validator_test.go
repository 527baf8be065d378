package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAPIKey(t *testing.T) {
	v := NewValidator()

	t.Run("should accept a well-formed key", func(t *testing.T) {
		assert.NoError(t, v.ValidateAPIKey("sk-ant-api03-abc123"))
	})

	t.Run("should reject an empty key", func(t *testing.T) {
		assert.Error(t, v.ValidateAPIKey(""))
	})

	t.Run("should reject a key with the wrong prefix", func(t *testing.T) {
		assert.Error(t, v.ValidateAPIKey("sk-openai-abc"))
	})
}

func TestValidateModel(t *testing.T) {
	v := NewValidator()

	t.Run("should accept claude models", func(t *testing.T) {
		assert.NoError(t, v.ValidateModel("claude-sonnet-4-5"))
	})

	t.Run("should reject empty and unknown models", func(t *testing.T) {
		assert.Error(t, v.ValidateModel(""))
		assert.Error(t, v.ValidateModel("gpt-4o"))
	})
}

func TestValidateDisplaySize(t *testing.T) {
	v := NewValidator()

	t.Run("should accept common sizes", func(t *testing.T) {
		assert.NoError(t, v.ValidateDisplaySize(1280, 800))
	})

	t.Run("should reject non-positive dimensions", func(t *testing.T) {
		assert.Error(t, v.ValidateDisplaySize(0, 800))
		assert.Error(t, v.ValidateDisplaySize(1280, -1))
	})

	t.Run("should reject absurd dimensions", func(t *testing.T) {
		assert.Error(t, v.ValidateDisplaySize(100000, 100000))
	})
}
