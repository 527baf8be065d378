package provider

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/juru/pkg/conversation"
	"github.com/harun/juru/pkg/tools"
)

func newTestProvider(t *testing.T) *Anthropic {
	t.Helper()
	p, err := NewAnthropic(AnthropicConfig{
		APIKey: "test-key",
		Model:  "claude-sonnet-4-5",
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)
	return p
}

func TestNewAnthropic(t *testing.T) {
	t.Run("should require an API key", func(t *testing.T) {
		_, err := NewAnthropic(AnthropicConfig{Model: "m"})
		require.Error(t, err)
	})

	t.Run("should require a model", func(t *testing.T) {
		_, err := NewAnthropic(AnthropicConfig{APIKey: "k"})
		require.Error(t, err)
	})
}

func TestToMessages(t *testing.T) {
	t.Run("should map roles and keep block order", func(t *testing.T) {
		p := newTestProvider(t)
		conv := conversation.Conversation{
			conversation.UserText("do the task"),
			{
				Role: conversation.RoleAssistant,
				Content: []conversation.Block{
					conversation.Text{Text: "looking"},
					conversation.ToolUse{ID: "tu_1", Name: "bash", Input: map[string]any{"command": "ls"}},
				},
			},
		}

		messages := p.toMessages(conv)

		require.Len(t, messages, 2)
		assert.Equal(t, anthropic.MessageParamRoleUser, messages[0].Role)
		assert.Equal(t, anthropic.MessageParamRoleAssistant, messages[1].Role)
		require.Len(t, messages[1].Content, 2)
	})

	t.Run("should drop unreadable opaque blocks instead of failing", func(t *testing.T) {
		p := newTestProvider(t)
		conv := conversation.Conversation{
			{
				Role: conversation.RoleUser,
				Content: []conversation.Block{
					conversation.Opaque{Raw: []byte("not json")},
					conversation.Text{Text: "still here"},
				},
			},
		}

		messages := p.toMessages(conv)

		require.Len(t, messages, 1)
		assert.Len(t, messages[0].Content, 1)
	})
}

func TestToolResultBlock(t *testing.T) {
	t.Run("should carry text and image entries in order", func(t *testing.T) {
		block := toolResultBlock(conversation.ToolResult{
			ToolUseID: "tu_9",
			Content: []conversation.ResultContent{
				conversation.TextEntry("clicked"),
				conversation.ImageEntry("cGluZw=="),
			},
		})

		require.NotNil(t, block.OfToolResult)
		assert.Equal(t, "tu_9", block.OfToolResult.ToolUseID)
		require.Len(t, block.OfToolResult.Content, 2)
		assert.NotNil(t, block.OfToolResult.Content[0].OfText)
		assert.NotNil(t, block.OfToolResult.Content[1].OfImage)
	})

	t.Run("should mark failed results", func(t *testing.T) {
		block := toolResultBlock(conversation.ToolResult{
			ToolUseID: "tu_9",
			IsError:   true,
			Content:   []conversation.ResultContent{conversation.TextEntry("boom")},
		})

		require.NotNil(t, block.OfToolResult)
		assert.True(t, block.OfToolResult.IsError.Value)
	})
}

func TestToTools(t *testing.T) {
	t.Run("should convert descriptors with their schemas", func(t *testing.T) {
		params := toTools([]tools.Descriptor{
			{
				Name:        "bash",
				Description: "run commands",
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"command": map[string]any{"type": "string"},
					},
					"required": []any{"command"},
				},
			},
		})

		require.Len(t, params, 1)
		require.NotNil(t, params[0].OfTool)
		assert.Equal(t, "bash", params[0].OfTool.Name)
		assert.Equal(t, []string{"command"}, params[0].OfTool.InputSchema.Required)
	})
}
