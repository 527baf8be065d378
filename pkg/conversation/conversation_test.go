package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTurnToolUses(t *testing.T) {
	t.Run("should return tool uses in emission order", func(t *testing.T) {
		turn := Turn{
			Role: RoleAssistant,
			Content: []Block{
				Thinking{Thinking: "hmm", Signature: "sig"},
				ToolUse{ID: "a", Name: "bash"},
				Text{Text: "running"},
				ToolUse{ID: "b", Name: "computer"},
			},
		}

		uses := turn.ToolUses()

		assert.Len(t, uses, 2)
		assert.Equal(t, "a", uses[0].ID)
		assert.Equal(t, "b", uses[1].ID)
	})

	t.Run("should return nil for a text-only turn", func(t *testing.T) {
		turn := UserText("hello")

		assert.Nil(t, turn.ToolUses())
	})
}

func TestConversationLastText(t *testing.T) {
	t.Run("should find the last assistant text", func(t *testing.T) {
		conv := Conversation{
			UserText("prompt"),
			{Role: RoleAssistant, Content: []Block{Text{Text: "first"}}},
			{Role: RoleUser, Content: []Block{ToolResult{ToolUseID: "x"}}},
			{Role: RoleAssistant, Content: []Block{
				ToolUse{ID: "y", Name: "bash"},
				Text{Text: "final answer"},
			}},
		}

		assert.Equal(t, "final answer", conv.LastText())
	})

	t.Run("should return empty when no assistant turn exists", func(t *testing.T) {
		conv := Conversation{UserText("prompt")}

		assert.Equal(t, "", conv.LastText())
	})
}

func TestResultContent(t *testing.T) {
	t.Run("should distinguish text from image entries", func(t *testing.T) {
		assert.False(t, TextEntry("hi").IsImage())
		assert.True(t, ImageEntry("aGk=").IsImage())
	})
}
