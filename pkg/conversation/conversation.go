// Package conversation defines the turn-based message model exchanged with
// the model provider, and the pruning transform that bounds how many
// screenshots the history retains.
package conversation

import "encoding/json"

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Conversation is an ordered sequence of turns. It is append-only during a
// run and owned by the driver.
type Conversation []Turn

// Turn is a single message with an ordered list of content blocks. Block
// order is significant and must survive transmission.
type Turn struct {
	Role    Role    `json:"role"`
	Content []Block `json:"content"`
}

// Block is one discrete unit of turn content. The set of implementations is
// closed: Text, Thinking, ToolUse, ToolResult, and Opaque for anything the
// provider emits that this program does not interpret.
type Block interface {
	BlockType() string
}

// Text is plain assistant or user text.
type Text struct {
	Text string `json:"text"`
}

// Thinking is a reasoning trace with the provider's opaque signature. The
// signature must be echoed back unmodified for the block to remain valid.
type Thinking struct {
	Thinking  string `json:"thinking"`
	Signature string `json:"signature"`
}

// ToolUse is a request from the model to invoke a named tool.
type ToolUse struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Input map[string]any `json:"input"`
}

// ToolResult answers a ToolUse block from the preceding assistant turn.
type ToolResult struct {
	ToolUseID string          `json:"tool_use_id"`
	IsError   bool            `json:"is_error"`
	Content   []ResultContent `json:"content"`
}

// Opaque carries a content block this program does not parse. It is kept in
// history verbatim so the provider can see it again on later calls.
type Opaque struct {
	Raw json.RawMessage `json:"raw"`
}

func (Text) BlockType() string       { return "text" }
func (Thinking) BlockType() string   { return "thinking" }
func (ToolUse) BlockType() string    { return "tool_use" }
func (ToolResult) BlockType() string { return "tool_result" }
func (Opaque) BlockType() string     { return "opaque" }

// ResultContent is one entry inside a tool result: either text or a
// base64-encoded PNG still frame. Exactly one field is set.
type ResultContent struct {
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}

// IsImage reports whether the entry carries an image.
func (c ResultContent) IsImage() bool {
	return c.Image != ""
}

// TextEntry builds a text result entry.
func TextEntry(text string) ResultContent {
	return ResultContent{Text: text}
}

// ImageEntry builds an image result entry from base64-encoded PNG data.
func ImageEntry(data string) ResultContent {
	return ResultContent{Image: data}
}

// UserText builds a user turn containing a single text block.
func UserText(text string) Turn {
	return Turn{Role: RoleUser, Content: []Block{Text{Text: text}}}
}

// ToolUses returns the tool-use blocks of a turn in emission order.
func (t Turn) ToolUses() []ToolUse {
	var uses []ToolUse
	for _, block := range t.Content {
		if use, ok := block.(ToolUse); ok {
			uses = append(uses, use)
		}
	}
	return uses
}

// LastText returns the text of the last text block in the last assistant
// turn, or "" when no assistant text exists.
func (c Conversation) LastText() string {
	for i := len(c) - 1; i >= 0; i-- {
		if c[i].Role != RoleAssistant {
			continue
		}
		for j := len(c[i].Content) - 1; j >= 0; j-- {
			if text, ok := c[i].Content[j].(Text); ok {
				return text.Text
			}
		}
	}
	return ""
}

// CountImages counts image entries across all tool-result blocks.
func (c Conversation) CountImages() int {
	total := 0
	for _, turn := range c {
		for _, block := range turn.Content {
			result, ok := block.(ToolResult)
			if !ok {
				continue
			}
			for _, entry := range result.Content {
				if entry.IsImage() {
					total++
				}
			}
		}
	}
	return total
}
