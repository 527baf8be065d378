// Package provider abstracts the remote reasoning service behind a single
// CreateTurn call so the driver loop can be exercised against scripted fakes.
package provider

import (
	"context"

	"github.com/harun/juru/pkg/conversation"
	"github.com/harun/juru/pkg/tools"
)

// Stop reasons reported by the reasoning service.
const (
	StopToolUse = "tool_use"
	StopEndTurn = "end_turn"
)

// Request carries everything the service needs for one assistant turn.
type Request struct {
	System       string
	Conversation conversation.Conversation
	Tools        []tools.Descriptor
}

// Response is one assistant turn plus its accounting data.
type Response struct {
	Blocks     []conversation.Block
	StopReason string
	Usage      Usage
}

// Usage is the token accounting for a single API call.
type Usage struct {
	InputTokens         int64
	OutputTokens        int64
	CacheCreationTokens int64
	CacheReadTokens     int64
}

// Provider produces assistant turns. Implementations must not retry
// internally; transport failures propagate to the caller.
type Provider interface {
	CreateTurn(ctx context.Context, req Request) (*Response, error)
}
