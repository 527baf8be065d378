package driver

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/juru/pkg/conversation"
	"github.com/harun/juru/pkg/provider"
	"github.com/harun/juru/pkg/tools"
)

// scriptedProvider replays canned turns, recording each request it saw.
type scriptedProvider struct {
	turns    [][]conversation.Block
	err      error
	requests []provider.Request
}

func (s *scriptedProvider) CreateTurn(_ context.Context, req provider.Request) (*provider.Response, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	call := len(s.requests) - 1
	blocks := s.turns[len(s.turns)-1]
	if call < len(s.turns) {
		blocks = s.turns[call]
	}
	stop := provider.StopEndTurn
	for _, b := range blocks {
		if b.BlockType() == "tool_use" {
			stop = provider.StopToolUse
		}
	}
	return &provider.Response{
		Blocks:     blocks,
		StopReason: stop,
		Usage:      provider.Usage{InputTokens: 10, OutputTokens: 5},
	}, nil
}

// recordingRunner records dispatches and returns a fixed outcome.
type recordingRunner struct {
	calls   []string
	outcome tools.Outcome
	closed  bool
}

func (r *recordingRunner) Descriptors() []tools.Descriptor {
	return []tools.Descriptor{{Name: "bash", InputSchema: map[string]any{"type": "object"}}}
}

func (r *recordingRunner) Dispatch(_ context.Context, name string, _ map[string]any) tools.Outcome {
	r.calls = append(r.calls, name)
	return r.outcome
}

func (r *recordingRunner) Close() { r.closed = true }

func newTestDriver(t *testing.T, p provider.Provider, r ToolRunner, maxIterations int) *Driver {
	t.Helper()
	d, err := New(Config{
		Provider:      p,
		Tools:         r,
		System:        "be useful",
		MaxIterations: maxIterations,
		KeepImages:    5,
		Logger:        zerolog.Nop(),
	})
	require.NoError(t, err)
	return d
}

func TestRunCompletes(t *testing.T) {
	t.Run("should stop when the service requests no tools", func(t *testing.T) {
		p := &scriptedProvider{turns: [][]conversation.Block{
			{
				conversation.Text{Text: "checking"},
				conversation.ToolUse{ID: "tu_1", Name: "bash", Input: map[string]any{"command": "ls"}},
			},
			{conversation.Text{Text: "all done"}},
		}}
		runner := &recordingRunner{outcome: tools.Outcome{Output: "file.txt"}}
		d := newTestDriver(t, p, runner, 10)

		result, err := d.Run(context.Background(), "list files")

		require.NoError(t, err)
		assert.Equal(t, StateCompleted, result.State)
		assert.Equal(t, 2, result.Iterations)
		assert.Equal(t, "all done", result.FinalText)
		assert.Equal(t, []string{"bash"}, runner.calls)
		assert.True(t, runner.closed)

		// prompt, assistant, tool results, assistant
		require.Len(t, result.Conversation, 4)
		results := result.Conversation[2]
		assert.Equal(t, conversation.RoleUser, results.Role)
		tr, ok := results.Content[0].(conversation.ToolResult)
		require.True(t, ok)
		assert.Equal(t, "tu_1", tr.ToolUseID)
		assert.False(t, tr.IsError)
	})
}

func TestRunExhausts(t *testing.T) {
	t.Run("should stop at the iteration cap when tools never stop", func(t *testing.T) {
		p := &scriptedProvider{turns: [][]conversation.Block{
			{conversation.ToolUse{ID: "tu", Name: "bash", Input: map[string]any{"command": "true"}}},
		}}
		runner := &recordingRunner{outcome: tools.Outcome{Output: "ok"}}
		d := newTestDriver(t, p, runner, 3)

		result, err := d.Run(context.Background(), "loop forever")

		require.NoError(t, err)
		assert.Equal(t, StateExhausted, result.State)
		assert.Equal(t, 3, result.Iterations)
		assert.Len(t, runner.calls, 3)

		assistants := 0
		for _, turn := range result.Conversation {
			if turn.Role == conversation.RoleAssistant {
				assistants++
			}
		}
		assert.Equal(t, 3, assistants)
	})

	t.Run("should warn the service when the budget runs low", func(t *testing.T) {
		p := &scriptedProvider{turns: [][]conversation.Block{
			{conversation.ToolUse{ID: "tu", Name: "bash", Input: map[string]any{"command": "true"}}},
		}}
		d := newTestDriver(t, p, &recordingRunner{outcome: tools.Outcome{Output: "ok"}}, 2)

		result, err := d.Run(context.Background(), "task")

		require.NoError(t, err)
		// The first result turn already carries the warning: one iteration left.
		resultTurn := result.Conversation[2]
		last := resultTurn.Content[len(resultTurn.Content)-1]
		text, ok := last.(conversation.Text)
		require.True(t, ok)
		assert.Contains(t, text.Text, "1 tool-use iterations remain")
	})
}

func TestRunProviderFailure(t *testing.T) {
	t.Run("should return the accumulated conversation with the error", func(t *testing.T) {
		p := &scriptedProvider{err: errors.New("service unreachable")}
		runner := &recordingRunner{}
		d := newTestDriver(t, p, runner, 5)

		result, err := d.Run(context.Background(), "task")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "service unreachable")
		require.Len(t, result.Conversation, 1)
		assert.Equal(t, conversation.RoleUser, result.Conversation[0].Role)
		assert.True(t, runner.closed)
		assert.Empty(t, runner.calls)
	})
}

func TestRunInterrupted(t *testing.T) {
	t.Run("should stop between iterations when the context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		p := &scriptedProvider{turns: [][]conversation.Block{{conversation.Text{Text: "hi"}}}}
		d := newTestDriver(t, p, &recordingRunner{}, 5)

		result, err := d.Run(ctx, "task")

		require.NoError(t, err)
		assert.Equal(t, StateInterrupted, result.State)
		assert.Empty(t, p.requests)
	})
}

func TestRunErrorOutcome(t *testing.T) {
	t.Run("should convert failed outcomes into error tool results", func(t *testing.T) {
		p := &scriptedProvider{turns: [][]conversation.Block{
			{conversation.ToolUse{ID: "tu_1", Name: "bash", Input: map[string]any{}}},
			{conversation.Text{Text: "noted"}},
		}}
		runner := &recordingRunner{outcome: tools.Outcome{Error: "command is required"}}
		d := newTestDriver(t, p, runner, 10)

		result, err := d.Run(context.Background(), "task")

		require.NoError(t, err)
		tr, ok := result.Conversation[2].Content[0].(conversation.ToolResult)
		require.True(t, ok)
		assert.True(t, tr.IsError)
		require.Len(t, tr.Content, 1)
		assert.Equal(t, "command is required", tr.Content[0].Text)
	})
}

func TestRunPrunesImages(t *testing.T) {
	t.Run("should keep only the newest screenshots in the request history", func(t *testing.T) {
		p := &scriptedProvider{turns: [][]conversation.Block{
			{conversation.ToolUse{ID: "tu", Name: "bash", Input: map[string]any{"command": "shot"}}},
		}}
		runner := &recordingRunner{outcome: tools.Outcome{Image: "aW1n"}}
		d, err := New(Config{
			Provider:      p,
			Tools:         runner,
			MaxIterations: 6,
			KeepImages:    2,
			Logger:        zerolog.Nop(),
		})
		require.NoError(t, err)

		_, err = d.Run(context.Background(), "task")

		require.NoError(t, err)
		lastReq := p.requests[len(p.requests)-1]
		assert.LessOrEqual(t, lastReq.Conversation.CountImages(), 2)
	})
}
