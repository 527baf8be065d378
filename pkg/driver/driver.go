// Package driver runs the agent loop: ask the reasoning service for a turn,
// execute the tools it requests, feed the results back, and repeat until the
// service stops asking or the iteration budget runs out.
package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/harun/juru/pkg/conversation"
	"github.com/harun/juru/pkg/provider"
	"github.com/harun/juru/pkg/tools"
)

// State is the terminal condition of a run.
type State string

const (
	// StateCompleted means the service finished without requesting tools.
	StateCompleted State = "completed"
	// StateExhausted means the iteration budget ran out mid-task.
	StateExhausted State = "exhausted"
	// StateInterrupted means the context was cancelled between iterations.
	StateInterrupted State = "interrupted"
)

// Iterations left when the loop starts warning the service about the budget.
const budgetWarningAt = 3

// ToolRunner executes tool calls. *tools.Dispatcher satisfies it.
type ToolRunner interface {
	Descriptors() []tools.Descriptor
	Dispatch(ctx context.Context, name string, args map[string]any) tools.Outcome
	Close()
}

// Config wires a Driver.
type Config struct {
	Provider      provider.Provider
	Tools         ToolRunner
	System        string
	MaxIterations int
	KeepImages    int
	Logger        zerolog.Logger
}

// Result is the outcome of one run.
type Result struct {
	State        State
	Conversation conversation.Conversation
	Iterations   int
	FinalText    string
	Usage        provider.Tracker
}

// Driver owns one agent session.
type Driver struct {
	provider      provider.Provider
	tools         ToolRunner
	system        string
	maxIterations int
	keepImages    int
	logger        zerolog.Logger
}

// New validates the config and builds a driver.
func New(cfg Config) (*Driver, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	if cfg.Tools == nil {
		return nil, fmt.Errorf("tool runner is required")
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 60
	}
	if cfg.KeepImages <= 0 {
		cfg.KeepImages = 5
	}
	return &Driver{
		provider:      cfg.Provider,
		tools:         cfg.Tools,
		system:        cfg.System,
		maxIterations: cfg.MaxIterations,
		keepImages:    cfg.KeepImages,
		logger:        cfg.Logger.With().Str("component", "driver").Logger(),
	}, nil
}

// Run drives the loop for one prompt. The tool runner is closed when the
// run ends, whatever the terminal state. A provider failure returns the
// conversation accumulated so far alongside the error.
func (d *Driver) Run(ctx context.Context, prompt string) (Result, error) {
	defer d.tools.Close()

	runID := uuid.New().String()
	logger := d.logger.With().Str("run_id", runID).Logger()
	logger.Info().Int("max_iterations", d.maxIterations).Msg("Run started")

	result := Result{
		State:        StateExhausted,
		Conversation: conversation.Conversation{conversation.UserText(prompt)},
	}
	descriptors := d.tools.Descriptors()

	for i := 0; i < d.maxIterations; i++ {
		if ctx.Err() != nil {
			logger.Info().Int("iteration", i).Msg("Run interrupted")
			result.State = StateInterrupted
			return d.finish(result), nil
		}

		result.Iterations = i + 1
		result.Conversation = conversation.Prune(result.Conversation, d.keepImages)

		start := time.Now()
		resp, err := d.provider.CreateTurn(ctx, provider.Request{
			System:       d.system,
			Conversation: result.Conversation,
			Tools:        descriptors,
		})
		if err != nil {
			return result, fmt.Errorf("iteration %d: %w", i+1, err)
		}
		result.Usage.Add(resp.Usage, time.Since(start))

		assistant := conversation.Turn{
			Role:    conversation.RoleAssistant,
			Content: resp.Blocks,
		}
		result.Conversation = append(result.Conversation, assistant)

		logger.Info().
			Int("iteration", i+1).
			Str("stop_reason", resp.StopReason).
			Str("usage", result.Usage.StepSummary()).
			Msg("Iteration finished")

		uses := assistant.ToolUses()
		if len(uses) == 0 {
			result.State = StateCompleted
			return d.finish(result), nil
		}

		userTurn := conversation.Turn{Role: conversation.RoleUser}
		for _, use := range uses {
			outcome := d.tools.Dispatch(ctx, use.Name, use.Input)
			userTurn.Content = append(userTurn.Content, toResult(use.ID, outcome))
		}

		if remaining := d.maxIterations - (i + 1); remaining > 0 && remaining <= budgetWarningAt {
			userTurn.Content = append(userTurn.Content, conversation.Text{
				Text: fmt.Sprintf(
					"Note: only %d tool-use iterations remain in this session. Finish up or report what is left.",
					remaining),
			})
		}

		result.Conversation = append(result.Conversation, userTurn)
	}

	logger.Warn().Int("max_iterations", d.maxIterations).Msg("Iteration budget exhausted")
	return d.finish(result), nil
}

func (d *Driver) finish(result Result) Result {
	result.FinalText = result.Conversation.LastText()
	return result
}

// toResult converts a tool outcome into the result block answering one use.
func toResult(toolUseID string, outcome tools.Outcome) conversation.ToolResult {
	result := conversation.ToolResult{ToolUseID: toolUseID}
	if outcome.IsError() {
		result.IsError = true
		result.Content = append(result.Content, conversation.TextEntry(outcome.Error))
		return result
	}
	if outcome.Output != "" {
		result.Content = append(result.Content, conversation.TextEntry(outcome.Output))
	}
	if outcome.Image != "" {
		result.Content = append(result.Content, conversation.ImageEntry(outcome.Image))
	}
	return result
}
