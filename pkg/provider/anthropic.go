package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"github.com/harun/juru/pkg/conversation"
	"github.com/harun/juru/pkg/tools"
)

// AnthropicConfig configures the Anthropic-backed provider.
type AnthropicConfig struct {
	APIKey         string
	Model          string
	MaxTokens      int
	Temperature    float64
	ThinkingBudget int
	Logger         zerolog.Logger
}

// Anthropic talks to the Claude Messages API. It performs no retries;
// transport and API errors propagate to the caller.
type Anthropic struct {
	client         anthropic.Client
	model          string
	maxTokens      int
	temperature    float64
	thinkingBudget int
	logger         zerolog.Logger
}

// NewAnthropic creates a provider for the given model.
func NewAnthropic(cfg AnthropicConfig) (*Anthropic, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 8192
	}
	return &Anthropic{
		client:         anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:          cfg.Model,
		maxTokens:      cfg.MaxTokens,
		temperature:    cfg.Temperature,
		thinkingBudget: cfg.ThinkingBudget,
		logger:         cfg.Logger.With().Str("component", "provider").Logger(),
	}, nil
}

// CreateTurn sends the conversation and returns the next assistant turn.
func (p *Anthropic) CreateTurn(ctx context.Context, req Request) (*Response, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(p.maxTokens),
		Messages:  p.toMessages(req.Conversation),
		Tools:     toTools(req.Tools),
	}

	if req.System != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.System},
		}
	}

	if p.thinkingBudget > 0 {
		// Temperature must stay at its default while extended thinking is on.
		params.Thinking = anthropic.ThinkingConfigParamOfEnabled(int64(p.thinkingBudget))
	} else if p.temperature > 0 {
		params.Temperature = anthropic.Float(p.temperature)
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("messages API call failed: %w", err)
	}

	resp := &Response{
		StopReason: string(msg.StopReason),
		Usage: Usage{
			InputTokens:         msg.Usage.InputTokens,
			OutputTokens:        msg.Usage.OutputTokens,
			CacheCreationTokens: msg.Usage.CacheCreationInputTokens,
			CacheReadTokens:     msg.Usage.CacheReadInputTokens,
		},
	}

	for _, block := range msg.Content {
		parsed, err := p.fromBlock(block)
		if err != nil {
			return nil, err
		}
		resp.Blocks = append(resp.Blocks, parsed)
	}

	p.logger.Debug().
		Str("stop_reason", resp.StopReason).
		Int64("input_tokens", resp.Usage.InputTokens).
		Int64("output_tokens", resp.Usage.OutputTokens).
		Msg("Assistant turn received")

	return resp, nil
}

// toMessages converts the conversation into API message params.
func (p *Anthropic) toMessages(conv conversation.Conversation) []anthropic.MessageParam {
	messages := make([]anthropic.MessageParam, 0, len(conv))
	for _, turn := range conv {
		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(turn.Content))
		for _, block := range turn.Content {
			param, ok := p.toBlock(block)
			if ok {
				blocks = append(blocks, param)
			}
		}
		role := anthropic.MessageParamRoleUser
		if turn.Role == conversation.RoleAssistant {
			role = anthropic.MessageParamRoleAssistant
		}
		messages = append(messages, anthropic.MessageParam{
			Role:    role,
			Content: blocks,
		})
	}
	return messages
}

func (p *Anthropic) toBlock(block conversation.Block) (anthropic.ContentBlockParamUnion, bool) {
	switch b := block.(type) {
	case conversation.Text:
		return anthropic.NewTextBlock(b.Text), true
	case conversation.Thinking:
		return anthropic.NewThinkingBlock(b.Signature, b.Thinking), true
	case conversation.ToolUse:
		return anthropic.NewToolUseBlock(b.ID, b.Input, b.Name), true
	case conversation.ToolResult:
		return toolResultBlock(b), true
	case conversation.Opaque:
		return p.opaqueBlock(b)
	default:
		return anthropic.ContentBlockParamUnion{}, false
	}
}

// toolResultBlock builds a tool result carrying text and image entries in
// their recorded order.
func toolResultBlock(result conversation.ToolResult) anthropic.ContentBlockParamUnion {
	content := make([]anthropic.ToolResultBlockParamContentUnion, 0, len(result.Content))
	for _, entry := range result.Content {
		if entry.IsImage() {
			content = append(content, anthropic.ToolResultBlockParamContentUnion{
				OfImage: &anthropic.ImageBlockParam{
					Source: anthropic.ImageBlockParamSourceUnion{
						OfBase64: &anthropic.Base64ImageSourceParam{
							Data:      entry.Image,
							MediaType: anthropic.Base64ImageSourceMediaTypeImagePNG,
						},
					},
				},
			})
			continue
		}
		content = append(content, anthropic.ToolResultBlockParamContentUnion{
			OfText: &anthropic.TextBlockParam{Text: entry.Text},
		})
	}

	param := anthropic.ToolResultBlockParam{
		ToolUseID: result.ToolUseID,
		Content:   content,
	}
	if result.IsError {
		param.IsError = anthropic.Bool(true)
	}
	return anthropic.ContentBlockParamUnion{OfToolResult: &param}
}

// opaqueBlock replays a block this program never parsed. Redacted thinking
// is rebuilt explicitly; anything else round-trips through JSON.
func (p *Anthropic) opaqueBlock(block conversation.Opaque) (anthropic.ContentBlockParamUnion, bool) {
	var peek struct {
		Type string `json:"type"`
		Data string `json:"data"`
	}
	if err := json.Unmarshal(block.Raw, &peek); err != nil {
		p.logger.Warn().Err(err).Msg("Dropping unreadable opaque block")
		return anthropic.ContentBlockParamUnion{}, false
	}

	if peek.Type == "redacted_thinking" {
		return anthropic.NewRedactedThinkingBlock(peek.Data), true
	}

	var union anthropic.ContentBlockParamUnion
	if err := json.Unmarshal(block.Raw, &union); err != nil {
		p.logger.Warn().Err(err).Str("type", peek.Type).Msg("Dropping opaque block the API would reject")
		return anthropic.ContentBlockParamUnion{}, false
	}
	return union, true
}

// fromBlock converts one response block into the conversation model.
func (p *Anthropic) fromBlock(block anthropic.ContentBlockUnion) (conversation.Block, error) {
	switch b := block.AsAny().(type) {
	case anthropic.TextBlock:
		return conversation.Text{Text: b.Text}, nil
	case anthropic.ThinkingBlock:
		return conversation.Thinking{Thinking: b.Thinking, Signature: b.Signature}, nil
	case anthropic.ToolUseBlock:
		var input map[string]any
		if err := json.Unmarshal([]byte(b.JSON.Input.Raw()), &input); err != nil {
			return nil, fmt.Errorf("failed to parse tool input: %w", err)
		}
		id := b.ID
		if id == "" {
			id, _ = gonanoid.New()
		}
		return conversation.ToolUse{ID: id, Name: b.Name, Input: input}, nil
	default:
		return conversation.Opaque{Raw: json.RawMessage(block.RawJSON())}, nil
	}
}

// toTools converts tool descriptors into API tool params.
func toTools(descriptors []tools.Descriptor) []anthropic.ToolUnionParam {
	params := make([]anthropic.ToolUnionParam, 0, len(descriptors))
	for _, desc := range descriptors {
		tool := anthropic.ToolParam{
			Name: desc.Name,
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: desc.InputSchema["properties"],
			},
		}
		if desc.Description != "" {
			tool.Description = anthropic.String(desc.Description)
		}
		if required, ok := desc.InputSchema["required"].([]any); ok {
			names := make([]string, 0, len(required))
			for _, v := range required {
				if s, ok := v.(string); ok {
					names = append(names, s)
				}
			}
			tool.InputSchema.Required = names
		}
		params = append(params, anthropic.ToolUnionParam{OfTool: &tool})
	}
	return params
}
