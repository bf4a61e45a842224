package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// PlannerConfig configures NewPlanner.
type PlannerConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// ToolCall is one function call chosen by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// Plan is the model's answer: the tool calls to run, plus any plain text it
// produced instead.
type Plan struct {
	Calls []ToolCall
	Text  string
}

// ErrNoChoices is returned when the completion carries no choices.
var ErrNoChoices = errors.New("openai: completion returned no choices")

// Planner offers MCP tools to an OpenAI chat model as function tools.
type Planner struct {
	client openai.Client
	model  string
}

// NewPlanner builds a Planner.
func NewPlanner(cfg PlannerConfig) *Planner {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Planner{client: openai.NewClient(opts...), model: cfg.Model}
}

// Plan sends prompt with tools attached and returns the calls the model made.
func (p *Planner) Plan(ctx context.Context, prompt string, tools []*mcp.Tool) (*Plan, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
	}
	for _, t := range tools {
		fn, err := functionTool(t)
		if err != nil {
			return nil, err
		}
		params.Tools = append(params.Tools, fn)
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, ErrNoChoices
	}
	msg := completion.Choices[0].Message
	plan := &Plan{Text: msg.Content}
	for _, tc := range msg.ToolCalls {
		args := json.RawMessage(tc.Function.Arguments)
		if len(args) == 0 {
			args = json.RawMessage("{}")
		}
		plan.Calls = append(plan.Calls, ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: args})
	}
	return plan, nil
}

// functionTool converts an MCP tool definition into an OpenAI function tool.
// The input schema is passed through as JSON.
func functionTool(t *mcp.Tool) (openai.ChatCompletionToolParam, error) {
	params := openai.FunctionParameters{"type": "object", "properties": map[string]any{}}
	if t.InputSchema != nil {
		raw, err := json.Marshal(t.InputSchema)
		if err != nil {
			return openai.ChatCompletionToolParam{}, fmt.Errorf("encode schema for %s: %w", t.Name, err)
		}
		params = openai.FunctionParameters{}
		if err := json.Unmarshal(raw, &params); err != nil {
			return openai.ChatCompletionToolParam{}, fmt.Errorf("decode schema for %s: %w", t.Name, err)
		}
	}
	fn := openai.FunctionDefinitionParam{
		Name:       t.Name,
		Parameters: params,
	}
	if t.Description != "" {
		fn.Description = openai.String(t.Description)
	}
	return openai.ChatCompletionToolParam{Function: fn}, nil
}
