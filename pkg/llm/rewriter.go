// Package llm holds the two model integrations: the Anthropic query rewriter
// used by the fan-out, and the OpenAI planner that picks a tool call for a
// free-text prompt. Both use the providers' official Go SDKs with retries
// disabled; a failed call is reported once and the caller decides what to
// fall back to.
package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const rewritePrompt = `Convert this music search query into an optimal Spotify search query. Focus on key elements like artist names, song titles, genres, or musical characteristics. If the prompt asks specifically to not have an artist, exclude that artist from results. We will aim for three different search results that will help bring variety into the search results. Only return the three different searches separated by commas with no spaces in between, nothing else.

Query: %s`

// RewriterConfig configures NewRewriter. BaseURL is only set in tests or when
// routing through a proxy.
type RewriterConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

// Rewriter asks Claude for three comma-separated Spotify queries.
type Rewriter struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewRewriter builds a Rewriter.
func NewRewriter(cfg RewriterConfig) *Rewriter {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Rewriter{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: int64(cfg.MaxTokens),
	}
}

// Rewrite returns the model's text answer. When the first content block is
// not text the query itself is returned unchanged.
func (r *Rewriter) Rewrite(ctx context.Context, query string) (string, error) {
	msg, err := r.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(r.model),
		MaxTokens: r.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(fmt.Sprintf(rewritePrompt, query))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: rewrite query: %w", err)
	}
	if len(msg.Content) == 0 || msg.Content[0].Type != "text" {
		return query, nil
	}
	return msg.Content[0].Text, nil
}
