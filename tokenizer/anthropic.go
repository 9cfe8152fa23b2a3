package tokenizer

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/botirk38/embedscore/types"
)

// AnthropicTokenizer counts tokens of a single user message
type AnthropicTokenizer struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicTokenizer creates a new AnthropicTokenizer with the provided client and model
func NewAnthropicTokenizer(client *anthropic.Client, model string) *AnthropicTokenizer {
	return &AnthropicTokenizer{
		client: client,
		model:  model,
	}
}

// CountTokens calls Anthropic's token counting endpoint
func (t *AnthropicTokenizer) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	if t.client == nil {
		return 0, fmt.Errorf("anthropic client is required for token counting")
	}

	params := anthropic.MessageCountTokensParams{
		Model: anthropic.Model(t.model),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	}

	result, err := t.client.Messages.CountTokens(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("%w: anthropic token counting failed: %w", types.ErrRemoteService, err)
	}

	return int(result.InputTokens), nil
}
