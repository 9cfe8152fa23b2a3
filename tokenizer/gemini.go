package tokenizer

import (
	"context"
	"fmt"

	"github.com/botirk38/embedscore/types"
	"google.golang.org/genai"
)

// GeminiTokenizer counts tokens for Gemini contents
type GeminiTokenizer struct {
	client *genai.Client
	model  string
}

// NewGeminiTokenizer creates a new GeminiTokenizer with the provided client and model
func NewGeminiTokenizer(client *genai.Client, model string) *GeminiTokenizer {
	return &GeminiTokenizer{
		client: client,
		model:  model,
	}
}

// CountTokens calls Gemini's token counting endpoint
func (t *GeminiTokenizer) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	if t.client == nil {
		return 0, fmt.Errorf("gemini client is required for token counting")
	}
	if t.model == "" {
		return 0, fmt.Errorf("gemini model is required for token counting")
	}

	result, err := t.client.Models.CountTokens(ctx, t.model, genai.Text(text), nil)
	if err != nil {
		return 0, fmt.Errorf("%w: gemini token counting failed: %w", types.ErrRemoteService, err)
	}

	return int(result.TotalTokens), nil
}
