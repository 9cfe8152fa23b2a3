// Package tokenizer counts prompt tokens for the supported model vendors.
package tokenizer

import (
	"context"
	"fmt"

	"github.com/tiktoken-go/tokenizer"
)

// OpenAITokenizer counts tokens locally using tiktoken
type OpenAITokenizer struct {
	codec tokenizer.Codec
}

// NewOpenAITokenizer creates an OpenAITokenizer with the cl100k_base encoding
// used by OpenAI's chat and embedding models.
func NewOpenAITokenizer() (*OpenAITokenizer, error) {
	enc, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tokenizer: %w", err)
	}
	return &OpenAITokenizer{codec: enc}, nil
}

// CountTokens counts the tokens in text. This is a local, fast operation
// that doesn't require an API call.
func (t *OpenAITokenizer) CountTokens(_ context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	ids, _, err := t.codec.Encode(text)
	if err != nil {
		return 0, fmt.Errorf("tiktoken encode failed: %w", err)
	}
	return len(ids), nil
}
