// Package providers builds embedding, chat and token-counting clients from
// the shared configuration record.
package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/botirk38/embedscore/config"
	"github.com/botirk38/embedscore/providers/anthropic"
	"github.com/botirk38/embedscore/providers/gemini"
	"github.com/botirk38/embedscore/providers/openai"
	"github.com/botirk38/embedscore/tokenizer"
	"github.com/botirk38/embedscore/types"
)

var ErrUnsupportedProvider = errors.New("unsupported provider")

func openAIConfig(cfg config.Config, p types.ProviderType) openai.OpenAIConfig {
	if p == types.ProviderAzure {
		return openai.OpenAIConfig{
			APIKey:          cfg.Azure.APIKey,
			Model:           cfg.Azure.EmbeddingDeployment,
			ChatModel:       cfg.Azure.ChatDeployment,
			AzureEndpoint:   cfg.Azure.Endpoint,
			AzureAPIVersion: cfg.Azure.APIVersion,
			Timeout:         cfg.Timeout,
		}
	}
	return openai.OpenAIConfig{
		APIKey:    cfg.OpenAI.APIKey,
		BaseURL:   cfg.OpenAI.BaseURL,
		OrgID:     cfg.OpenAI.OrgID,
		Model:     cfg.OpenAI.EmbeddingModel,
		ChatModel: cfg.OpenAI.ChatModel,
		Timeout:   cfg.Timeout,
	}
}

func geminiConfig(cfg config.Config) gemini.Config {
	return gemini.Config{
		APIKey:    cfg.Gemini.APIKey,
		Model:     cfg.Gemini.EmbeddingModel,
		ChatModel: cfg.Gemini.ChatModel,
		Timeout:   cfg.Timeout,
	}
}

func anthropicConfig(cfg config.Config) anthropic.Config {
	return anthropic.Config{
		APIKey:    cfg.Anthropic.APIKey,
		ChatModel: cfg.Anthropic.ChatModel,
		MaxTokens: cfg.Anthropic.MaxTokens,
		Timeout:   cfg.Timeout,
	}
}

// NewEmbeddingProvider creates the embedding provider selected by
// cfg.EmbeddingProvider.
func NewEmbeddingProvider(ctx context.Context, cfg config.Config) (types.EmbeddingProvider, error) {
	if err := cfg.RequireEmbedding(); err != nil {
		return nil, err
	}
	switch p := types.ProviderType(cfg.EmbeddingProvider); p {
	case types.ProviderOpenAI, types.ProviderAzure:
		return openai.NewOpenAIProvider(openAIConfig(cfg, p))
	case types.ProviderGemini:
		return gemini.NewProvider(ctx, geminiConfig(cfg))
	default:
		return nil, fmt.Errorf("%w for embeddings: %q", ErrUnsupportedProvider, cfg.EmbeddingProvider)
	}
}

// NewChatProvider creates the chat provider selected by cfg.ChatProvider.
func NewChatProvider(ctx context.Context, cfg config.Config) (types.ChatProvider, error) {
	if err := cfg.RequireChat(); err != nil {
		return nil, err
	}
	switch p := types.ProviderType(cfg.ChatProvider); p {
	case types.ProviderOpenAI, types.ProviderAzure:
		return openai.NewOpenAIProvider(openAIConfig(cfg, p))
	case types.ProviderGemini:
		return gemini.NewProvider(ctx, geminiConfig(cfg))
	case types.ProviderAnthropic:
		return anthropic.NewProvider(anthropicConfig(cfg))
	default:
		return nil, fmt.Errorf("%w for chat: %q", ErrUnsupportedProvider, cfg.ChatProvider)
	}
}

// NewTokenCounter returns the token counter for cfg.ChatProvider. OpenAI and
// Azure count locally with tiktoken and need no credentials; Gemini and
// Anthropic call their token counting APIs.
func NewTokenCounter(ctx context.Context, cfg config.Config) (types.TokenCounter, error) {
	switch types.ProviderType(cfg.ChatProvider) {
	case types.ProviderOpenAI, types.ProviderAzure:
		t, err := tokenizer.NewOpenAITokenizer()
		if err != nil {
			return nil, err
		}
		return t, nil
	case types.ProviderGemini:
		if err := cfg.RequireChat(); err != nil {
			return nil, err
		}
		p, err := gemini.NewProvider(ctx, geminiConfig(cfg))
		if err != nil {
			return nil, err
		}
		return tokenizer.NewGeminiTokenizer(p.Client(), p.ChatModel()), nil
	case types.ProviderAnthropic:
		if err := cfg.RequireChat(); err != nil {
			return nil, err
		}
		p, err := anthropic.NewProvider(anthropicConfig(cfg))
		if err != nil {
			return nil, err
		}
		return tokenizer.NewAnthropicTokenizer(p.Client(), p.ChatModel()), nil
	default:
		return nil, fmt.Errorf("%w for token counting: %q", ErrUnsupportedProvider, cfg.ChatProvider)
	}
}
