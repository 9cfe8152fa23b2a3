// Package gemini embeds text and answers prompts with Google's Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/botirk38/embedscore/types"
	"google.golang.org/genai"
)

const (
	DefaultEmbeddingModel = "text-embedding-004"
	DefaultChatModel      = "gemini-2.0-flash"

	defaultTimeout   = 30 * time.Second
	defaultMaxTokens = 2048
)

// Config provides configuration options for the Gemini provider
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	ChatModel string
	Timeout   time.Duration
}

// Provider uses the Gemini API for embeddings and chat.
type Provider struct {
	client    *genai.Client
	model     string
	chatModel string
	timeout   time.Duration
}

// NewProvider creates a Gemini provider from an explicit configuration.
func NewProvider(ctx context.Context, config Config) (*Provider, error) {
	if config.APIKey == "" {
		return nil, errors.New("Gemini API key is required")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	p := &Provider{
		client:    client,
		model:     config.Model,
		chatModel: config.ChatModel,
		timeout:   config.Timeout,
	}
	if p.model == "" {
		p.model = DefaultEmbeddingModel
	}
	if p.chatModel == "" {
		p.chatModel = DefaultChatModel
	}
	if p.timeout <= 0 {
		p.timeout = defaultTimeout
	}
	return p, nil
}

// Client exposes the underlying client, e.g. for token counting.
func (p *Provider) Client() *genai.Client {
	return p.client
}

// ChatModel returns the model used by Complete.
func (p *Provider) ChatModel() string {
	return p.chatModel
}

// EmbedText embeds a single piece of text.
func (p *Provider) EmbedText(ctx context.Context, text string) ([]float64, error) {
	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	resp, err := p.client.Models.EmbedContent(reqCtx, p.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini embeddings: %w", types.ErrRemoteService, err)
	}
	if len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, fmt.Errorf("%w: no embedding returned by Gemini", types.ErrRemoteService)
	}

	values := resp.Embeddings[0].Values
	vec := make([]float64, len(values))
	for i, v := range values {
		vec[i] = float64(v)
	}
	return vec, nil
}

// Complete generates a single response for prompt.
func (p *Provider) Complete(ctx context.Context, system, prompt string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var cfg *genai.GenerateContentConfig
	if system != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		}
	}

	resp, err := p.client.Models.GenerateContent(reqCtx, p.chatModel, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("%w: gemini generate: %w", types.ErrRemoteService, err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: gemini: empty response", types.ErrRemoteService)
	}
	return text, nil
}

// GetMaxTokens returns the input token limit of the embedding model.
func (p *Provider) GetMaxTokens() int {
	return defaultMaxTokens
}

func (p *Provider) Close() {}
