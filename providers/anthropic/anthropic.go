// Package anthropic answers prompts with Anthropic's Messages API.
// Anthropic has no embeddings endpoint, so only ChatProvider is implemented.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/botirk38/embedscore/types"
)

const (
	DefaultChatModel = "claude-3-5-haiku-latest"
	DefaultMaxTokens = 1024

	defaultTimeout = 30 * time.Second
)

// Config provides configuration options for the Anthropic provider
type Config struct {
	APIKey    string
	BaseURL   string
	ChatModel string
	MaxTokens int64
	Timeout   time.Duration
}

// Provider calls the Anthropic Messages API.
type Provider struct {
	client    *anthropic.Client
	chatModel string
	maxTokens int64
	timeout   time.Duration
}

// NewProvider creates an Anthropic provider from an explicit configuration.
func NewProvider(config Config) (*Provider, error) {
	if config.APIKey == "" {
		return nil, errors.New("Anthropic API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	client := anthropic.NewClient(opts...)

	p := &Provider{
		client:    &client,
		chatModel: config.ChatModel,
		maxTokens: config.MaxTokens,
		timeout:   config.Timeout,
	}
	if p.chatModel == "" {
		p.chatModel = DefaultChatModel
	}
	if p.maxTokens <= 0 {
		p.maxTokens = DefaultMaxTokens
	}
	if p.timeout <= 0 {
		p.timeout = defaultTimeout
	}
	return p, nil
}

// Client exposes the underlying client, e.g. for token counting.
func (p *Provider) Client() *anthropic.Client {
	return p.client
}

// ChatModel returns the model used by Complete.
func (p *Provider) ChatModel() string {
	return p.chatModel
}

// Complete sends a single user message and joins the text blocks of the reply.
func (p *Provider) Complete(ctx context.Context, system, prompt string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.chatModel),
		MaxTokens: p.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := p.client.Messages.New(reqCtx, params)
	if err != nil {
		return "", fmt.Errorf("%w: anthropic messages: %w", types.ErrRemoteService, err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: anthropic: no text returned", types.ErrRemoteService)
	}
	return sb.String(), nil
}

func (p *Provider) Close() {}
