package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/botirk38/embedscore/types"
	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/azure"
	"github.com/openai/openai-go/v2/option"
)

const (
	DefaultOpenAIModel = string(openai.EmbeddingModelTextEmbedding3Small)
	DefaultChatModel   = string(openai.ChatModelGPT4oMini)

	DefaultAzureAPIVersion = "2024-02-15-preview"

	defaultTimeout     = 30 * time.Second
	defaultTemperature = 0.2
	defaultMaxTokens   = 8191
)

// openAIModelLimits holds the input token limit of each embedding model.
var openAIModelLimits = map[string]int{
	string(openai.EmbeddingModelTextEmbedding3Small): 8191,
	string(openai.EmbeddingModelTextEmbedding3Large): 8191,
	string(openai.EmbeddingModelTextEmbeddingAda002): 8191,
}

// OpenAIProvider uses OpenAI's API (or an Azure OpenAI deployment) to embed
// text and answer prompts.
type OpenAIProvider struct {
	client    *openai.Client
	model     string
	chatModel string
	timeout   time.Duration
}

// OpenAIConfig provides configuration options for the OpenAI provider.
// Setting AzureEndpoint switches the client to Azure OpenAI, where Model and
// ChatModel name deployments.
type OpenAIConfig struct {
	APIKey    string
	BaseURL   string
	OrgID     string
	Model     string
	ChatModel string

	AzureEndpoint   string
	AzureAPIVersion string

	Timeout time.Duration
}

// NewOpenAIProvider creates a provider from an explicit configuration.
func NewOpenAIProvider(config OpenAIConfig) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	model := config.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	chatModel := config.ChatModel
	if chatModel == "" {
		chatModel = DefaultChatModel
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	// Failures surface to the caller as-is; the SDK must not retry.
	opts := []option.RequestOption{option.WithMaxRetries(0)}

	if config.AzureEndpoint != "" {
		apiVersion := config.AzureAPIVersion
		if apiVersion == "" {
			apiVersion = DefaultAzureAPIVersion
		}
		opts = append(opts,
			azure.WithEndpoint(config.AzureEndpoint, apiVersion),
			azure.WithAPIKey(config.APIKey),
		)
	} else {
		opts = append(opts, option.WithAPIKey(config.APIKey))
		if config.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(config.BaseURL))
		}
		if config.OrgID != "" {
			opts = append(opts, option.WithOrganization(config.OrgID))
		}
	}

	client := openai.NewClient(opts...)
	return &OpenAIProvider{
		client:    &client,
		model:     model,
		chatModel: chatModel,
		timeout:   timeout,
	}, nil
}

// EmbedText sends one embedding request for text.
func (p *OpenAIProvider) EmbedText(ctx context.Context, text string) ([]float64, error) {
	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.Embeddings.New(reqCtx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(p.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(text),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: openai embeddings: %w", types.ErrRemoteService, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned by OpenAI", types.ErrRemoteService)
	}
	return resp.Data[0].Embedding, nil
}

// Complete sends a single-turn chat completion.
func (p *OpenAIProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(prompt))

	resp, err := p.client.Chat.Completions.New(reqCtx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(p.chatModel),
		Messages:    messages,
		Temperature: openai.Float(defaultTemperature),
	})
	if err != nil {
		return "", fmt.Errorf("%w: openai chat: %w", types.ErrRemoteService, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: openai: no choices returned", types.ErrRemoteService)
	}
	return resp.Choices[0].Message.Content, nil
}

// GetMaxTokens returns the input token limit of the embedding model.
// Unknown models and Azure deployment names get a safe default.
func (p *OpenAIProvider) GetMaxTokens() int {
	if limit, ok := openAIModelLimits[p.model]; ok {
		return limit
	}
	return defaultMaxTokens
}

func (p *OpenAIProvider) Close() {}
