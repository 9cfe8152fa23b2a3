package tokenizer

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/botirk38/embedscore/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// Compile-time interface checks
var (
	_ types.TokenCounter = (*OpenAITokenizer)(nil)
	_ types.TokenCounter = (*AnthropicTokenizer)(nil)
	_ types.TokenCounter = (*GeminiTokenizer)(nil)
)

func TestOpenAITokenizer(t *testing.T) {
	tok, err := NewOpenAITokenizer()
	require.NoError(t, err)
	ctx := context.Background()

	n, err := tok.CountTokens(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = tok.CountTokens(ctx, "hello world")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	long, err := tok.CountTokens(ctx, "the quick brown fox jumped over the lazy dog")
	require.NoError(t, err)
	assert.Greater(t, long, n)
}

func TestAnthropicTokenizer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages/count_tokens", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"input_tokens": 12}`)
	}))
	defer srv.Close()

	client := anthropic.NewClient(option.WithAPIKey("k"), option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	tok := NewAnthropicTokenizer(&client, "claude-3-5-haiku-latest")

	n, err := tok.CountTokens(context.Background(), "Does Azure OpenAI support customer managed keys?")
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}

func TestAnthropicTokenizer_NoClient(t *testing.T) {
	tok := NewAnthropicTokenizer(nil, "m")
	_, err := tok.CountTokens(context.Background(), "text")
	assert.Error(t, err)

	n, err := tok.CountTokens(context.Background(), "")
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestGeminiTokenizer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "gemini-2.0-flash")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"totalTokens": 7}`)
	}))
	defer srv.Close()

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      "k",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL},
	})
	require.NoError(t, err)

	tok := NewGeminiTokenizer(client, "gemini-2.0-flash")
	n, err := tok.CountTokens(context.Background(), "Genera un resumen")
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestGeminiTokenizer_Validation(t *testing.T) {
	_, err := NewGeminiTokenizer(nil, "m").CountTokens(context.Background(), "x")
	assert.Error(t, err)
}
