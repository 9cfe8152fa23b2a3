package types

import (
	"context"
	"errors"
	"time"
)

// ErrRemoteService wraps every failure returned by a hosted model API.
var ErrRemoteService = errors.New("remote service error")

// Record is a stored embedding with the text it was produced from.
type Record struct {
	ID     string    `json:"id"`
	Text   string    `json:"text,omitempty"`
	Vector []float64 `json:"vector"`
}

// VectorStore defines the interface for the storage backends of a collection.
// Implementations must be safe for concurrent use.
type VectorStore interface {
	// Set stores or replaces a record. Replacing moves it to the end of Keys.
	Set(ctx context.Context, rec Record) error

	// Get retrieves a record by id
	Get(ctx context.Context, id string) (Record, bool, error)

	// Delete removes a record by id
	Delete(ctx context.Context, id string) error

	// Contains checks if an id exists without retrieving the record
	Contains(ctx context.Context, id string) (bool, error)

	// Flush removes all records
	Flush(ctx context.Context) error

	// Len returns the number of records
	Len(ctx context.Context) (int, error)

	// Keys returns all ids in write order, oldest first
	Keys(ctx context.Context) ([]string, error)

	// Close releases the backend's resources
	Close() error
}

// BackendConfig provides configuration options for backends
type BackendConfig struct {
	// For in-memory stores
	Capacity int

	// For Redis
	ConnectionString string
	Username         string
	Password         string
	Database         int
	Prefix           string
	DialTimeout      time.Duration
}

// BackendType represents the type of vector store backend
type BackendType string

const (
	BackendLRU   BackendType = "lru"
	BackendRedis BackendType = "redis"
)

// EmbeddingProvider defines the interface all embedding providers must satisfy.
type EmbeddingProvider interface {
	// EmbedText turns a piece of text into its embedding vector.
	EmbedText(ctx context.Context, text string) ([]float64, error)
	// Close frees any resources held by the provider.
	Close()
}

// ChatProvider generates text from a system instruction and a user prompt.
type ChatProvider interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
	Close()
}

// TokenCounter counts the tokens a model would see for text.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}

// ProviderType represents a hosted model vendor
type ProviderType string

const (
	ProviderOpenAI    ProviderType = "openai"
	ProviderAzure     ProviderType = "azure"
	ProviderGemini    ProviderType = "gemini"
	ProviderAnthropic ProviderType = "anthropic"
)
