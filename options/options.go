// Package options provides functional options for configuring a Collection.
package options

import (
	"context"
	"errors"
	"log/slog"

	"github.com/botirk38/embedscore/backends"
	"github.com/botirk38/embedscore/chunker"
	"github.com/botirk38/embedscore/providers/openai"
	"github.com/botirk38/embedscore/similarity"
	"github.com/botirk38/embedscore/types"
)

const DefaultConcurrency = 4

// Option represents a configuration option for a Collection
type Option func(*Config) error

// Config holds the configuration for building a Collection
type Config struct {
	Backend     types.VectorStore
	Provider    types.EmbeddingProvider
	Chunker     chunker.Chunker
	Metric      similarity.Metric
	Logger      *slog.Logger
	Concurrency int
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Metric:      similarity.DefaultMetric,
		Concurrency: DefaultConcurrency,
	}
}

// Apply applies all the given options to the config
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Backend == nil {
		return errors.New("backend is required - use WithLRUBackend, WithRedisBackend, etc.")
	}
	if c.Provider == nil {
		return errors.New("embedding provider is required - use WithOpenAIProvider, etc.")
	}
	if _, err := similarity.Lookup(c.Metric); err != nil {
		return err
	}
	return nil
}

// WithLRUBackend sets up an LRU in-memory backend
func WithLRUBackend(capacity int) Option {
	return func(cfg *Config) error {
		backend, err := backends.NewLRUBackend(types.BackendConfig{
			Capacity: capacity,
		})
		if err != nil {
			return err
		}
		cfg.Backend = backend
		return nil
	}
}

// WithRedisBackend sets up a Redis backend; keys are namespaced by prefix.
func WithRedisBackend(ctx context.Context, addr, prefix string) Option {
	return func(cfg *Config) error {
		backend, err := backends.NewRedisBackend(ctx, types.BackendConfig{
			ConnectionString: addr,
			Prefix:           prefix,
		})
		if err != nil {
			return err
		}
		cfg.Backend = backend
		return nil
	}
}

// WithCustomBackend allows using a pre-configured backend
func WithCustomBackend(backend types.VectorStore) Option {
	return func(cfg *Config) error {
		if backend == nil {
			return errors.New("backend cannot be nil")
		}
		cfg.Backend = backend
		return nil
	}
}

// WithOpenAIProvider sets up OpenAI embedding provider
func WithOpenAIProvider(apiKey string, model ...string) Option {
	return func(cfg *Config) error {
		config := openai.OpenAIConfig{
			APIKey: apiKey,
		}
		if len(model) > 0 {
			config.Model = model[0]
		}

		provider, err := openai.NewOpenAIProvider(config)
		if err != nil {
			return err
		}
		cfg.Provider = provider
		return nil
	}
}

// WithCustomProvider allows using a pre-configured embedding provider
func WithCustomProvider(provider types.EmbeddingProvider) Option {
	return func(cfg *Config) error {
		if provider == nil {
			return errors.New("provider cannot be nil")
		}
		cfg.Provider = provider
		return nil
	}
}

// WithChunker embeds long texts chunk by chunk instead of rejecting them.
func WithChunker(c chunker.Chunker) Option {
	return func(cfg *Config) error {
		if c == nil {
			return errors.New("chunker cannot be nil")
		}
		cfg.Chunker = c
		return nil
	}
}

// WithMetric selects the comparison metric by name.
func WithMetric(name string) Option {
	return func(cfg *Config) error {
		m, err := similarity.ParseMetric(name)
		if err != nil {
			return err
		}
		cfg.Metric = m
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *Config) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.Logger = logger
		return nil
	}
}

// WithConcurrency bounds the number of embedding calls in flight.
func WithConcurrency(n int) Option {
	return func(cfg *Config) error {
		if n <= 0 {
			return errors.New("concurrency must be positive")
		}
		cfg.Concurrency = n
		return nil
	}
}
