// Package chunker splits text that exceeds an embedding model's input limit
// into token windows that can be embedded one at a time.
package chunker

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidChunkSize    = errors.New("chunk size must be positive")
	ErrChunkSizeExceedsMax = errors.New("chunk size cannot exceed max tokens")
	ErrInvalidOverlap      = errors.New("overlap must be non-negative")
	ErrOverlapTooLarge     = errors.New("overlap must be less than chunk size")
	ErrInvalidMaxTokens    = errors.New("max tokens must be positive")
	ErrEmptyText           = errors.New("cannot chunk empty text")
	ErrTokenizerFailed     = errors.New("tokenization failed")
	ErrUnknownStrategy     = errors.New("unknown chunking strategy")
)

// Chunker splits text into pieces small enough to embed.
type Chunker interface {
	// ChunkText splits text into chunks. Text within ChunkSize comes back
	// as a single chunk.
	ChunkText(text string) ([]Chunk, error)

	// CountTokens counts the tokens in text.
	CountTokens(text string) (int, error)

	// Config returns the active configuration.
	Config() ChunkConfig
}

// ChunkConfig holds configuration for text chunking behavior.
type ChunkConfig struct {
	// MaxTokens is the model's input limit. Only text above it needs chunking.
	MaxTokens int

	// ChunkSize is the target number of tokens per chunk.
	ChunkSize int

	// ChunkOverlap is the number of tokens shared by consecutive chunks.
	ChunkOverlap int

	// Strategy selects the algorithm. Empty means FixedSizeOverlap.
	Strategy ChunkStrategy
}

// ChunkStrategy represents the chunking algorithm type.
type ChunkStrategy string

const (
	// FixedSizeOverlap splits text into fixed-size chunks with overlap.
	FixedSizeOverlap ChunkStrategy = "fixed_overlap"
)

// Chunk is one token window of the original text.
type Chunk struct {
	Text string

	// StartToken and EndToken delimit the window, end exclusive.
	StartToken int
	EndToken   int

	Index int
}

// Tokens returns the number of tokens in the chunk.
func (c Chunk) Tokens() int {
	return c.EndToken - c.StartToken
}

// DefaultChunkConfig returns the default chunking configuration, sized for
// OpenAI's text-embedding-3-small.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MaxTokens:    8191,
		ChunkSize:    512,
		ChunkOverlap: 50,
		Strategy:     FixedSizeOverlap,
	}
}

// ConfigForLimit returns the default configuration with MaxTokens set to a
// model's input limit, shrinking ChunkSize and ChunkOverlap to fit.
func ConfigForLimit(maxTokens int) ChunkConfig {
	cfg := DefaultChunkConfig()
	if maxTokens <= 0 {
		return cfg
	}
	cfg.MaxTokens = maxTokens
	if cfg.ChunkSize > maxTokens {
		cfg.ChunkSize = maxTokens
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = cfg.ChunkSize / 10
	}
	return cfg
}

// Validate checks if the chunk configuration is valid.
func (c ChunkConfig) Validate() error {
	if c.MaxTokens <= 0 {
		return ErrInvalidMaxTokens
	}

	if c.ChunkSize <= 0 {
		return ErrInvalidChunkSize
	}
	if c.ChunkSize > c.MaxTokens {
		return ErrChunkSizeExceedsMax
	}

	if c.ChunkOverlap < 0 {
		return ErrInvalidOverlap
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return ErrOverlapTooLarge
	}

	switch c.Strategy {
	case "", FixedSizeOverlap:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, c.Strategy)
	}

	return nil
}
