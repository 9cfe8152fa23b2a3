// Package embedscore scores texts against each other and against a stored
// collection using embeddings from a hosted model.
package embedscore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/botirk38/embedscore/chunker"
	"github.com/botirk38/embedscore/logger"
	"github.com/botirk38/embedscore/options"
	"github.com/botirk38/embedscore/similarity"
	"github.com/botirk38/embedscore/types"
)

// Collection is a set of stored embeddings that queries are ranked against.
// Records are only added explicitly; nothing is stored as a side effect of a
// query.
type Collection struct {
	backend     types.VectorStore
	provider    types.EmbeddingProvider
	chunker     chunker.Chunker
	metric      similarity.Metric
	log         *slog.Logger
	concurrency int
}

// New creates a Collection with functional options.
func New(opts ...options.Option) (*Collection, error) {
	cfg := options.NewConfig()

	if err := cfg.Apply(opts...); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c, err := NewCollection(cfg.Backend, cfg.Provider, cfg.Metric)
	if err != nil {
		return nil, err
	}
	c.chunker = cfg.Chunker
	c.concurrency = cfg.Concurrency
	if cfg.Logger != nil {
		c.log = cfg.Logger
	}
	return c, nil
}

// NewCollection creates a collection with the given backend, provider and metric.
func NewCollection(backend types.VectorStore, provider types.EmbeddingProvider, metric similarity.Metric) (*Collection, error) {
	if backend == nil {
		return nil, errors.New("backend cannot be nil")
	}
	if provider == nil {
		return nil, errors.New("provider cannot be nil")
	}
	if _, err := similarity.Lookup(metric); err != nil {
		return nil, err
	}

	return &Collection{
		backend:     backend,
		provider:    provider,
		metric:      metric,
		log:         logger.Discard(),
		concurrency: options.DefaultConcurrency,
	}, nil
}

// Metric returns the metric used by Rank and Compare.
func (c *Collection) Metric() similarity.Metric {
	return c.metric
}

// Add embeds text and stores it under id, replacing any existing record.
func (c *Collection) Add(ctx context.Context, id, text string) error {
	if id == "" {
		return fmt.Errorf("%w: id cannot be empty", similarity.ErrInvalidInput)
	}
	vec, err := EmbedDocument(ctx, c.provider, c.chunker, text)
	if err != nil {
		return err
	}
	return c.put(ctx, types.Record{ID: id, Text: text, Vector: vec})
}

// AddVector stores a pre-computed vector under id.
func (c *Collection) AddVector(ctx context.Context, id string, vec similarity.Vector) error {
	if id == "" {
		return fmt.Errorf("%w: id cannot be empty", similarity.ErrInvalidInput)
	}
	if len(vec) == 0 {
		return fmt.Errorf("%w: vector for %q is empty", similarity.ErrInvalidInput, id)
	}
	return c.put(ctx, types.Record{ID: id, Vector: vec})
}

func (c *Collection) put(ctx context.Context, rec types.Record) error {
	if err := c.backend.Set(ctx, rec); err != nil {
		return err
	}
	c.log.Debug("stored record", "id", rec.ID, "dimensions", len(rec.Vector))
	return nil
}

// Get retrieves the record stored under id, if present.
func (c *Collection) Get(ctx context.Context, id string) (types.Record, bool, error) {
	return c.backend.Get(ctx, id)
}

// Contains reports whether a record is stored under id.
func (c *Collection) Contains(ctx context.Context, id string) (bool, error) {
	return c.backend.Contains(ctx, id)
}

// Delete removes the record stored under id.
func (c *Collection) Delete(ctx context.Context, id string) error {
	return c.backend.Delete(ctx, id)
}

// Keys returns the stored ids in the order Rank reports them.
func (c *Collection) Keys(ctx context.Context) ([]string, error) {
	return c.backend.Keys(ctx)
}

// Len returns the number of stored records.
func (c *Collection) Len(ctx context.Context) (int, error) {
	return c.backend.Len(ctx)
}

// Flush removes every stored record.
func (c *Collection) Flush(ctx context.Context) error {
	return c.backend.Flush(ctx)
}

// Rank embeds query and scores it against every stored record.
func (c *Collection) Rank(ctx context.Context, query string) ([]similarity.Result, error) {
	vec, err := EmbedDocument(ctx, c.provider, c.chunker, query)
	if err != nil {
		return nil, err
	}
	return c.RankVector(ctx, vec)
}

// RankVector scores query against every stored record, in the order of Keys.
func (c *Collection) RankVector(ctx context.Context, query similarity.Vector) ([]similarity.Result, error) {
	keys, err := c.backend.Keys(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]similarity.Candidate, 0, len(keys))
	for _, key := range keys {
		rec, found, err := c.backend.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		// Deleted between Keys and Get.
		if !found {
			continue
		}
		candidates = append(candidates, similarity.Candidate{ID: rec.ID, Vector: rec.Vector})
	}

	results, err := similarity.Rank(query, candidates, c.metric)
	if err != nil {
		return nil, err
	}
	c.log.Debug("ranked collection", "candidates", len(results), "metric", c.metric)
	return results, nil
}

// Compare embeds query and candidates and scores each candidate against the
// query, without storing anything. Results use the candidate text as id and
// keep the candidates' order.
func (c *Collection) Compare(ctx context.Context, query string, candidates []string) ([]similarity.Result, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", similarity.ErrInvalidInput)
	}
	for i, text := range candidates {
		if text == "" {
			return nil, fmt.Errorf("%w: candidate %d is empty", similarity.ErrInvalidInput, i)
		}
	}

	texts := append([]string{query}, candidates...)
	var (
		vectors []similarity.Vector
		err     error
	)
	if c.chunker == nil {
		vectors, err = EmbedAll(ctx, c.provider, texts, c.concurrency)
	} else {
		vectors, err = EmbedDocuments(ctx, c.provider, c.chunker, texts, c.concurrency)
	}
	if err != nil {
		return nil, err
	}

	cands := make([]similarity.Candidate, len(candidates))
	for i, text := range candidates {
		cands[i] = similarity.Candidate{ID: text, Vector: vectors[i+1]}
	}

	c.log.Debug("comparing", "candidates", len(cands), "metric", c.metric)
	return similarity.Rank(vectors[0], cands, c.metric)
}

// Close closes the underlying backend and provider.
func (c *Collection) Close() error {
	c.provider.Close()
	return c.backend.Close()
}
