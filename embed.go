package embedscore

import (
	"context"
	"fmt"

	"github.com/botirk38/embedscore/chunker"
	"github.com/botirk38/embedscore/similarity"
	"github.com/botirk38/embedscore/types"
	"golang.org/x/sync/errgroup"
)

// EmbedAll embeds each text with its own provider call, at most concurrency
// calls at a time. Vectors come back in input order. The first failure
// cancels the remaining calls and is returned.
func EmbedAll(ctx context.Context, provider types.EmbeddingProvider, texts []string, concurrency int) ([]similarity.Vector, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	vectors := make([]similarity.Vector, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, text := range texts {
		g.Go(func() error {
			vec, err := provider.EmbedText(gctx, text)
			if err != nil {
				return fmt.Errorf("embed text %d: %w", i, err)
			}
			vectors[i] = vec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// EmbedDocuments runs EmbedDocument for each text, at most concurrency
// documents at a time. Vectors come back in input order.
func EmbedDocuments(ctx context.Context, provider types.EmbeddingProvider, c chunker.Chunker, texts []string, concurrency int) ([]similarity.Vector, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	vectors := make([]similarity.Vector, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, text := range texts {
		g.Go(func() error {
			vec, err := EmbedDocument(gctx, provider, c, text)
			if err != nil {
				return fmt.Errorf("embed document %d: %w", i, err)
			}
			vectors[i] = vec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// EmbedDocument embeds text, splitting it with c when it exceeds the
// chunker's MaxTokens. Chunk embeddings are combined into their mean,
// weighted by chunk token count. A nil chunker embeds text directly.
func EmbedDocument(ctx context.Context, provider types.EmbeddingProvider, c chunker.Chunker, text string) (similarity.Vector, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty text", similarity.ErrInvalidInput)
	}
	if c == nil {
		return provider.EmbedText(ctx, text)
	}

	n, err := c.CountTokens(text)
	if err != nil {
		return nil, err
	}
	if n <= c.Config().MaxTokens {
		return provider.EmbedText(ctx, text)
	}

	chunks, err := c.ChunkText(text)
	if err != nil {
		return nil, err
	}

	var (
		sum    similarity.Vector
		weight float64
	)
	for _, ch := range chunks {
		vec, err := provider.EmbedText(ctx, ch.Text)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", ch.Index, err)
		}
		if sum == nil {
			sum = make(similarity.Vector, len(vec))
		}
		if len(vec) != len(sum) {
			return nil, fmt.Errorf("%w: chunk %d has dimension %d, want %d",
				similarity.ErrInvalidInput, ch.Index, len(vec), len(sum))
		}

		w := float64(ch.Tokens())
		for i, v := range vec {
			sum[i] += v * w
		}
		weight += w
	}

	if weight == 0 {
		return nil, fmt.Errorf("%w: no tokens to embed", similarity.ErrInvalidInput)
	}
	for i := range sum {
		sum[i] /= weight
	}
	return sum, nil
}
