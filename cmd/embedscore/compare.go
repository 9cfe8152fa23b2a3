package main

import (
	"context"
	"fmt"

	"github.com/botirk38/embedscore"
	"github.com/botirk38/embedscore/chunker"
	"github.com/botirk38/embedscore/options"
	"github.com/botirk38/embedscore/providers"
	"github.com/botirk38/embedscore/similarity"
	"github.com/botirk38/embedscore/types"
	"github.com/spf13/cobra"
)

type compareOptions struct {
	metric      string
	chunk       bool
	concurrency int
	sort        bool
}

func (c *cli) newCompareCommand() *cobra.Command {
	opts := &compareOptions{}
	cmd := &cobra.Command{
		Use:   "compare QUERY CANDIDATE...",
		Short: "Embed a query and candidate texts and score each candidate",
		Example: `  embedscore compare automobile vehicle dinosaur stick
  embedscore compare --sort --json "a red car" "a crimson automobile" "a banana"`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCompare(cmd, args[0], args[1:], opts)
		},
	}

	cmd.Flags().StringVar(&opts.metric, "metric", "", "comparison metric (default EMBEDSCORE_METRIC)")
	cmd.Flags().BoolVar(&opts.chunk, "chunk", false, "split texts longer than the model's input limit and average the chunk embeddings")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "embedding calls in flight (default EMBEDSCORE_CONCURRENCY)")
	cmd.Flags().BoolVar(&opts.sort, "sort", false, "print closest candidates first")
	return cmd
}

func (c *cli) runCompare(cmd *cobra.Command, query string, candidates []string, opts *compareOptions) error {
	ctx := cmd.Context()

	metric, err := similarity.ParseMetric(firstNonEmpty(opts.metric, c.cfg.Metric))
	if err != nil {
		return err
	}
	concurrency := opts.concurrency
	if concurrency <= 0 {
		concurrency = c.cfg.Concurrency
	}

	provider, err := providers.NewEmbeddingProvider(ctx, c.cfg)
	if err != nil {
		return err
	}

	collOpts := []options.Option{
		options.WithLRUBackend(c.cfg.Store.Capacity),
		options.WithCustomProvider(provider),
		options.WithMetric(string(metric)),
		options.WithLogger(c.log),
		options.WithConcurrency(concurrency),
	}
	if opts.chunk {
		ch, err := newChunker(provider)
		if err != nil {
			provider.Close()
			return err
		}
		collOpts = append(collOpts, options.WithChunker(ch))
	}

	coll, err := embedscore.New(collOpts...)
	if err != nil {
		provider.Close()
		return err
	}
	defer coll.Close()

	results, err := coll.Compare(ctx, query, candidates)
	if err != nil {
		return err
	}

	if opts.sort {
		results = sortedByDistance(results)
	}
	return newOutputFormatter(cmd).Results(metric, results)
}

// newChunker sizes a chunker to the provider's input limit when it reports one.
func newChunker(provider types.EmbeddingProvider) (chunker.Chunker, error) {
	cfg := chunker.DefaultChunkConfig()
	if lp, ok := provider.(interface{ GetMaxTokens() int }); ok {
		cfg = chunker.ConfigForLimit(lp.GetMaxTokens())
	}
	ch, err := chunker.NewFixedOverlapChunker(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create chunker: %w", err)
	}
	return ch, nil
}

// openCollection wraps store and the configured embedding provider in a
// collection. Closing the collection closes both.
func (c *cli) openCollection(ctx context.Context, store types.VectorStore) (*embedscore.Collection, error) {
	metric, err := similarity.ParseMetric(c.cfg.Metric)
	if err != nil {
		return nil, err
	}
	provider, err := providers.NewEmbeddingProvider(ctx, c.cfg)
	if err != nil {
		return nil, err
	}

	coll, err := embedscore.New(
		options.WithCustomBackend(store),
		options.WithCustomProvider(provider),
		options.WithMetric(string(metric)),
		options.WithLogger(c.log),
		options.WithConcurrency(c.cfg.Concurrency),
	)
	if err != nil {
		provider.Close()
		return nil, err
	}
	return coll, nil
}
