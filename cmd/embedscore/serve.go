package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/botirk38/embedscore/providers"
	"github.com/botirk38/embedscore/server"
	"github.com/botirk38/embedscore/similarity"
	"github.com/botirk38/embedscore/types"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func (c *cli) newServeCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scoring API over HTTP",
		Long: `Serves POST /v1/score for pre-computed vectors and, when an embedding
provider is configured, POST /v1/compare for texts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = c.cfg.Server.Addr
			}
			return c.runServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default EMBEDSCORE_SERVER_ADDR)")
	return cmd
}

func (c *cli) runServe(ctx context.Context, addr string) error {
	metric, err := similarity.ParseMetric(c.cfg.Metric)
	if err != nil {
		return err
	}

	var provider types.EmbeddingProvider
	if err := c.cfg.RequireEmbedding(); err != nil {
		c.log.Warn("text comparison disabled", "err", err)
	} else {
		provider, err = providers.NewEmbeddingProvider(ctx, c.cfg)
		if err != nil {
			return err
		}
		defer provider.Close()
	}

	srv := &http.Server{
		Addr: addr,
		Handler: server.New(server.Config{
			Provider:       provider,
			Metric:         metric,
			Concurrency:    c.cfg.Concurrency,
			RequestTimeout: c.cfg.Server.RequestTimeout,
			Logger:         c.log,
		}).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.log.Info("listening", "addr", addr, "metric", metric)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	c.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
