package main

import (
	"fmt"

	"github.com/botirk38/embedscore/providers"
	"github.com/botirk38/embedscore/similarity"
	"github.com/spf13/cobra"
)

func (c *cli) newTokensCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens TEXT",
		Short: "Count the tokens TEXT uses with the configured chat model",
		Long: `Counts tokens for EMBEDSCORE_CHAT_PROVIDER. OpenAI and Azure are counted
locally and need no API key; Gemini and Anthropic call their APIs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			counter, err := providers.NewTokenCounter(ctx, c.cfg)
			if err != nil {
				return err
			}
			n, err := counter.CountTokens(ctx, args[0])
			if err != nil {
				return err
			}
			return newOutputFormatter(cmd).Text("tokens", n)
		},
	}
}

func (c *cli) newMetricsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "List the supported comparison metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := newOutputFormatter(cmd)
			metrics := similarity.Supported()
			if out.jsonMode {
				return out.printJSON(metrics)
			}
			for _, m := range metrics {
				suffix := ""
				if m == similarity.DefaultMetric {
					suffix = " (default)"
				}
				fmt.Fprintf(out.w, "%s%s\n", m, suffix)
			}
			return nil
		},
	}
}
