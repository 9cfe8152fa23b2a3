package main

import (
	"errors"

	"github.com/botirk38/embedscore/similarity"
	"github.com/botirk38/embedscore/vectorfile"
	"github.com/spf13/cobra"
)

type scoreOptions struct {
	file   string
	metric string
	sort   bool
}

func (c *cli) newScoreCommand() *cobra.Command {
	opts := &scoreOptions{}
	cmd := &cobra.Command{
		Use:   "score --file VECTORS",
		Short: "Score pre-computed candidate vectors against a query vector",
		Long: `Reads a YAML or JSON file holding a query vector and a list of candidates
and prints the distance of each candidate from the query.

	query: [0.1, 0.2, 0.3]
	candidates:
	  - id: vehicle
	    vector: [0.1, 0.2, 0.25]`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runScore(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "vector file (YAML or JSON)")
	cmd.Flags().StringVar(&opts.metric, "metric", "", "comparison metric (default from the file, then EMBEDSCORE_METRIC)")
	cmd.Flags().BoolVar(&opts.sort, "sort", false, "print closest candidates first")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (c *cli) runScore(cmd *cobra.Command, opts *scoreOptions) error {
	if opts.file == "" {
		return errors.New("--file is required")
	}
	file, err := vectorfile.Load(opts.file)
	if err != nil {
		return err
	}

	metric, err := similarity.ParseMetric(firstNonEmpty(opts.metric, file.Metric, c.cfg.Metric))
	if err != nil {
		return err
	}

	results, err := similarity.Rank(file.Query, file.Candidates, metric)
	if err != nil {
		return err
	}
	c.log.Debug("scored vector file", "file", opts.file, "candidates", len(results), "metric", metric)

	if opts.sort {
		results = sortedByDistance(results)
	}
	return newOutputFormatter(cmd).Results(metric, results)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
