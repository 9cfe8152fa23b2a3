package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/botirk38/embedscore/similarity"
	"github.com/spf13/cobra"
)

// outputFormatter writes results as a table or, with --json, as indented JSON.
type outputFormatter struct {
	w        io.Writer
	jsonMode bool
}

func newOutputFormatter(cmd *cobra.Command) *outputFormatter {
	jsonMode, _ := cmd.Flags().GetBool("json")
	return &outputFormatter{w: cmd.OutOrStdout(), jsonMode: jsonMode}
}

func (f *outputFormatter) printJSON(data any) error {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(f.w, string(out))
	return err
}

// Results prints one row per result in the order given.
func (f *outputFormatter) Results(metric similarity.Metric, results []similarity.Result) error {
	if f.jsonMode {
		return f.printJSON(map[string]any{
			"metric":  metric,
			"results": results,
		})
	}

	tw := tabwriter.NewWriter(f.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDISTANCE")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\n", r.ID, strconv.FormatFloat(r.Score, 'f', 6, 64))
	}
	return tw.Flush()
}

// Text prints a single value, wrapped in an object under key in JSON mode.
func (f *outputFormatter) Text(key string, value any) error {
	if f.jsonMode {
		return f.printJSON(map[string]any{key: value})
	}
	_, err := fmt.Fprintln(f.w, value)
	return err
}

// sortedByDistance returns a copy of results, closest first. Ties keep their
// original order.
func sortedByDistance(results []similarity.Result) []similarity.Result {
	out := append([]similarity.Result(nil), results...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score < out[j].Score
	})
	return out
}
