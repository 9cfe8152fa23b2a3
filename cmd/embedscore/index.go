package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/botirk38/embedscore/backends"
	"github.com/botirk38/embedscore/types"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var errVolatileStore = errors.New("index commands need a persistent store: set EMBEDSCORE_STORE_BACKEND=redis")

func (c *cli) newIndexCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage a persistent collection of embedded texts",
	}

	var id string
	add := &cobra.Command{
		Use:   "add TEXT",
		Short: "Embed TEXT and store it in the collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runIndexAdd(cmd, id, args[0])
		},
	}
	add.Flags().StringVar(&id, "id", "", "record id (default a random UUID)")

	var sortResults bool
	rank := &cobra.Command{
		Use:   "rank QUERY",
		Short: "Score every stored text against QUERY, in insertion order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runIndexRank(cmd, args[0], sortResults)
		},
	}
	rank.Flags().BoolVar(&sortResults, "sort", false, "print closest records first")

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runIndexList(cmd)
		},
	}

	del := &cobra.Command{
		Use:   "delete ID...",
		Short: "Remove records from the collection",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(store types.VectorStore) error {
				for _, id := range args {
					if err := store.Delete(cmd.Context(), id); err != nil {
						return fmt.Errorf("delete %q: %w", id, err)
					}
				}
				return nil
			})
		},
	}

	flush := &cobra.Command{
		Use:   "flush",
		Short: "Remove every record from the collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withStore(cmd.Context(), func(store types.VectorStore) error {
				return store.Flush(cmd.Context())
			})
		},
	}

	cmd.AddCommand(add, rank, list, del, flush)
	return cmd
}

// openStore connects to the configured store. The in-memory backend does not
// outlive the process, so it is rejected here.
func (c *cli) openStore(ctx context.Context) (types.VectorStore, error) {
	backend := types.BackendType(c.cfg.Store.Backend)
	if backend == types.BackendLRU {
		return nil, errVolatileStore
	}
	return backends.NewBackend(ctx, backend, types.BackendConfig{
		Capacity:         c.cfg.Store.Capacity,
		ConnectionString: c.cfg.Store.RedisURL,
		Username:         c.cfg.Store.Username,
		Password:         c.cfg.Store.Password,
		Database:         c.cfg.Store.DB,
		Prefix:           c.cfg.Store.Prefix,
		DialTimeout:      c.cfg.Timeout,
	})
}

func (c *cli) withStore(ctx context.Context, fn func(types.VectorStore) error) error {
	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func (c *cli) runIndexAdd(cmd *cobra.Command, id, text string) error {
	ctx := cmd.Context()
	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	coll, err := c.openCollection(ctx, store)
	if err != nil {
		store.Close()
		return err
	}
	defer coll.Close()

	if id == "" {
		id = uuid.NewString()
	}
	replaced, err := coll.Contains(ctx, id)
	if err != nil {
		return err
	}
	if err := coll.Add(ctx, id, text); err != nil {
		return err
	}
	c.log.Info("record added", "id", id, "replaced", replaced)

	out := newOutputFormatter(cmd)
	if out.jsonMode {
		return out.printJSON(map[string]any{"id": id, "replaced": replaced})
	}
	if replaced {
		_, err = fmt.Fprintf(out.w, "%s (replaced)\n", id)
		return err
	}
	_, err = fmt.Fprintln(out.w, id)
	return err
}

func (c *cli) runIndexRank(cmd *cobra.Command, query string, sortResults bool) error {
	ctx := cmd.Context()
	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	coll, err := c.openCollection(ctx, store)
	if err != nil {
		store.Close()
		return err
	}
	defer coll.Close()

	results, err := coll.Rank(ctx, query)
	if err != nil {
		return err
	}
	if sortResults {
		results = sortedByDistance(results)
	}
	return newOutputFormatter(cmd).Results(coll.Metric(), results)
}

type recordSummary struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Dimensions int    `json:"dimensions"`
}

func (c *cli) runIndexList(cmd *cobra.Command) error {
	ctx := cmd.Context()
	return c.withStore(ctx, func(store types.VectorStore) error {
		keys, err := store.Keys(ctx)
		if err != nil {
			return err
		}

		records := make([]recordSummary, 0, len(keys))
		for _, key := range keys {
			rec, found, err := store.Get(ctx, key)
			if err != nil {
				return err
			}
			if !found {
				continue
			}
			records = append(records, recordSummary{ID: rec.ID, Text: rec.Text, Dimensions: len(rec.Vector)})
		}

		out := newOutputFormatter(cmd)
		if out.jsonMode {
			return out.printJSON(records)
		}
		tw := tabwriter.NewWriter(out.w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tDIMENSIONS\tTEXT")
		for _, r := range records {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", r.ID, r.Dimensions, truncate(r.Text, 60))
		}
		return tw.Flush()
	})
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
