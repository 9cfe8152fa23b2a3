// Command embedscore scores texts against each other using embeddings from a
// hosted model, and keeps an optional persistent collection to rank against.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/botirk38/embedscore/config"
	"github.com/botirk38/embedscore/logger"
	"github.com/botirk38/embedscore/similarity"
	"github.com/botirk38/embedscore/types"
	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitOK = iota
	exitError
	exitInvalidInput
	exitUnsupportedMetric
	exitDegenerateVector
	exitRemoteService
)

// cli carries the state shared by every subcommand. cfg and log are set by
// the root command's PersistentPreRunE.
type cli struct {
	envFile  string
	logLevel string

	cfg config.Config
	log *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code. Errors
// go to stderr; nothing is written to stdout for a failed command.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "error (%s): %v\n", errorKind(err), err)
		return exitCode(err)
	}
	return exitOK
}

func newRootCommand() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "embedscore",
		Short:         "Score texts by embedding similarity",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")
	root.PersistentFlags().Bool("json", false, "print results as JSON")

	root.AddCommand(
		c.newScoreCommand(),
		c.newCompareCommand(),
		c.newIndexCommand(),
		c.newAskCommand(),
		c.newTokensCommand(),
		c.newMetricsCommand(),
		c.newServeCommand(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.envFile)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	c.cfg = cfg
	c.log = logger.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	c.log.Debug("configuration loaded",
		"embedding_provider", cfg.EmbeddingProvider,
		"chat_provider", cfg.ChatProvider,
		"store", cfg.Store.Backend)
	return nil
}

// errorKind names the error category printed before the message.
func errorKind(err error) string {
	switch {
	case errors.Is(err, similarity.ErrInvalidInput):
		return "invalid input"
	case errors.Is(err, similarity.ErrUnsupportedMetric):
		return "unsupported metric"
	case errors.Is(err, similarity.ErrDegenerateVector):
		return "degenerate vector"
	case errors.Is(err, types.ErrRemoteService):
		return "remote service"
	default:
		return "error"
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, similarity.ErrInvalidInput):
		return exitInvalidInput
	case errors.Is(err, similarity.ErrUnsupportedMetric):
		return exitUnsupportedMetric
	case errors.Is(err, similarity.ErrDegenerateVector):
		return exitDegenerateVector
	case errors.Is(err, types.ErrRemoteService):
		return exitRemoteService
	default:
		return exitError
	}
}
