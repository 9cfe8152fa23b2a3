package main

import (
	"fmt"
	"strings"

	"github.com/botirk38/embedscore/providers"
	"github.com/botirk38/embedscore/similarity"
	"github.com/spf13/cobra"
)

const defaultSystemPrompt = "You are a helpful assistant."

func (c *cli) newAskCommand() *cobra.Command {
	var system string
	cmd := &cobra.Command{
		Use:   "ask PROMPT",
		Short: "Send a prompt to the configured chat model and print the reply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if strings.TrimSpace(args[0]) == "" {
				return fmt.Errorf("%w: empty prompt", similarity.ErrInvalidInput)
			}

			chat, err := providers.NewChatProvider(ctx, c.cfg)
			if err != nil {
				return err
			}
			defer chat.Close()

			reply, err := chat.Complete(ctx, system, args[0])
			if err != nil {
				return err
			}
			c.log.Debug("completion received", "provider", c.cfg.ChatProvider, "chars", len(reply))
			return newOutputFormatter(cmd).Text("response", reply)
		},
	}
	cmd.Flags().StringVar(&system, "system", defaultSystemPrompt, "system instruction")
	return cmd
}
