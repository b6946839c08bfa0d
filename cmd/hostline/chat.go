package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/HendryAvila/hostline/internal/dialogue"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	agentColor = color.New(color.FgCyan)
	stepColor  = color.New(color.Faint)
)

func newChatCmd(opts *rootOptions) *cobra.Command {
	var caller string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the agent in the terminal",
		Long: `Talk to the phone agent line by line, as a caller would.

Type "quit" or press Ctrl-D to hang up.

Examples:
  hostline chat
  hostline chat --caller +13125551234`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := setup(opts, true)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			return runChat(ctx, app.Agent, caller, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&caller, "caller", "", "Caller phone number (default: anonymous)")
	return cmd
}

// runChat reads one utterance per line and prints the agent's reply until
// EOF, "quit" or ctx is done.
func runChat(ctx context.Context, agent *dialogue.Agent, caller string, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "Connected as %s. Say something, or \"quit\" to hang up.\n", dialogue.CallerKey(caller))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit", "bye":
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}

		res := agent.HandleMessage(ctx, line, caller)
		agentColor.Fprintln(out, res.Response)
		if res.Session.Step != nil && res.Session.CurrentIntent != nil {
			stepColor.Fprintf(out, "  [%s / %s]\n", *res.Session.CurrentIntent, *res.Session.Step)
		}
	}
}
