// Hostline: restaurant phone assistant.
//
// A rule-based dialogue agent that takes food orders and table
// reservations over the phone, plus the MCP tools an LLM voice agent needs
// to do the same against the restaurant backend.
//
// Usage:
//
//	hostline serve     # Start the MCP server (stdio transport)
//	hostline http      # Serve the HTTP API
//	hostline chat      # Talk to the agent in the terminal
//	hostline version   # Print the version
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/HendryAvila/hostline/internal/config"
	hlserver "github.com/HendryAvila/hostline/internal/server"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "hostline",
		Short: "Restaurant phone assistant",
		Long: `Hostline answers the restaurant phone: it takes orders, books tables and
answers questions about hours, location and the menu.

Available subcommands:
  serve       Start the MCP server (stdio transport)
  http        Serve the HTTP API
  chat        Talk to the agent in the terminal
  version     Print the version

Configuration is read from ~/.hostline/config.yaml unless --config is given.
HOSTLINE_BACKEND_URL, HOSTLINE_DATA_DIR, HOSTLINE_HTTP_ADDR and
HOSTLINE_LOG_LEVEL override the file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file (default: ~/.hostline/config.yaml)")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newHTTPCmd(opts))
	cmd.AddCommand(newChatCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// setup loads the config and builds the logger and the app. stdout is
// reserved for MCP stdio, so logs always go to stderr.
func setup(opts *rootOptions, console bool) (*hlserver.App, func(), error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := newLogger(cfg, os.Stderr, console)
	if err != nil {
		return nil, nil, err
	}

	app, cleanup, err := hlserver.New(cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("creating server: %w", err)
	}
	return app, cleanup, nil
}

func newLogger(cfg *config.Config, w io.Writer, console bool) (zerolog.Logger, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return zerolog.Nop(), err
	}
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

// signalContext is cancelled on interrupt or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hostline v%s\n", hlserver.Version)
		},
	}
}
