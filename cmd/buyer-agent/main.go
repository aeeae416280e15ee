package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"adte.com/adte/buyer-agent/internal/config"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

// exitError carries a process exit status out of a command.
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	envFile string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "buyer-agent",
		Short: "AdCP buyer agent - create media buys on a sales agent",
		Long: `buyer-agent builds a create_media_buy request for an AdCP sales agent,
submits it once over MCP or REST and reports the result.

Flight dates are computed at run time: the campaign starts at the next UTC
midnight and runs for CAMPAIGN_SPAN_DAYS days.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var envFiles []string
			if a.envFile != "" {
				envFiles = append(envFiles, a.envFile)
			}
			cfg, err := config.LoadConfig(envFiles...)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = newLogger(cmd.ErrOrStderr(), cfg.Log)
			slog.SetDefault(a.logger)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", "", "dotenv file to load (default .env when present)")

	rootCmd.AddCommand(newCreateMediaBuyCmd(a))
	rootCmd.AddCommand(newTokenCmd(a))
	return rootCmd
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: true,
		Level:     cfg.SlogLevel(),
	}
	if cfg.Human {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			return exit.code
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
