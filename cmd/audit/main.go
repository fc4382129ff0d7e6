package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"audit-backend/internal/shared/config"
	"audit-backend/internal/shared/telemetry"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:           "audit",
	Short:         "Content maturity audit for a company website",
	Long:          "Scores a website's content across five maturity categories using Gemini with Google Search grounding.",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c
		if err := initLogger(cmd); err != nil {
			return eris.Wrap(err, "init logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		telemetry.Sync()
	},
}

// initLogger sends logs to stderr, or to --log-file when set. The TUI owns the
// terminal, so it logs nowhere unless a file is given.
func initLogger(cmd *cobra.Command) error {
	logFile, _ := cmd.Flags().GetString("log-file")
	if logFile != "" {
		return telemetry.Init(cfg.LogLevel, cfg.LogFormat, logFile)
	}
	if cmd.Name() == "tui" {
		telemetry.Disable()
		return nil
	}
	return telemetry.Init(cfg.LogLevel, cfg.LogFormat, "stderr")
}

func init() {
	rootCmd.PersistentFlags().String("log-file", "", "write logs to this file")
	rootCmd.AddCommand(runCmd, tuiCmd, stepsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
