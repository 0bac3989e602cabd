package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var configFile string
var logFormat string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "damasc",
		Short: "Damasc - a structural pattern matching and multi-way join query language",
		Long: `Damasc is an expression-oriented query and transformation language
centred on structural pattern matching over JSON-like values and
multi-way pattern joins across labelled value bags.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(logFormat)
		},
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "session config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (json or text)")

	cmd.AddCommand(newReplCmd())
	cmd.AddCommand(newEvalCmd())
	cmd.AddCommand(newHTTPCmd())
	cmd.AddCommand(newJoinCmd())

	return cmd
}

func configureLogging(format string) {
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
