package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/nrtkit/internal/logger"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
	debug   bool
	logFile string
)

var closeLog = func() error { return nil }

var rootCmd = &cobra.Command{
	Use:   "nrtctl",
	Short: "Exercise the refcounted allocation-record runtime",
	Long: `nrtctl runs the allocation-record runtime outside of a compiled program.
It can replay the reference scenarios, churn shared records from many
goroutines, print allocator statistics, and call the guest entry points
through an in-process WebAssembly runtime.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}
		closer, err := logger.Init(logger.Options{
			Enabled: verbose || debug || logFile != "",
			File:    logFile,
			JSON:    jsonOut,
			Level:   level,
		})
		if err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		closeLog = closer
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log runtime events at debug level")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Append logs to this file")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}
