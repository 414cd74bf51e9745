package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// logLevelEnv overrides the default log level when --log-level is not given.
const logLevelEnv = "BOXDETECT_LOG_LEVEL"

var logLevel = "info"

func setupLogger(cmd *cobra.Command) error {
	level := logLevel
	if !cmd.Flags().Changed("log-level") {
		if env := os.Getenv(logLevelEnv); env != "" {
			level = env
		}
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(parsed)
	// stdout carries command output and the MCP protocol.
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return nil
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boxdetect",
		Short: "boxdetect manages box detection pipeline configurations",
		Long: `boxdetect manages the tunable parameters of a box detection pipeline.

It writes and expands parameter files, calibrates size ranges from observed
box sizes, measures boxes in sample images and serves all of this as MCP tools.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupLogger(cmd)
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic); also "+logLevelEnv)

	cmd.AddCommand(
		NewDefaultsCommand(),
		NewExpandCommand(),
		NewCalibrateCommand(),
		NewMeasureCommand(),
		NewServeCommand(),
		NewVersionCommand(),
	)

	return cmd
}
