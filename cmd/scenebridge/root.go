package main

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	LogLevel string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "scenebridge",
		Short: "Run scripted scenes on the in-memory engine",
		Long: `scenebridge loads scene fixtures and state machine templates into the
in-memory engine, drives them frame by frame and exposes the live event
stream and metrics over HTTP.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error); overrides SCENEBRIDGE_LOG_LEVEL")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newValidateCommand(opts))
	return cmd
}
