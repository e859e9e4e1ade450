package main

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	logFile     string
	logLevel    string
	metricsAddr string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "aidllsp",
		Short: "A language server for Android Interface Definition Language files",
		Long: `aidllsp serves the Language Server Protocol over stdin and stdout.
It indexes the .aidl files of the workspace and answers symbol, hover and
definition requests.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "write logs to this file instead of stderr")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "minimum level of logged records (debug, info, warn, error)")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the Language Server Protocol over stdin and stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	for _, c := range []*cobra.Command{cmd, serve} {
		c.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. localhost:9464")
	}

	cmd.AddCommand(serve, newCheckCmd(opts), newLogsCmd(opts))
	return cmd
}
