package main

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/nxadm/tail"
	"github.com/spf13/cobra"
)

func newLogsCmd(opts *rootOptions) *cobra.Command {
	var follow bool
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the log file of the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.logFile == "" {
				return errors.New("--log-file is required")
			}
			t, err := tail.TailFile(opts.logFile, tail.Config{
				Follow:        follow,
				ReOpen:        follow,
				Poll:          runtime.GOOS == "windows", // on Windows poll for file changes instead of using the default inotify
				Logger:        tail.DiscardingLogger,
				CompleteLines: true,
			})
			if err != nil {
				return err
			}
			defer t.Cleanup()
			out := cmd.OutOrStdout()
			for line := range t.Lines {
				if line.Err != nil {
					return line.Err
				}
				fmt.Fprintln(out, line.Text)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep printing lines appended to the log")
	return cmd
}
