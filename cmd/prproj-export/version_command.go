package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heimdex/prproj-export/internal/config"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "prproj-export %s (commit %s, built %s)\n", config.Version, config.GitCommit, config.BuildTime)
			return nil
		},
	}
}
