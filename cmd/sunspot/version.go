package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ashishkumar256/sunspot/config"
)

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "sunspot", config.Version)
		},
	}
}
