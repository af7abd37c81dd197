package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ashishkumar256/sunspot/auth"
)

func hashKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-key KEY",
		Short: "Print the SHA-256 hash of an API key for the key file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), auth.HashAPIKey(args[0]))
			return err
		},
	}
}
