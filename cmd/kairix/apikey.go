package main

import (
	"fmt"

	"github.com/kairix/todo/internal/auth"
	"github.com/spf13/cobra"
)

var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage API keys",
}

var apikeyHashCmd = &cobra.Command{
	Use:   "hash <key>",
	Short: "Print a bcrypt hash of a key for the key file",
	Long: "Print a bcrypt hash of <key>. Put the hash on its own line in the key file " +
		"to accept the key without storing it in plain text.",
	Args: cobra.ExactArgs(1),
	RunE: runAPIKeyHash,
}

func init() {
	apikeyCmd.AddCommand(apikeyHashCmd)
}

func runAPIKeyHash(cmd *cobra.Command, args []string) error {
	hash, err := auth.HashKey(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
