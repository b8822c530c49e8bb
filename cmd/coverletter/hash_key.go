package main

import (
	"fmt"

	"github.com/jonathan/cover-letter-studio/internal/config"
	"github.com/spf13/cobra"
)

var hashKeyCmd = &cobra.Command{
	Use:   "hash-key <api-key>",
	Short: "Print the bcrypt hash of an API key for API_KEY_HASH",
	Long: `Hash an API key with bcrypt so the service can verify it without storing
the key itself. The cost is read from BCRYPT_COST (default 12).`,
	Args: cobra.ExactArgs(1),
	RunE: runHashKey,
}

func init() {
	rootCmd.AddCommand(hashKeyCmd)
}

func runHashKey(cmd *cobra.Command, args []string) error {
	hash, err := config.HashAPIKey(args[0])
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
