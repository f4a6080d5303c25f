// Package cmd implements the wallet's command line interface: generating an
// Ed25519 identity, querying its account state, and signing and submitting
// transactions to a node's public API.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var keyPath string

var rootCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Generate identities and submit transactions to a gossipchain node.",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&keyPath, "key", "k", "zblock/wallet.key", "Path to the Ed25519 identity file.")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
