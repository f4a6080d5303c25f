package cmd

import (
	"crypto/rand"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/qcbit/gossipchain/foundation/blockchain/signature"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new Ed25519 identity and save it to the key file.",
	Run:   generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func generateRun(cmd *cobra.Command, args []string) {
	kp, err := signature.Generate(rand.Reader)
	if err != nil {
		log.Fatal(err)
	}

	if err := signature.Save(keyPath, kp); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("generated identity %s, saved to %s\n", kp.Address, keyPath)
}
