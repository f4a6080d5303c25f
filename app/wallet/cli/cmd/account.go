package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/qcbit/gossipchain/foundation/blockchain/signature"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Query this identity's account state from a node.",
	Run:   accountRun,
}

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.Flags().StringVarP(&nodeURL, "node", "u", "http://localhost:8080", "Base URL of the node's public API.")
}

type accountResponse struct {
	Address string `json:"address"`
	Nonce   int32  `json:"nonce"`
	Balance uint64 `json:"balance"`
}

func accountRun(cmd *cobra.Command, args []string) {
	kp, err := signature.Load(keyPath)
	if err != nil {
		log.Fatal(err)
	}

	resp, err := http.Get(fmt.Sprintf("%s/v1/accounts/%s", nodeURL, kp.Address))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	var account accountResponse
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("address %s: nonce %d, balance %d\n", account.Address, account.Nonce, account.Balance)
}
