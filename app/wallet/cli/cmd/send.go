package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/qcbit/gossipchain/foundation/blockchain/database"
	"github.com/qcbit/gossipchain/foundation/blockchain/digest"
	"github.com/qcbit/gossipchain/foundation/blockchain/signature"
)

var (
	nodeURL   string
	recipient string
	value     uint64
	nonce     int32
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Sign and submit a transaction to a node.",
	Run:   sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&nodeURL, "node", "u", "http://localhost:8080", "Base URL of the node's public API.")
	sendCmd.Flags().StringVarP(&recipient, "to", "t", "", "Recipient address, hex encoded.")
	sendCmd.Flags().Uint64VarP(&value, "value", "v", 0, "Amount to send.")
	sendCmd.Flags().Int32VarP(&nonce, "nonce", "n", 0, "Intended post-state nonce for the sender.")
}

func sendRun(cmd *cobra.Command, args []string) {
	kp, err := signature.Load(keyPath)
	if err != nil {
		log.Fatal(err)
	}

	var to digest.H160
	if err := to.UnmarshalText([]byte(recipient)); err != nil {
		log.Fatal(err)
	}

	tx := database.Tx{
		Recipient:    to,
		Value:        value,
		AccountNonce: nonce,
	}

	signed, err := database.NewSignedTx(tx, kp)
	if err != nil {
		log.Fatal(err)
	}

	body, err := json.Marshal(signed)
	if err != nil {
		log.Fatal(err)
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/tx/submit", nodeURL), "application/json", bytes.NewBuffer(body))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	fmt.Printf("submitted tx %s from %s: node responded %s\n", signed.Hash(), kp.Address, resp.Status)
}
