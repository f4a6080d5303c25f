package main

import "github.com/qcbit/gossipchain/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
