package public

import "github.com/qcbit/gossipchain/foundation/blockchain/digest"

// accountView is the JSON shape returned for a single account.
type accountView struct {
	Address digest.H160 `json:"address"`
	Nonce   int32       `json:"nonce"`
	Balance uint64      `json:"balance"`
}

// genesisView mirrors genesis.Genesis without the private keys of the
// seeded identities, which a public endpoint must never leak.
type genesisView struct {
	Block         any           `json:"block"`
	SeededAddress []digest.H160 `json:"seeded_addresses"`
}

// submitStatus is the response to a successful POST /v1/tx/submit.
type submitStatus struct {
	Status string      `json:"status"`
	Hash   digest.H256 `json:"hash"`
}
