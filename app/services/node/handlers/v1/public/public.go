// Package public maintains the wallet-facing handlers: submitting a signed
// transaction, and querying account and genesis state.
package public

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/qcbit/gossipchain/app/services/node/handlers"
	"github.com/qcbit/gossipchain/foundation/blockchain/chain"
	"github.com/qcbit/gossipchain/foundation/blockchain/database"
	"github.com/qcbit/gossipchain/foundation/blockchain/digest"
	"github.com/qcbit/gossipchain/foundation/blockchain/genesis"
	"github.com/qcbit/gossipchain/foundation/blockchain/gossip"
	"github.com/qcbit/gossipchain/foundation/blockchain/mempool"
	"github.com/qcbit/gossipchain/foundation/blockchain/message"
	"github.com/qcbit/gossipchain/foundation/blockchain/signature"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Handlers manages the set of wallet-facing endpoints.
type Handlers struct {
	Log     *zap.SugaredLogger
	Chain   *chain.Chain
	Pool    *mempool.Mempool
	Server  *gossip.Server
	Genesis genesis.Genesis
}

// SubmitTransaction decodes a fully signed transaction, validates its
// signature and shape, and adds it to the mempool. It does not check
// nonce or balance: those are enforced when the miner selects transactions.
func (h Handlers) SubmitTransaction(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var signed database.SignedTx
	if err := handlers.Decode(r, &signed); err != nil {
		handlers.RespondError(w, http.StatusBadRequest, err)
		return
	}

	if err := validate.Struct(signed); err != nil {
		handlers.RespondError(w, http.StatusBadRequest, err)
		return
	}

	if !signed.VerifiesSignature() {
		handlers.RespondError(w, http.StatusBadRequest, signature.ErrInvalidSignature)
		return
	}

	h.Pool.Upsert(signed)
	h.Log.Infow("tx submitted", "from", signed.Address(), "nonce", signed.Tx.AccountNonce, "hash", signed.Hash())

	if h.Server != nil {
		if err := h.Server.Broadcast(message.Transactions([]database.SignedTx{signed})); err != nil {
			h.Log.Infow("tx broadcast failed", "ERROR", err)
		}
	}

	handlers.Respond(w, http.StatusOK, submitStatus{Status: "transaction added to mempool", Hash: signed.Hash()})
}

// Genesis returns the genesis block and the addresses it seeded.
func (h Handlers) Genesis(w http.ResponseWriter, r *http.Request, params map[string]string) {
	addrs := make([]digest.H160, len(h.Genesis.Identities))
	for i, kp := range h.Genesis.Identities {
		addrs[i] = kp.Address
	}

	handlers.Respond(w, http.StatusOK, genesisView{Block: h.Genesis.Block, SeededAddress: addrs})
}

// Accounts returns every known account, or a single one when :address is set.
func (h Handlers) Accounts(w http.ResponseWriter, r *http.Request, params map[string]string) {
	state, ok := h.Chain.GetState(h.Chain.Tip())
	if !ok {
		handlers.RespondError(w, http.StatusInternalServerError, errNoTipState)
		return
	}

	addrParam := params["address"]
	if addrParam == "" {
		views := make([]accountView, 0, len(state.AddressList))
		for _, addr := range state.AddressList {
			account := state.AccountState[addr]
			views = append(views, accountView{Address: addr, Nonce: account.Nonce, Balance: account.Balance})
		}
		handlers.Respond(w, http.StatusOK, views)
		return
	}

	var addr digest.H160
	if err := addr.UnmarshalText([]byte(addrParam)); err != nil {
		handlers.RespondError(w, http.StatusBadRequest, err)
		return
	}

	account, known := state.AccountState[addr]
	if !known {
		handlers.RespondError(w, http.StatusNotFound, errUnknownAccount)
		return
	}

	handlers.Respond(w, http.StatusOK, accountView{Address: addr, Nonce: account.Nonce, Balance: account.Balance})
}

// Mempool returns every transaction currently uncommitted.
func (h Handlers) Mempool(w http.ResponseWriter, r *http.Request, params map[string]string) {
	handlers.Respond(w, http.StatusOK, h.Pool.Snapshot())
}
