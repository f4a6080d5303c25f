// Package private maintains the operator-facing control endpoints: node
// status, and starting/stopping the miner and transaction generator.
package private

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/qcbit/gossipchain/app/services/node/handlers"
	"github.com/qcbit/gossipchain/foundation/blockchain/chain"
	"github.com/qcbit/gossipchain/foundation/blockchain/gossip"
	"github.com/qcbit/gossipchain/foundation/blockchain/peer"
	"github.com/qcbit/gossipchain/foundation/blockchain/worker"
)

// Handlers manages the set of operator-facing endpoints.
type Handlers struct {
	Log    *zap.SugaredLogger
	Chain  *chain.Chain
	Server *gossip.Server
	Miner  *worker.Miner
	TxGen  *worker.TxGenerator
}

type statusView struct {
	Tip       string `json:"tip"`
	Height    uint32 `json:"height"`
	PeerCount int    `json:"peer_count"`
}

// Status reports the node's current tip, height, and peer count.
func (h Handlers) Status(w http.ResponseWriter, r *http.Request, params map[string]string) {
	tip := h.Chain.Tip()
	height, _ := h.Chain.GetHeight(tip)

	peerCount := 0
	if h.Server != nil {
		peerCount = h.Server.PeerCount()
	}

	handlers.Respond(w, http.StatusOK, statusView{Tip: tip.String(), Height: height, PeerCount: peerCount})
}

type lambdaRequest struct {
	LambdaMicros uint64 `json:"lambda_micros"`
}

type statusResponse struct {
	Status string `json:"status"`
}

// StartMiner transitions the miner into Run(lambda), sleeping lambda
// microseconds between attempts.
func (h Handlers) StartMiner(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var req lambdaRequest
	if err := handlers.Decode(r, &req); err != nil {
		handlers.RespondError(w, http.StatusBadRequest, err)
		return
	}

	h.Miner.Start(req.LambdaMicros)
	handlers.Respond(w, http.StatusOK, statusResponse{Status: "miner running"})
}

// StopMiner shuts the miner down. There is no paused state to return to;
// a stopped miner must be replaced with a new one to run again.
func (h Handlers) StopMiner(w http.ResponseWriter, r *http.Request, params map[string]string) {
	h.Miner.Exit()
	handlers.Respond(w, http.StatusOK, statusResponse{Status: "miner shutting down"})
}

// StartTxGenerator transitions the transaction generator into Run(lambda).
func (h Handlers) StartTxGenerator(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var req lambdaRequest
	if err := handlers.Decode(r, &req); err != nil {
		handlers.RespondError(w, http.StatusBadRequest, err)
		return
	}

	h.TxGen.Start(req.LambdaMicros)
	handlers.Respond(w, http.StatusOK, statusResponse{Status: "transaction generator running"})
}

// StopTxGenerator shuts the transaction generator down.
func (h Handlers) StopTxGenerator(w http.ResponseWriter, r *http.Request, params map[string]string) {
	h.TxGen.Exit()
	handlers.Respond(w, http.StatusOK, statusResponse{Status: "transaction generator shutting down"})
}

type dialRequest struct {
	Host string `json:"host"`
}

// Dial opens an outbound gossip connection to another node.
func (h Handlers) Dial(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var req dialRequest
	if err := handlers.Decode(r, &req); err != nil {
		handlers.RespondError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.Server.Dial(peer.Peer{Host: req.Host}); err != nil {
		handlers.RespondError(w, http.StatusBadGateway, err)
		return
	}

	handlers.Respond(w, http.StatusOK, statusResponse{Status: "connected to " + req.Host})
}
