// Package v1 binds the node's HTTP routes: a public surface wallets use to
// submit transactions and query state, and a private surface an operator
// uses to drive the miner, the transaction generator, and peer dialing.
package v1

import (
	"net/http"

	"github.com/dimfeld/httptreemux/v5"
	"go.uber.org/zap"

	"github.com/qcbit/gossipchain/app/services/node/handlers"
	"github.com/qcbit/gossipchain/app/services/node/handlers/v1/private"
	"github.com/qcbit/gossipchain/app/services/node/handlers/v1/public"
	"github.com/qcbit/gossipchain/foundation/blockchain/chain"
	"github.com/qcbit/gossipchain/foundation/blockchain/genesis"
	"github.com/qcbit/gossipchain/foundation/blockchain/gossip"
	"github.com/qcbit/gossipchain/foundation/blockchain/mempool"
	"github.com/qcbit/gossipchain/foundation/blockchain/worker"
)

// Config contains every system a v1 handler needs.
type Config struct {
	Log     *zap.SugaredLogger
	Chain   *chain.Chain
	Pool    *mempool.Mempool
	Server  *gossip.Server
	Miner   *worker.Miner
	TxGen   *worker.TxGenerator
	Genesis genesis.Genesis
}

// PublicRoutes binds the wallet-facing routes.
func PublicRoutes(tm *httptreemux.TreeMux, cfg Config) {
	pbl := public.Handlers{
		Log:     cfg.Log,
		Chain:   cfg.Chain,
		Pool:    cfg.Pool,
		Server:  cfg.Server,
		Genesis: cfg.Genesis,
	}

	tm.Handle(http.MethodGet, "/v1/genesis", handlers.WithTracing(cfg.Log, "genesis", pbl.Genesis))
	tm.Handle(http.MethodGet, "/v1/accounts", handlers.WithTracing(cfg.Log, "accounts", pbl.Accounts))
	tm.Handle(http.MethodGet, "/v1/accounts/:address", handlers.WithTracing(cfg.Log, "accounts", pbl.Accounts))
	tm.Handle(http.MethodGet, "/v1/tx/uncommitted", handlers.WithTracing(cfg.Log, "mempool", pbl.Mempool))
	tm.Handle(http.MethodPost, "/v1/tx/submit", handlers.WithTracing(cfg.Log, "submit-tx", pbl.SubmitTransaction))
}

// PrivateRoutes binds the operator-facing routes.
func PrivateRoutes(tm *httptreemux.TreeMux, cfg Config) {
	prv := private.Handlers{
		Log:    cfg.Log,
		Chain:  cfg.Chain,
		Server: cfg.Server,
		Miner:  cfg.Miner,
		TxGen:  cfg.TxGen,
	}

	tm.Handle(http.MethodGet, "/v1/node/status", handlers.WithTracing(cfg.Log, "node-status", prv.Status))
	tm.Handle(http.MethodPost, "/v1/node/miner/start", handlers.WithTracing(cfg.Log, "miner-start", prv.StartMiner))
	tm.Handle(http.MethodPost, "/v1/node/miner/stop", handlers.WithTracing(cfg.Log, "miner-stop", prv.StopMiner))
	tm.Handle(http.MethodPost, "/v1/node/txgen/start", handlers.WithTracing(cfg.Log, "txgen-start", prv.StartTxGenerator))
	tm.Handle(http.MethodPost, "/v1/node/txgen/stop", handlers.WithTracing(cfg.Log, "txgen-stop", prv.StopTxGenerator))
	tm.Handle(http.MethodPost, "/v1/node/peers", handlers.WithTracing(cfg.Log, "dial-peer", prv.Dial))
}
