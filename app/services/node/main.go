package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/common-nighthawk/go-figure"
	"github.com/dimfeld/httptreemux/v5"
	"go.uber.org/zap"

	"github.com/qcbit/gossipchain/app/services/node/handlers"
	v1 "github.com/qcbit/gossipchain/app/services/node/handlers/v1"
	"github.com/qcbit/gossipchain/foundation/blockchain/chain"
	"github.com/qcbit/gossipchain/foundation/blockchain/genesis"
	"github.com/qcbit/gossipchain/foundation/blockchain/gossip"
	"github.com/qcbit/gossipchain/foundation/blockchain/mempool"
	"github.com/qcbit/gossipchain/foundation/blockchain/peer"
	"github.com/qcbit/gossipchain/foundation/blockchain/worker"
	"github.com/qcbit/gossipchain/foundation/logger"
)

// build is the git version of this program, set using build flags in the makefile.
var build = "develop"

func main() {
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
			PrivateHost     string        `conf:"default:0.0.0.0:9080"`
		}
		Gossip struct {
			ListenHost string   `conf:"default:0.0.0.0:9000"`
			KnownPeers []string `conf:"optional"`
			Workers    int      `conf:"default:4"`
		}
		Mining struct {
			Enabled      bool   `conf:"default:false"`
			LambdaMicros uint64 `conf:"default:2000000"`
		}
		TxGen struct {
			Enabled      bool   `conf:"default:false"`
			IdentityIdx  int    `conf:"default:0"`
			LambdaMicros uint64 `conf:"default:5000000"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "A peer-to-peer proof-of-work blockchain node.",
		},
	}

	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	banner := figure.NewFigure("gossipchain", "", true)
	banner.Print()

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	ev := func(format string, args ...any) {
		log.Infow(fmt.Sprintf(format, args...))
	}

	// ----------------------------------------------------------------
	// Blockchain Support

	gen, err := genesis.New()
	if err != nil {
		return fmt.Errorf("building genesis: %w", err)
	}

	c := chain.New(gen)
	pool := mempool.New()
	orphans := chain.NewOrphanPool()
	latency := chain.NewLatencyAggregate()

	server := gossip.New(gossip.EventHandler(ev))
	if err := server.Listen(cfg.Gossip.ListenHost); err != nil {
		return fmt.Errorf("starting gossip listener: %w", err)
	}
	log.Infow("startup", "status", "gossip listener started", "host", cfg.Gossip.ListenHost)

	for _, host := range cfg.Gossip.KnownPeers {
		if err := server.Dial(peer.Peer{Host: host}); err != nil {
			log.Infow("startup", "status", "dial known peer failed", "host", host, "ERROR", err)
		}
	}

	netWorker := worker.NewNetworkWorker(c, orphans, pool, server, latency, cfg.Gossip.Workers, worker.EventHandler(ev))
	netWorker.Run()

	miner := worker.NewMiner(c, pool, server, worker.EventHandler(ev))
	miner.Run()
	if cfg.Mining.Enabled {
		miner.Start(cfg.Mining.LambdaMicros)
	}

	if cfg.TxGen.IdentityIdx < 0 || cfg.TxGen.IdentityIdx >= len(gen.Identities) {
		return fmt.Errorf("tx generator identity index %d out of range [0,%d)", cfg.TxGen.IdentityIdx, len(gen.Identities))
	}
	txGen := worker.NewTxGenerator(gen.Identities[cfg.TxGen.IdentityIdx], c, pool, server, worker.EventHandler(ev))
	txGen.Run()
	if cfg.TxGen.Enabled {
		txGen.Start(cfg.TxGen.LambdaMicros)
	}

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, handlers.DebugMux(build)); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing v1 public API support")

	publicMux := httptreemux.New()
	v1.PublicRoutes(publicMux, v1.Config{
		Log:     log,
		Chain:   c,
		Pool:    pool,
		Server:  server,
		Genesis: gen,
	})

	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Start Private Service

	log.Infow("startup", "status", "initializing v1 private API support")

	privateMux := httptreemux.New()
	v1.PrivateRoutes(privateMux, v1.Config{
		Log:    log,
		Chain:  c,
		Server: server,
		Miner:  miner,
		TxGen:  txGen,
	})

	private := http.Server{
		Addr:         cfg.Web.PrivateHost,
		Handler:      privateMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	go func() {
		log.Infow("startup", "status", "private api router started", "host", private.Addr)
		serverErrors <- private.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		miner.Exit()
		txGen.Exit()
		server.Close()

		ctx, cancelPri := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancelPri()

		log.Infow("shutdown", "status", "shutdown private API started")
		if err := private.Shutdown(ctx); err != nil {
			private.Close()
			return fmt.Errorf("could not stop private service gracefully: %w", err)
		}

		ctx, cancelPub := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancelPub()

		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}
