package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/btcsuite/btcd/rpcclient"
	"github.com/goodnatureofminers/hybridconsensus/internal/chain"
	"github.com/goodnatureofminers/hybridconsensus/internal/chaincfg"
	"github.com/goodnatureofminers/hybridconsensus/internal/consensus"
	"github.com/goodnatureofminers/hybridconsensus/internal/metrics"
	"github.com/goodnatureofminers/hybridconsensus/internal/model"
	"github.com/goodnatureofminers/hybridconsensus/internal/node"
	rpcclient2 "github.com/goodnatureofminers/hybridconsensus/internal/pkg/btcd/rpcclient"
	"github.com/goodnatureofminers/hybridconsensus/internal/repository/clickhouse"
	"github.com/goodnatureofminers/hybridconsensus/internal/verifier"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type config struct {
	ClickhouseDSN string        `long:"clickhouse-dsn" env:"CONSENSUS_VERIFIER_CLICKHOUSE_DSN" description:"ClickHouse DSN"`
	Network       model.Network `long:"network" env:"CONSENSUS_VERIFIER_NETWORK" description:"network name (mainnet, testnet, regtest)" required:"true"`
	RPCURL        string        `long:"rpc-url" env:"CONSENSUS_VERIFIER_RPC_URL" description:"node RPC URL" default:"http://127.0.0.1:8332"`
	RPCUser       string        `long:"rpc-user" env:"CONSENSUS_VERIFIER_RPC_USER" description:"node RPC username"`
	RPCPassword   string        `long:"rpc-password" env:"CONSENSUS_VERIFIER_RPC_PASSWORD" description:"node RPC password"`
	ZMQAddr       string        `long:"zmq-addr" env:"CONSENSUS_VERIFIER_ZMQ_ADDR" description:"node ZMQ endpoint publishing hashblock"`
	BatchSize     int           `long:"batch-size" env:"CONSENSUS_VERIFIER_BATCH_SIZE" description:"heights fetched per iteration" default:"100"`
	Workers       int           `long:"workers" env:"CONSENSUS_VERIFIER_WORKERS" description:"concurrent block fetches" default:"8"`
	ReorgDepth    int           `long:"reorg-depth" env:"CONSENSUS_VERIFIER_REORG_DEPTH" description:"blocks re-verified after a branch switch" default:"100"`
	TxCacheSize   int           `long:"tx-cache-size" env:"CONSENSUS_VERIFIER_TX_CACHE_SIZE" description:"resolved transactions kept in memory" default:"10000"`
	SigCacheSize  uint          `long:"sig-cache-size" env:"CONSENSUS_VERIFIER_SIG_CACHE_SIZE" description:"verified signatures kept in memory" default:"50000"`
	MetricsAddr   string        `long:"metrics-addr" env:"CONSENSUS_VERIFIER_METRICS_ADDR" description:"address for metrics server" default:":2112"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	if cfg.ClickhouseDSN == "" {
		logger.Fatal("ClickHouse DSN is required")
	}

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("consensus verifier failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	params, err := chaincfg.ForNetwork(cfg.Network)
	if err != nil {
		return err
	}

	startMetricsServer(ctx, cfg.MetricsAddr, logger)

	repo, err := clickhouse.NewRepository(cfg.ClickhouseDSN, metrics.NewClickhouseRepository())
	if err != nil {
		return fmt.Errorf("init repository: %w", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Warn("failed to close repository", zap.Error(err))
		}
	}()

	if height, ok, err := repo.MaxBlockHeight(ctx, cfg.Network); err != nil {
		return fmt.Errorf("read stored height: %w", err)
	} else if ok {
		logger.Info("resuming after stored blocks", zap.Uint64("height", height))
	}

	rpcClient, err := newRPCClient(cfg.RPCURL, cfg.RPCUser, cfg.RPCPassword)
	if err != nil {
		return fmt.Errorf("init node rpc client: %w", err)
	}
	defer func() {
		rpcClient.Shutdown()
		rpcClient.WaitForShutdown()
	}()
	rpc := rpcclient2.NewObservedClient(rpcClient, metrics.NewRPCClient(cfg.Network))

	index := chain.NewIndex()
	validator, err := consensus.NewValidator(
		params,
		node.NewTxResolver(rpc, cfg.TxCacheSize),
		node.NewHeaderLookup(index, rpc, cfg.TxCacheSize),
		consensus.NewTxScriptVerifier(cfg.SigCacheSize),
		metrics.NewValidator(cfg.Network),
		logger,
	)
	if err != nil {
		return fmt.Errorf("init validator: %w", err)
	}

	blockSignal, err := startBlockSignal(ctx, cfg.ZMQAddr, logger)
	if err != nil {
		return fmt.Errorf("init block signal: %w", err)
	}

	svc, err := verifier.NewService(
		verifier.Config{
			Network:    cfg.Network,
			BatchSize:  cfg.BatchSize,
			Workers:    cfg.Workers,
			ReorgDepth: cfg.ReorgDepth,
		},
		node.NewBlockSource(rpc),
		repo,
		validator,
		index,
		metrics.NewVerifier(cfg.Network),
		logger.Named("verifier"),
		blockSignal,
	)
	if err != nil {
		return err
	}
	return svc.Run(ctx)
}

func startMetricsServer(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", zap.Error(err))
		}
	}()
}

func newRPCClient(rawURL, user, password string) (*rpcclient.Client, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse rpc url: %w", err)
	}
	if parsed.Scheme != "http" {
		return nil, fmt.Errorf("rpc url scheme %q not supported, use http", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.New("rpc url missing host")
	}

	return rpcclient.New(&rpcclient.ConnConfig{
		Host:         parsed.Host,
		User:         user,
		Pass:         password,
		HTTPPostMode: true,
		DisableTLS:   true,
	}, nil)
}
