package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/hybridconsensus/internal/chain"
	"github.com/goodnatureofminers/hybridconsensus/internal/chaincfg"
	"github.com/goodnatureofminers/hybridconsensus/internal/consensus"
	"github.com/goodnatureofminers/hybridconsensus/internal/metrics"
	"github.com/goodnatureofminers/hybridconsensus/internal/model"
	"github.com/goodnatureofminers/hybridconsensus/internal/node"
	rpcclient2 "github.com/goodnatureofminers/hybridconsensus/internal/pkg/btcd/rpcclient"
	"github.com/goodnatureofminers/hybridconsensus/internal/repository/clickhouse"
	"github.com/goodnatureofminers/hybridconsensus/internal/stakescan"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type config struct {
	ClickhouseDSN string        `long:"clickhouse-dsn" env:"STAKE_SCANNER_CLICKHOUSE_DSN" description:"ClickHouse DSN"`
	Network       model.Network `long:"network" env:"STAKE_SCANNER_NETWORK" description:"network name (mainnet, testnet, regtest)" required:"true"`
	RPCURL        string        `long:"rpc-url" env:"STAKE_SCANNER_RPC_URL" description:"node RPC URL" default:"http://127.0.0.1:8332"`
	RPCUser       string        `long:"rpc-user" env:"STAKE_SCANNER_RPC_USER" description:"node RPC username"`
	RPCPassword   string        `long:"rpc-password" env:"STAKE_SCANNER_RPC_PASSWORD" description:"node RPC password"`
	Outpoints     []string      `long:"outpoint" env:"STAKE_SCANNER_OUTPOINTS" env-delim:"," description:"owned output to scan as txid:index" required:"true"`
	MinDepth      int32         `long:"min-depth" env:"STAKE_SCANNER_MIN_DEPTH" description:"skip outputs confirmed within this many blocks" default:"10"`
	Window        time.Duration `long:"window" env:"STAKE_SCANNER_WINDOW" description:"how far ahead candidate timestamps are tried" default:"10m"`
	Interval      time.Duration `long:"interval" env:"STAKE_SCANNER_INTERVAL" description:"pause between scans" default:"1m"`
	Workers       int           `long:"workers" env:"STAKE_SCANNER_WORKERS" description:"concurrent kernel checks" default:"4"`
	TxCacheSize   int           `long:"tx-cache-size" env:"STAKE_SCANNER_TX_CACHE_SIZE" description:"resolved transactions kept in memory" default:"10000"`
	SigCacheSize  uint          `long:"sig-cache-size" env:"STAKE_SCANNER_SIG_CACHE_SIZE" description:"verified signatures kept in memory" default:"1000"`
	MetricsAddr   string        `long:"metrics-addr" env:"STAKE_SCANNER_METRICS_ADDR" description:"address for metrics server" default:":2113"`
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
		logger.Fatal("stake scanner failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	params, err := chaincfg.ForNetwork(cfg.Network)
	if err != nil {
		return err
	}
	outpoints, err := parseOutpoints(cfg.Outpoints)
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
	resolver := node.NewTxResolver(rpc, cfg.TxCacheSize)
	headers := node.NewHeaderLookup(index, rpc, cfg.TxCacheSize)

	validator, err := consensus.NewValidator(
		params,
		resolver,
		headers,
		consensus.NewTxScriptVerifier(cfg.SigCacheSize),
		metrics.NewValidator(cfg.Network),
		logger,
	)
	if err != nil {
		return fmt.Errorf("init validator: %w", err)
	}
	searcher, err := consensus.NewStakeSearcher(
		params,
		resolver,
		headers,
		node.NewWalletChecker(rpc),
		consensus.NewStakeCache(),
		logger,
	)
	if err != nil {
		return fmt.Errorf("init stake searcher: %w", err)
	}

	svc, err := stakescan.NewService(
		stakescan.Config{
			Network:   cfg.Network,
			Outpoints: outpoints,
			MinDepth:  cfg.MinDepth,
			Window:    cfg.Window,
			Interval:  cfg.Interval,
			Workers:   cfg.Workers,
		},
		repo,
		searcher,
		validator,
		index,
		metrics.NewStakeScanner(cfg.Network),
		logger.Named("stake_scanner"),
	)
	if err != nil {
		return err
	}
	return svc.Run(ctx)
}

func parseOutpoints(values []string) ([]wire.OutPoint, error) {
	outpoints := make([]wire.OutPoint, 0, len(values))
	for _, value := range values {
		txid, index, ok := strings.Cut(strings.TrimSpace(value), ":")
		if !ok {
			return nil, fmt.Errorf("outpoint %q: want txid:index", value)
		}
		hash, err := chainhash.NewHashFromStr(txid)
		if err != nil {
			return nil, fmt.Errorf("outpoint %q txid: %w", value, err)
		}
		n, err := strconv.ParseUint(index, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("outpoint %q index: %w", value, err)
		}
		outpoints = append(outpoints, wire.OutPoint{Hash: *hash, Index: uint32(n)})
	}
	return outpoints, nil
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
