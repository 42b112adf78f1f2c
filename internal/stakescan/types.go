package stakescan

import (
	"context"
	"time"

	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/hybridconsensus/internal/chain"
	"github.com/goodnatureofminers/hybridconsensus/internal/chaincfg"
	"github.com/goodnatureofminers/hybridconsensus/internal/consensus"
	"github.com/goodnatureofminers/hybridconsensus/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	ClickhouseRepository interface {
		LatestBlock(ctx context.Context, network model.Network) (model.Block, bool, error)
		BlocksFromHeight(ctx context.Context, network model.Network, from uint64, limit int) ([]model.Block, error)
	}
	KernelSearcher interface {
		CacheKernel(ctx context.Context, outpoint wire.OutPoint) error
		CheckKernel(ctx context.Context, prev *chain.Node, bits uint32, timeTx uint32, outpoint wire.OutPoint) (consensus.KernelResult, error)
		Cache() *consensus.StakeCache
	}
	Validator interface {
		Params() *chaincfg.Params
		NextRequiredTarget(prev *chain.Node, header consensus.BlockHeader, proofOfStake bool) (uint32, error)
	}
	Metrics interface {
		ObserveScan(err error, cacheEntries int, started time.Time)
		ObserveKernel(eligible bool, err error)
	}
)
