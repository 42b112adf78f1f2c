package verifier

import (
	"context"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/hybridconsensus/internal/chain"
	"github.com/goodnatureofminers/hybridconsensus/internal/chaincfg"
	"github.com/goodnatureofminers/hybridconsensus/internal/consensus"
	"github.com/goodnatureofminers/hybridconsensus/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	BlockSource interface {
		LatestHeight(ctx context.Context) (uint64, error)
		FetchBlock(ctx context.Context, height uint64) (*consensus.Block, error)
	}
	ClickhouseRepository interface {
		LatestBlock(ctx context.Context, network model.Network) (model.Block, bool, error)
		BlocksFromHeight(ctx context.Context, network model.Network, from uint64, limit int) ([]model.Block, error)
		InsertBlocks(ctx context.Context, blocks []model.Block) error
	}
	Validator interface {
		Params() *chaincfg.Params
		NextRequiredTarget(prev *chain.Node, header consensus.BlockHeader, proofOfStake bool) (uint32, error)
		CheckProofOfWork(hash *chainhash.Hash, bits uint32) error
		CheckProofOfStake(ctx context.Context, prev *chain.Node, tx *consensus.Tx, bits uint32) (chainhash.Hash, error)
	}
	Metrics interface {
		ObserveFetch(err error, blocks int, started time.Time)
		ObserveBlock(block model.Block)
	}
)
