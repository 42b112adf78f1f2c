package consensus

import (
	"context"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/hybridconsensus/internal/chain"
	"github.com/goodnatureofminers/hybridconsensus/internal/chaincfg"
	"go.uber.org/zap"
)

// KernelResult is the outcome of one stake attempt.
type KernelResult struct {
	Eligible bool
	// BlockFromTime is the time of the block that confirmed the staked output. It is
	// zero when the output could not be found.
	BlockFromTime int64
	ProofHash     chainhash.Hash
}

// StakeSearcher tests owned outputs for a kernel that meets the stake target. A
// missing coin is not an error here; it just cannot stake.
type StakeSearcher struct {
	params *chaincfg.Params
	store  StakeStore
	blocks BlockLookup
	wallet LocalTxChecker
	cache  *StakeCache
	logger *zap.Logger
}

// NewStakeSearcher builds a StakeSearcher. cache may be shared between searchers.
func NewStakeSearcher(
	params *chaincfg.Params,
	store StakeStore,
	blocks BlockLookup,
	wallet LocalTxChecker,
	cache *StakeCache,
	logger *zap.Logger,
) (*StakeSearcher, error) {
	if params == nil {
		return nil, errors.New("chain params are required")
	}
	if store == nil {
		return nil, errors.New("stake store is required")
	}
	if blocks == nil {
		return nil, errors.New("block lookup is required")
	}
	if wallet == nil {
		return nil, errors.New("wallet checker is required")
	}
	if cache == nil {
		cache = NewStakeCache()
	}
	return &StakeSearcher{
		params: params,
		store:  store,
		blocks: blocks,
		wallet: wallet,
		cache:  cache,
		logger: logger.Named("stake_searcher").With(zap.String("network", string(params.Network))),
	}, nil
}

// Cache returns the stake cache the searcher reads.
func (s *StakeSearcher) Cache() *StakeCache {
	return s.cache
}

// CheckKernel reports whether staking outpoint at timeTx on top of prev meets bits.
// Only lookup failures other than "not found" are returned as errors.
func (s *StakeSearcher) CheckKernel(
	ctx context.Context,
	prev *chain.Node,
	bits uint32,
	timeTx uint32,
	outpoint wire.OutPoint,
) (KernelResult, error) {
	var (
		txPrev        *Tx
		blockFromTime int64
	)
	if entry, ok := s.cache.Get(outpoint); ok {
		txPrev, blockFromTime = entry.TxPrev, entry.BlockFrom.Time
	} else {
		var blockHash *chainhash.Hash
		var err error
		txPrev, blockHash, err = s.store.ResolveTransaction(ctx, &outpoint.Hash)
		if err != nil {
			if errors.Is(err, ErrTxNotFound) {
				return KernelResult{}, nil
			}
			return KernelResult{}, fmt.Errorf("resolve %s: %w", outpoint.Hash, err)
		}
		if blockHash == nil {
			return KernelResult{}, nil
		}

		blockFrom, err := s.blocks.LookupNode(ctx, blockHash)
		if err != nil {
			if errors.Is(err, chain.ErrUnknownBlock) {
				return KernelResult{}, nil
			}
			return KernelResult{}, fmt.Errorf("lookup block %s: %w", blockHash, err)
		}
		blockFromTime = blockFrom.Time
	}

	result := KernelResult{BlockFromTime: blockFromTime}
	if blockFromTime+s.params.StakeMinAgeSeconds() > int64(timeTx) {
		return result, nil
	}

	local, err := s.wallet.HasLocalCopyOf(ctx, &outpoint.Hash)
	if err != nil {
		return result, fmt.Errorf("wallet lookup %s: %w", outpoint.Hash, err)
	}
	if !local {
		s.logger.Debug("coin not in wallet", zap.Stringer("outpoint", outpoint))
		return result, nil
	}

	return s.checkKernelHash(prev, bits, blockFromTime, txPrev, outpoint, timeTx), nil
}

func (s *StakeSearcher) checkKernelHash(
	prev *chain.Node,
	bits uint32,
	blockFromTime int64,
	txPrev *Tx,
	outpoint wire.OutPoint,
	timeTx uint32,
) KernelResult {
	result := KernelResult{BlockFromTime: blockFromTime}

	staked, ok := stakedOutput(txPrev, outpoint.Index)
	if !ok {
		return result
	}
	proof, err := CheckStakeKernelHash(prev, bits, blockFromTime, staked, outpoint, timeTx, s.params)
	if err != nil {
		return result
	}
	result.Eligible = true
	result.ProofHash = proof
	return result
}

// CacheKernel reads what CheckKernel needs for outpoint into the stake cache unless it
// is already there. Outputs the store does not know are skipped silently.
func (s *StakeSearcher) CacheKernel(ctx context.Context, outpoint wire.OutPoint) error {
	if s.cache.Has(outpoint) {
		return nil
	}

	txPrev, location, err := s.store.ReadTransactionIndex(ctx, outpoint)
	if err != nil {
		if errors.Is(err, ErrTxNotFound) {
			return nil
		}
		return fmt.Errorf("read tx index %s: %w", outpoint, err)
	}

	header, err := s.store.ReadBlockHeader(ctx, location)
	if err != nil {
		if errors.Is(err, chain.ErrUnknownBlock) {
			return nil
		}
		return fmt.Errorf("read block header %s: %w", location.BlockHash, err)
	}

	s.cache.Insert(outpoint, StakeCacheEntry{
		BlockFrom: header,
		Location:  location,
		TxPrev:    txPrev,
	})
	return nil
}
