// Package stakescan periodically tests owned outputs for a stake kernel that would let
// them sign the next block.
package stakescan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/hybridconsensus/internal/chain"
	"github.com/goodnatureofminers/hybridconsensus/internal/clock"
	"github.com/goodnatureofminers/hybridconsensus/internal/consensus"
	"github.com/goodnatureofminers/hybridconsensus/internal/model"
	"github.com/goodnatureofminers/hybridconsensus/pkg/safe"
	"github.com/goodnatureofminers/hybridconsensus/pkg/workerpool"
	"go.uber.org/zap"
)

var errNoBlocks = errors.New("no verified blocks stored yet")

// Config holds the tunables of the Service. Zero values select defaults.
type Config struct {
	Network   model.Network
	Outpoints []wire.OutPoint
	// MinDepth skips outputs confirmed within the last MinDepth blocks.
	MinDepth int32
	// Window is how far past the current time candidate timestamps are tried.
	Window   time.Duration
	Interval time.Duration
	Workers  int
	// ReloadDepth is how many stored blocks back the index for retargeting and kernel
	// lookups.
	ReloadDepth int
}

// Kernel is a timestamp at which an output meets the stake target.
type Kernel struct {
	Outpoint      wire.OutPoint
	Time          uint32
	Bits          uint32
	ProofHash     chainhash.Hash
	BlockFromTime int64
}

type attempt struct {
	outpoint wire.OutPoint
	time     uint32
	bits     uint32
}

// Service scans the configured outputs on top of the latest verified block.
type Service struct {
	cfg       Config
	repo      ClickhouseRepository
	searcher  KernelSearcher
	validator Validator
	index     *chain.Index
	metrics   Metrics
	clock     clock.Clock
	logger    *zap.Logger
}

// NewService builds a Service. index must be the index the searcher looks blocks up in.
func NewService(
	cfg Config,
	repo ClickhouseRepository,
	searcher KernelSearcher,
	validator Validator,
	index *chain.Index,
	metrics Metrics,
	logger *zap.Logger,
) (*Service, error) {
	if repo == nil || searcher == nil || validator == nil || index == nil {
		return nil, errors.New("repository, kernel searcher, validator and index are required")
	}
	if metrics == nil {
		return nil, errors.New("stake scanner metrics is required")
	}
	if len(cfg.Outpoints) == 0 {
		return nil, errors.New("no outpoints to scan")
	}
	if cfg.Network == "" {
		cfg.Network = validator.Params().Network
	}
	if cfg.MinDepth < 1 {
		cfg.MinDepth = defaultMinDepth
	}
	if cfg.Window <= 0 {
		cfg.Window = defaultWindow
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.Workers < 1 {
		cfg.Workers = defaultWorkerCount
	}
	minReload := int(validator.Params().DifficultyAdjustmentInterval()) + 1
	if cfg.ReloadDepth < minReload {
		cfg.ReloadDepth = 2 * minReload
	}

	return &Service{
		cfg:       cfg,
		repo:      repo,
		searcher:  searcher,
		validator: validator,
		index:     index,
		metrics:   metrics,
		clock:     clock.System{},
		logger:    logger.With(zap.String("network", string(cfg.Network))),
	}, nil
}

// Run scans every Interval until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	for {
		if _, err := s.Scan(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("stake scan failed", zap.Error(err))
		}
		if err := s.clock.Sleep(ctx, s.cfg.Interval); err != nil {
			return err
		}
	}
}

// Scan returns every (output, timestamp) pair in the window that meets the stake target
// on top of the latest verified block.
func (s *Service) Scan(ctx context.Context) (kernels []Kernel, err error) {
	started := time.Now()
	defer func() {
		s.metrics.ObserveScan(err, s.searcher.Cache().Len(), started)
	}()

	tip, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	err = workerpool.Process(ctx, s.cfg.Workers, s.cfg.Outpoints, s.searcher.CacheKernel, nil)
	if err != nil {
		return nil, fmt.Errorf("cache kernels: %w", err)
	}

	outpoints := s.matureOutpoints(tip)
	if len(outpoints) == 0 {
		s.logger.Debug("no outputs can stake", zap.Int32("tip", tip.Height))
		return nil, nil
	}

	attempts, err := s.attempts(tip, outpoints)
	if err != nil {
		return nil, err
	}

	results, err := workerpool.Collect(ctx, s.cfg.Workers, attempts,
		func(ctx context.Context, a attempt) (consensus.KernelResult, error) {
			res, err := s.searcher.CheckKernel(ctx, tip, a.bits, a.time, a.outpoint)
			s.metrics.ObserveKernel(res.Eligible, err)
			return res, err
		})
	if err != nil {
		return nil, fmt.Errorf("check kernels: %w", err)
	}

	for i, res := range results {
		if !res.Eligible {
			continue
		}
		a := attempts[i]
		kernels = append(kernels, Kernel{
			Outpoint:      a.outpoint,
			Time:          a.time,
			Bits:          a.bits,
			ProofHash:     res.ProofHash,
			BlockFromTime: res.BlockFromTime,
		})
		s.logger.Info("stake kernel found",
			zap.Stringer("outpoint", a.outpoint),
			zap.Uint32("time", a.time),
			zap.Stringer("proof", res.ProofHash),
		)
	}

	s.logger.Info("stake scan completed",
		zap.Int32("tip", tip.Height),
		zap.Int("outpoints", len(outpoints)),
		zap.Int("attempts", len(attempts)),
		zap.Int("kernels", len(kernels)),
	)
	return kernels, nil
}

// load brings the index up to the latest verified block and returns its tip.
func (s *Service) load(ctx context.Context) (*chain.Node, error) {
	latest, ok, err := s.repo.LatestBlock(ctx, s.cfg.Network)
	if err != nil {
		return nil, fmt.Errorf("latest stored block: %w", err)
	}
	if !ok {
		return nil, errNoBlocks
	}
	if tip := s.index.Tip(); tip != nil && tip.Height >= 0 &&
		uint64(tip.Height) == latest.Height && tip.Hash.String() == latest.Hash {
		return tip, nil
	}

	to := latest.Height + 1
	from := uint64(0)
	if reload := uint64(s.cfg.ReloadDepth); to > reload {
		from = to - reload
	}
	records, err := s.repo.BlocksFromHeight(ctx, s.cfg.Network, from, int(to-from))
	if err != nil {
		return nil, fmt.Errorf("load stored blocks from %d: %w", from, err)
	}
	if err := s.index.Restore(records); err != nil {
		return nil, err
	}

	tip := s.index.Tip()
	if tip == nil {
		return nil, errNoBlocks
	}
	s.logger.Debug("chain index loaded", zap.Uint64("from", from), zap.Int32("tip", tip.Height))
	return tip, nil
}

// matureOutpoints returns the cached outputs not confirmed within the last MinDepth
// blocks.
func (s *Service) matureOutpoints(tip *chain.Node) []wire.OutPoint {
	cache := s.searcher.Cache()
	mature := make([]wire.OutPoint, 0, len(s.cfg.Outpoints))
	for _, outpoint := range s.cfg.Outpoints {
		entry, ok := cache.Get(outpoint)
		if !ok {
			s.logger.Debug("output unknown to the node", zap.Stringer("outpoint", outpoint))
			continue
		}
		if depth, recent := consensus.IsConfirmedInNPrevBlocks(entry.Location, tip, s.cfg.MinDepth); recent {
			s.logger.Debug("output confirmed too recently",
				zap.Stringer("outpoint", outpoint),
				zap.Int32("depth", depth),
			)
			continue
		}
		mature = append(mature, outpoint)
	}
	return mature
}

// attempts pairs outpoints with every masked timestamp after the tip in the window.
func (s *Service) attempts(tip *chain.Node, outpoints []wire.OutPoint) ([]attempt, error) {
	params := s.validator.Params()
	mask := int64(params.StakeTimestampMask)

	now := s.clock.Now().Unix()
	first := (now + mask) &^ mask
	if first <= tip.Time {
		first = (tip.Time + 1 + mask) &^ mask
	}
	last := now + int64(s.cfg.Window/time.Second)

	var attempts []attempt
	for ts := first; ts <= last; ts += mask + 1 {
		timeTx, err := safe.Uint32(ts)
		if err != nil {
			return nil, fmt.Errorf("candidate time %d: %w", ts, err)
		}
		header := consensus.BlockHeader{PrevHash: tip.Hash, Height: tip.Height + 1, Time: ts}
		bits, err := s.validator.NextRequiredTarget(tip, header, true)
		if err != nil {
			return nil, fmt.Errorf("stake target at %d: %w", ts, err)
		}
		for _, outpoint := range outpoints {
			attempts = append(attempts, attempt{outpoint: outpoint, time: timeTx, bits: bits})
		}
	}
	return attempts, nil
}
