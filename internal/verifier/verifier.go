// Package verifier follows a node and checks every block it serves against the
// consensus rules, recording the verdicts in ClickHouse.
package verifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/hybridconsensus/internal/chain"
	"github.com/goodnatureofminers/hybridconsensus/internal/clock"
	"github.com/goodnatureofminers/hybridconsensus/internal/model"
	"github.com/goodnatureofminers/hybridconsensus/pkg/batcher"
	"github.com/goodnatureofminers/hybridconsensus/pkg/workerpool"
	"go.uber.org/zap"
)

// Config holds the tunables of the Service. Zero values select defaults.
type Config struct {
	Network model.Network
	// BatchSize is how many upcoming heights are fetched per iteration.
	BatchSize int
	Workers   int
	// ReloadDepth is how many persisted blocks are loaded into the index on start. It
	// must cover a retarget window.
	ReloadDepth int
	// ReorgDepth is how far the index is rewound when the node switched branches.
	ReorgDepth int
}

// Service verifies blocks in height order starting after the last persisted one.
type Service struct {
	cfg         Config
	source      BlockSource
	repo        ClickhouseRepository
	validator   Validator
	index       *chain.Index
	metrics     Metrics
	clock       clock.Clock
	logger      *zap.Logger
	blockSignal <-chan struct{}

	restored bool
}

// NewService builds a Service. index must be the index the validator looks blocks up
// in.
func NewService(
	cfg Config,
	source BlockSource,
	repo ClickhouseRepository,
	validator Validator,
	index *chain.Index,
	metrics Metrics,
	logger *zap.Logger,
	blockSignal <-chan struct{},
) (*Service, error) {
	if source == nil || repo == nil || validator == nil || index == nil {
		return nil, errors.New("block source, repository, validator and index are required")
	}
	if metrics == nil {
		return nil, errors.New("verifier metrics is required")
	}
	if cfg.Network == "" {
		cfg.Network = validator.Params().Network
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Workers < 1 {
		cfg.Workers = defaultWorkerCount
	}
	minReload := int(validator.Params().DifficultyAdjustmentInterval()) + 1
	if cfg.ReloadDepth < minReload {
		cfg.ReloadDepth = 2 * minReload
	}
	if cfg.ReorgDepth < 1 {
		cfg.ReorgDepth = defaultReorgDepth
	}

	return &Service{
		cfg:         cfg,
		source:      source,
		repo:        repo,
		validator:   validator,
		index:       index,
		metrics:     metrics,
		clock:       clock.System{},
		logger:      logger.With(zap.String("network", string(cfg.Network))),
		blockSignal: blockSignal,
	}, nil
}

// Run verifies blocks until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	writer := s.newWriter()
	writer.Start(ctx)
	defer writer.Stop()

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.iterate(ctx, writer); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// rebuild from what was persisted before trying again
			s.restored = false
			s.logger.Warn("run iteration failed, backing off", zap.Error(err), zap.Duration("sleep", sleepDuration))
			if sleepErr := s.clock.Sleep(ctx, sleepDuration); sleepErr != nil {
				return sleepErr
			}
		}
	}
}

func (s *Service) newWriter() *batcher.Batcher[model.Block] {
	return batcher.New[model.Block](
		s.logger.Named("blockBatcher"),
		s.repo.InsertBlocks,
		s.cfg.BatchSize,
		blockBatcherFlushInterval,
		blockBatcherRPS,
	)
}

func (s *Service) iterate(ctx context.Context, writer *batcher.Batcher[model.Block]) error {
	if !s.restored {
		if err := s.start(ctx); err != nil {
			return err
		}
		s.restored = true
	}

	next := uint64(0)
	if tip := s.index.Tip(); tip != nil {
		next = uint64(tip.Height) + 1
	}
	latest, err := s.source.LatestHeight(ctx)
	if err != nil {
		return fmt.Errorf("latest height: %w", err)
	}
	if next > latest {
		s.logger.Debug("no new blocks; sleeping", zap.Uint64("next", next), zap.Duration("sleep", longSleepDuration))
		return s.wait(ctx, longSleepDuration)
	}

	heights := make([]uint64, 0, s.cfg.BatchSize)
	for h := next; h <= latest && len(heights) < s.cfg.BatchSize; h++ {
		heights = append(heights, h)
	}

	started := time.Now()
	blocks, err := workerpool.Collect(ctx, s.cfg.Workers, heights, s.source.FetchBlock)
	s.metrics.ObserveFetch(err, len(blocks), started)
	if err != nil {
		return fmt.Errorf("fetch blocks %d-%d: %w", heights[0], heights[len(heights)-1], err)
	}

	for _, block := range blocks {
		record, err := s.verify(ctx, block)
		if errors.Is(err, errReorg) {
			s.logger.Warn("node switched branches, rewinding", zap.Error(err), zap.Int("depth", s.cfg.ReorgDepth))
			if err := writer.Flush(ctx); err != nil {
				return fmt.Errorf("flush verified blocks: %w", err)
			}
			return s.rewind(ctx)
		}
		if err != nil {
			if flushErr := writer.Flush(ctx); flushErr != nil {
				return errors.Join(err, fmt.Errorf("flush verified blocks: %w", flushErr))
			}
			return err
		}

		s.metrics.ObserveBlock(record)
		if record.Status == model.BlockRejected {
			s.logger.Warn("block rejected",
				zap.Uint64("height", record.Height),
				zap.String("hash", record.Hash),
				zap.String("reason", record.Reason),
				zap.Uint32("penalty", record.Penalty),
			)
		}
		if err := writer.Add(ctx, record); err != nil {
			return err
		}
	}
	if err := writer.Flush(ctx); err != nil {
		return fmt.Errorf("flush verified blocks: %w", err)
	}
	s.logger.Info("verified blocks", zap.Uint64("from", heights[0]), zap.Uint64("to", heights[len(heights)-1]))

	if len(heights) < s.cfg.BatchSize {
		return s.wait(ctx, sleepDuration)
	}
	return nil
}

func (s *Service) wait(ctx context.Context, d time.Duration) error {
	if s.blockSignal == nil {
		return s.clock.Sleep(ctx, d)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.blockSignal:
		return nil
	case <-timer.C:
		return nil
	}
}
