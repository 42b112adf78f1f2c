package verifier

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// start rebuilds the index from the blocks persisted below the latest stored height.
func (s *Service) start(ctx context.Context) error {
	latest, ok, err := s.repo.LatestBlock(ctx, s.cfg.Network)
	if err != nil {
		return fmt.Errorf("latest stored block: %w", err)
	}
	to := uint64(0)
	if ok {
		to = latest.Height + 1
	}
	return s.restore(ctx, to)
}

// rewind drops the last ReorgDepth blocks so they are fetched again from the node's
// current branch.
func (s *Service) rewind(ctx context.Context) error {
	to := uint64(0)
	if tip := s.index.Tip(); tip != nil {
		to = uint64(tip.Height) + 1
	}
	depth := uint64(s.cfg.ReorgDepth)
	if to > depth {
		to -= depth
	} else {
		to = 0
	}
	return s.restore(ctx, to)
}

// restore resets the index and loads up to ReloadDepth persisted blocks below height to.
func (s *Service) restore(ctx context.Context, to uint64) error {
	s.index.Reset()
	if to == 0 {
		s.logger.Info("starting from genesis")
		return nil
	}

	from := uint64(0)
	if reload := uint64(s.cfg.ReloadDepth); to > reload {
		from = to - reload
	}
	records, err := s.repo.BlocksFromHeight(ctx, s.cfg.Network, from, int(to-from))
	if err != nil {
		return fmt.Errorf("load stored blocks from %d: %w", from, err)
	}

	if err := s.index.Restore(records); err != nil {
		return err
	}

	s.logger.Info("chain index restored",
		zap.Uint64("from", from),
		zap.Uint64("to", to),
		zap.Int("blocks", len(records)),
	)
	return nil
}
