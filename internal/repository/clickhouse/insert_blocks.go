package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/hybridconsensus/internal/model"
)

// InsertBlocks stores verification results. Rows for an already stored height replace
// the older row on merge.
func (r *Repository) InsertBlocks(ctx context.Context, blocks []model.Block) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("insert_blocks", firstNetwork(blocks), err, start)
	}()

	if len(blocks) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, "INSERT INTO consensus_blocks ("+blockColumns+"\n) VALUES")
	if err != nil {
		return fmt.Errorf("prepare blocks batch: %w", err)
	}
	defer func() {
		if !batch.IsSent() {
			_ = batch.Abort()
		}
	}()

	for _, block := range blocks {
		if err = batch.Append(
			string(block.Network),
			block.Height,
			block.Hash,
			block.PrevHash,
			block.Timestamp,
			block.Bits,
			block.RequiredBits,
			block.ProofOfStake,
			block.ProofHash,
			block.StakeModifier,
			string(block.Status),
			block.Reason,
			block.Penalty,
			block.VerifiedAt,
		); err != nil {
			return fmt.Errorf("append block %d: %w", block.Height, err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert blocks: %w", err)
	}
	return nil
}
