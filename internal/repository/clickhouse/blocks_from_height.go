package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/hybridconsensus/internal/model"
)

// BlocksFromHeight returns up to limit stored blocks of network starting at height from,
// in ascending height order.
func (r *Repository) BlocksFromHeight(ctx context.Context, network model.Network, from uint64, limit int) (blocks []model.Block, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("blocks_from_height", network, err, start)
	}()

	if limit <= 0 {
		return nil, nil
	}

	query := "SELECT" + blockColumns + `
FROM consensus_blocks FINAL
WHERE network = ? AND height >= ?
ORDER BY height ASC
LIMIT ?`

	rows, err := r.conn.Query(ctx, query, string(network), from, limit)
	if err != nil {
		return nil, fmt.Errorf("query blocks from height: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	blocks = make([]model.Block, 0, limit)
	for rows.Next() {
		var block model.Block
		if block, err = scanBlock(rows); err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocks from height: %w", err)
	}
	return blocks, nil
}
