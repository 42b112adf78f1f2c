package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/hybridconsensus/internal/model"
)

// LatestBlock returns the highest stored block of network. ok is false when nothing is
// stored yet.
func (r *Repository) LatestBlock(ctx context.Context, network model.Network) (block model.Block, ok bool, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("latest_block", network, err, start)
	}()

	query := "SELECT" + blockColumns + `
FROM consensus_blocks FINAL
WHERE network = ?
ORDER BY height DESC
LIMIT 1`

	rows, err := r.conn.Query(ctx, query, string(network))
	if err != nil {
		return model.Block{}, false, fmt.Errorf("query latest block: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return model.Block{}, false, fmt.Errorf("iterate latest block: %w", err)
		}
		return model.Block{}, false, nil
	}
	if block, err = scanBlock(rows); err != nil {
		return model.Block{}, false, err
	}
	if err = rows.Err(); err != nil {
		return model.Block{}, false, fmt.Errorf("iterate latest block: %w", err)
	}
	return block, true, nil
}
