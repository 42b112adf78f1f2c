package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/hybridconsensus/internal/model"
)

// MaxBlockHeight returns the maximum height stored for network. ok is false when the
// network has no rows.
func (r *Repository) MaxBlockHeight(ctx context.Context, network model.Network) (height uint64, ok bool, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("max_block_height", network, err, start)
	}()

	const query = `
SELECT count() AS row_count, coalesce(max(height), toUInt64(0)) AS max_height
FROM consensus_blocks FINAL
WHERE network = ?`

	rows, err := r.conn.Query(ctx, query, string(network))
	if err != nil {
		return 0, false, fmt.Errorf("query max block height: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	if !rows.Next() {
		return 0, false, fmt.Errorf("max block height not found")
	}

	var count uint64
	if err = rows.Scan(&count, &height); err != nil {
		return 0, false, fmt.Errorf("scan max block height: %w", err)
	}
	if err = rows.Err(); err != nil {
		return 0, false, fmt.Errorf("iterate max block height: %w", err)
	}
	return height, count > 0, nil
}
