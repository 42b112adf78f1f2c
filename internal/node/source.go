package node

import (
	"context"
	"fmt"
	"math"

	"github.com/goodnatureofminers/hybridconsensus/internal/consensus"
	"github.com/goodnatureofminers/hybridconsensus/pkg/safe"
)

// BlockSource reads blocks by height from the node.
type BlockSource struct {
	rpc RPCClient
}

// NewBlockSource creates a BlockSource.
func NewBlockSource(rpc RPCClient) *BlockSource {
	return &BlockSource{rpc: rpc}
}

// LatestHeight returns the latest block height available from the node.
func (s *BlockSource) LatestHeight(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	count, err := s.rpc.GetBlockCount()
	if err != nil {
		return 0, err
	}
	height, err := safe.Uint64(count)
	if err != nil {
		return 0, fmt.Errorf("block count overflow: %w", err)
	}
	return height, nil
}

// FetchBlock retrieves a block with full transaction details at the given height.
func (s *BlockSource) FetchBlock(ctx context.Context, height uint64) (*consensus.Block, error) {
	if height > math.MaxInt32 {
		return nil, fmt.Errorf("block height %d exceeds chain limit", height)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hash, err := s.rpc.GetBlockHash(int64(height))
	if err != nil {
		return nil, fmt.Errorf("get block hash at height %d: %w", height, err)
	}
	src, err := s.rpc.GetBlockVerboseTx(hash)
	if err != nil {
		return nil, fmt.Errorf("get block %s: %w", hash, err)
	}

	block, err := BuildBlock(*src)
	if err != nil {
		return nil, err
	}
	if uint64(block.Header.Height) != height {
		return nil, fmt.Errorf("node returned block %s at height %d, want %d", hash, block.Header.Height, height)
	}
	return block, nil
}
