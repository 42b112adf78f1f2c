package clickhouse

import (
	"fmt"

	"github.com/goodnatureofminers/hybridconsensus/internal/model"
)

const blockColumns = `
	network,
	height,
	hash,
	prev_hash,
	timestamp,
	bits,
	required_bits,
	proof_of_stake,
	proof_hash,
	stake_modifier,
	status,
	reason,
	penalty,
	verified_at`

func scanBlock(rows Rows) (model.Block, error) {
	var (
		block   model.Block
		network string
		status  string
	)
	if err := rows.Scan(
		&network,
		&block.Height,
		&block.Hash,
		&block.PrevHash,
		&block.Timestamp,
		&block.Bits,
		&block.RequiredBits,
		&block.ProofOfStake,
		&block.ProofHash,
		&block.StakeModifier,
		&status,
		&block.Reason,
		&block.Penalty,
		&block.VerifiedAt,
	); err != nil {
		return model.Block{}, fmt.Errorf("scan block: %w", err)
	}
	block.Network = model.Network(network)
	block.Status = model.BlockStatus(status)
	return block, nil
}

func firstNetwork(blocks []model.Block) model.Network {
	if len(blocks) == 0 {
		return ""
	}
	return blocks[0].Network
}
