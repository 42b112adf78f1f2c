package verifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/hybridconsensus/internal/chain"
	"github.com/goodnatureofminers/hybridconsensus/internal/consensus"
	"github.com/goodnatureofminers/hybridconsensus/internal/model"
	"github.com/goodnatureofminers/hybridconsensus/pkg/safe"
)

var errReorg = errors.New("block does not extend the indexed tip")

// verify checks block against the index tip, adds it to the index and returns its
// verdict. Rule violations produce a rejected record; transient failures and lookup
// errors are returned and leave the index untouched.
func (s *Service) verify(ctx context.Context, block *consensus.Block) (model.Block, error) {
	header := block.Header
	prev := s.index.Tip()
	if err := checkLink(prev, header); err != nil {
		return model.Block{}, err
	}

	pos := block.IsProofOfStake()
	record := model.Block{
		Network:      s.cfg.Network,
		Height:       uint64(header.Height),
		Hash:         header.Hash.String(),
		PrevHash:     header.PrevHash.String(),
		Timestamp:    time.Unix(header.Time, 0).UTC(),
		Bits:         header.Bits,
		ProofOfStake: pos,
		Status:       model.BlockAccepted,
		VerifiedAt:   s.clock.Now(),
	}

	// genesis is accepted as served
	required, proof := header.Bits, header.Hash
	if prev != nil {
		var err error
		required, proof, err = s.checkBlock(ctx, prev, block, pos)
		if err != nil {
			re, ok := consensus.AsRuleError(err)
			if !ok || re.Transient || errors.Is(err, consensus.ErrMissingAncestor) {
				return model.Block{}, err
			}
			penalty, convErr := safe.Uint32(re.Penalty)
			if convErr != nil {
				return model.Block{}, fmt.Errorf("penalty of block %s: %w", header.Hash, convErr)
			}
			record.Status = model.BlockRejected
			record.Reason = err.Error()
			record.Penalty = penalty
		}
	}
	record.RequiredBits = required
	if record.Status == model.BlockAccepted {
		record.ProofHash = proof.String()
	}

	node := &chain.Node{
		Hash:          header.Hash,
		Prev:          prev,
		Height:        header.Height,
		Time:          header.Time,
		Bits:          header.Bits,
		StakeModifier: consensus.ComputeStakeModifier(prev, block.StakeModifierKernel()),
		ProofOfStake:  pos,
	}
	if err := s.index.AddNode(node); err != nil {
		return model.Block{}, fmt.Errorf("index block %s: %w", header.Hash, err)
	}
	record.StakeModifier = node.StakeModifier.String()
	return record, nil
}

func checkLink(prev *chain.Node, header consensus.BlockHeader) error {
	if prev == nil {
		if header.Height != 0 {
			return fmt.Errorf("block %s at height %d has no indexed parent", header.Hash, header.Height)
		}
		return nil
	}
	if header.PrevHash != prev.Hash || header.Height != prev.Height+1 {
		return fmt.Errorf("%w: block %s at height %d builds on %s, tip is %s at %d",
			errReorg, header.Hash, header.Height, header.PrevHash, prev.Hash, prev.Height)
	}
	return nil
}

// checkBlock runs the target and proof checks for a non-genesis block. required is set
// whenever the target could be computed.
func (s *Service) checkBlock(ctx context.Context, prev *chain.Node, block *consensus.Block, pos bool) (uint32, chainhash.Hash, error) {
	header := block.Header

	required, err := s.validator.NextRequiredTarget(prev, header, pos)
	if err != nil {
		return 0, chainhash.Hash{}, err
	}
	if err := consensus.CheckDifficultyBits(header.Bits, required); err != nil {
		return required, chainhash.Hash{}, err
	}

	if !pos {
		if err := s.validator.CheckProofOfWork(&header.Hash, header.Bits); err != nil {
			return required, chainhash.Hash{}, err
		}
		return required, header.Hash, nil
	}

	params := s.validator.Params()
	coinStake := block.CoinStake()
	if !consensus.CheckStakeBlockTimestamp(header.Time, params) ||
		!consensus.CheckCoinStakeTimestamp(header.Time, int64(coinStake.Time), params) {
		return required, chainhash.Hash{}, &consensus.RuleError{
			Kind:   consensus.KindTimestamp,
			Reason: fmt.Sprintf("block %s at %d, coinstake at %d", header.Hash, header.Time, coinStake.Time),
			Err:    consensus.ErrCoinStakeTimestamp,
		}
	}

	proof, err := s.validator.CheckProofOfStake(ctx, prev, coinStake, header.Bits)
	if err != nil {
		return required, chainhash.Hash{}, err
	}
	return required, proof, nil
}
