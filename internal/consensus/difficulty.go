package consensus

import (
	"github.com/goodnatureofminers/hybridconsensus/internal/chain"
	"github.com/goodnatureofminers/hybridconsensus/internal/chaincfg"
	"github.com/goodnatureofminers/hybridconsensus/pkg/compact"
	"github.com/holiman/uint256"
)

// NextRequiredTarget returns the compact target the block described by header must carry
// when built on prev.
func NextRequiredTarget(prev *chain.Node, header BlockHeader, proofOfStake bool, params *chaincfg.Params) (uint32, error) {
	if proofOfStake {
		return params.PosLimitBits(), nil
	}
	powLimit := params.PowLimitBits()

	if prev == nil || prev.Height <= params.InitHeight {
		return powLimit, nil
	}

	last := prev.LastBlock(false)
	if last == nil || last.Prev == nil {
		return powLimit, nil
	}

	spacing := params.TargetSpacingSeconds()
	// stalled chain: let anyone mine the next block
	if header.Time > prev.Time+spacing*5 {
		return powLimit, nil
	}
	if header.Time < prev.Time+spacing/3 {
		// halves the compact encoding itself, not the target it decodes to
		return prev.Bits / 2, nil
	}

	heightFirst := int64(prev.Height) - (params.DifficultyAdjustmentInterval() - 1)
	if heightFirst < 0 {
		heightFirst = 1
	}
	first := prev.Ancestor(int32(heightFirst))
	if first == nil {
		return 0, ruleError(KindStructural, 0, ErrMissingAncestor, "ancestor at height %d of block %s", heightFirst, prev.Hash)
	}

	return CalculateNextWorkRequired(prev, first.Time, params, proofOfStake), nil
}

// CalculateNextWorkRequired scales last's target by the observed timespan since
// firstBlockTime. The ceiling is picked by proofOfStake, not by the type of last.
func CalculateNextWorkRequired(last *chain.Node, firstBlockTime int64, params *chaincfg.Params, proofOfStake bool) uint32 {
	timespan := params.TargetTimespanSeconds()

	actual := last.Time - firstBlockTime
	if actual < timespan/4 {
		actual = timespan / 4
	}
	if actual > timespan*4 {
		actual = timespan * 4
	}

	limit := params.PowLimit
	if proofOfStake {
		limit = params.PosLimit
	}

	bn, _, _ := compact.Decode(last.Bits)

	// the product may need one bit more than the limit has
	shift := bn.BitLen() > limit.BitLen()-1
	if shift {
		bn.Rsh(bn, 1)
	}
	bn.Mul(bn, uint256.NewInt(uint64(actual)))
	bn.Div(bn, uint256.NewInt(uint64(timespan)))
	if shift {
		bn.Lsh(bn, 1)
	}

	if bn.IsZero() || bn.Gt(limit) {
		bn.Set(limit)
	}
	return compact.Encode(bn)
}

// CheckDifficultyBits compares the bits a block carries with the required ones.
func CheckDifficultyBits(got, want uint32) error {
	if got != want {
		return ruleError(KindArithmetic, 0, ErrBadDiffBits, "block bits %08x, required %08x", got, want)
	}
	return nil
}
