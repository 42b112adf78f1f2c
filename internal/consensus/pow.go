package consensus

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/hybridconsensus/internal/chaincfg"
	"github.com/goodnatureofminers/hybridconsensus/pkg/compact"
)

// CheckProofOfWork verifies that bits decodes to a usable target no higher than the PoW
// limit and that hash does not exceed it.
func CheckProofOfWork(hash *chainhash.Hash, bits uint32, params *chaincfg.Params) error {
	target, negative, overflow := compact.Decode(bits)
	if negative || target.IsZero() || overflow || target.Gt(params.PowLimit) {
		return ruleError(KindArithmetic, 0, ErrBadTarget,
			"bits %08x (negative=%t overflow=%t limit %s)", bits, negative, overflow, params.PowLimit.Hex())
	}

	if compact.HashToInt(hash).Gt(target) {
		return ruleError(KindProtocol, 0, ErrHighHash, "hash %s target %s", hash, target.Hex())
	}
	return nil
}
