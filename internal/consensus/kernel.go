package consensus

import (
	"encoding/binary"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/hybridconsensus/internal/chain"
	"github.com/goodnatureofminers/hybridconsensus/internal/chaincfg"
	"github.com/goodnatureofminers/hybridconsensus/pkg/compact"
	"github.com/holiman/uint256"
)

// kernelPreimageSize is modifier, txPrev time, outpoint hash, outpoint index, tx time.
const kernelPreimageSize = chainhash.HashSize + 4 + chainhash.HashSize + 4 + 4

// ComputeStakeModifier derives the stake modifier of the block following prev. The
// genesis block has a zero modifier.
func ComputeStakeModifier(prev *chain.Node, kernel chainhash.Hash) chainhash.Hash {
	if prev == nil {
		return chainhash.Hash{}
	}

	var buf [2 * chainhash.HashSize]byte
	copy(buf[:chainhash.HashSize], kernel[:])
	copy(buf[chainhash.HashSize:], prev.StakeModifier[:])
	return chainhash.DoubleHashH(buf[:])
}

// StakeKernelHash hashes the kernel of a stake attempt. The field order is part of
// consensus.
func StakeKernelHash(modifier chainhash.Hash, txPrevTime uint32, prevout wire.OutPoint, timeTx uint32) chainhash.Hash {
	var buf [kernelPreimageSize]byte
	off := copy(buf[:], modifier[:])
	binary.LittleEndian.PutUint32(buf[off:], txPrevTime)
	off += 4
	off += copy(buf[off:], prevout.Hash[:])
	binary.LittleEndian.PutUint32(buf[off:], prevout.Index)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], timeTx)
	return chainhash.DoubleHashH(buf[:])
}

// CheckStakeKernelHash checks that the kernel hash of staking prevout at timeTx, divided
// by the staked value, meets the target encoded in bits. bits is not range checked here.
// On success it returns the kernel hash.
func CheckStakeKernelHash(
	prev *chain.Node,
	bits uint32,
	blockFromTime int64,
	staked StakedOutput,
	prevout wire.OutPoint,
	timeTx uint32,
	params *chaincfg.Params,
) (chainhash.Hash, error) {
	if prev == nil {
		return chainhash.Hash{}, ruleError(KindStructural, 0, ErrNoPrevBlock, "kernel of %s", prevout)
	}
	if staked.Value == 0 {
		return chainhash.Hash{}, ruleError(KindStructural, 0, ErrZeroStakeValue, "kernel of %s", prevout)
	}
	if blockFromTime+params.StakeMinAgeSeconds() > int64(timeTx) {
		return chainhash.Hash{}, ruleError(KindTimestamp, 0, ErrMinAgeViolation,
			"coin %s confirmed at %d, staking at %d, min age %ds", prevout, blockFromTime, timeTx, params.StakeMinAgeSeconds())
	}

	target, _, _ := compact.Decode(bits)

	proof := StakeKernelHash(prev.StakeModifier, staked.Time, prevout, timeTx)
	weighted := compact.HashToInt(&proof)
	weighted.Div(weighted, uint256.NewInt(uint64(staked.Value)))
	if weighted.Gt(target) {
		return chainhash.Hash{}, ruleError(KindProtocol, 0, ErrKernelTargetMiss, "kernel %s of %s", proof, prevout)
	}
	return proof, nil
}

// CheckCoinStakeTimestamp reports whether a coinstake timestamp is acceptable for a
// block timestamp. A transaction time that differs from the block time is rejected when
// its low bits under the stake timestamp mask are all zero.
func CheckCoinStakeTimestamp(blockTime, txTime int64, params *chaincfg.Params) bool {
	return blockTime == txTime || txTime&int64(params.StakeTimestampMask) != 0
}

// CheckStakeBlockTimestamp is CheckCoinStakeTimestamp for a header on its own.
func CheckStakeBlockTimestamp(blockTime int64, params *chaincfg.Params) bool {
	return CheckCoinStakeTimestamp(blockTime, blockTime, params)
}

// IsConfirmedInNPrevBlocks looks for the block holding location among the maxDepth
// blocks ending at from and returns how deep it is.
func IsConfirmedInNPrevBlocks(location TxLocation, from *chain.Node, maxDepth int32) (int32, bool) {
	for node := from; node != nil && from.Height-node.Height < maxDepth; node = node.Prev {
		if node.Hash == location.BlockHash {
			return from.Height - node.Height, true
		}
	}
	return 0, false
}
