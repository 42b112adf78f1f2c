// Package consensus implements difficulty retargeting and proof validation for a chain
// that mixes proof-of-work and proof-of-stake blocks.
package consensus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/goodnatureofminers/hybridconsensus/internal/chain"
	"github.com/goodnatureofminers/hybridconsensus/internal/chaincfg"
	"go.uber.org/zap"
)

// Validator runs the block-level consensus checks against injected chain state.
type Validator struct {
	params  *chaincfg.Params
	txs     TxResolver
	blocks  BlockLookup
	scripts ScriptVerifier
	metrics Metrics
	logger  *zap.Logger
}

// NewValidator builds a Validator.
func NewValidator(
	params *chaincfg.Params,
	txs TxResolver,
	blocks BlockLookup,
	scripts ScriptVerifier,
	metrics Metrics,
	logger *zap.Logger,
) (*Validator, error) {
	if params == nil {
		return nil, errors.New("chain params are required")
	}
	if txs == nil || blocks == nil || scripts == nil {
		return nil, errors.New("transaction resolver, block lookup and script verifier are required")
	}
	if metrics == nil {
		return nil, errors.New("validator metrics is required")
	}
	return &Validator{
		params:  params,
		txs:     txs,
		blocks:  blocks,
		scripts: scripts,
		metrics: metrics,
		logger:  logger.Named("validator").With(zap.String("network", string(params.Network))),
	}, nil
}

// Params returns the chain parameters the validator checks against.
func (v *Validator) Params() *chaincfg.Params {
	return v.params
}

// NextRequiredTarget is NextRequiredTarget bound to the validator's parameters.
func (v *Validator) NextRequiredTarget(prev *chain.Node, header BlockHeader, proofOfStake bool) (bits uint32, err error) {
	started := time.Now()
	defer func() {
		v.metrics.ObserveCheck("next_required_target", err, started)
	}()
	return NextRequiredTarget(prev, header, proofOfStake, v.params)
}

// CheckProofOfWork is CheckProofOfWork bound to the validator's parameters.
func (v *Validator) CheckProofOfWork(hash *chainhash.Hash, bits uint32) (err error) {
	started := time.Now()
	defer func() {
		v.metrics.ObserveCheck("proof_of_work", err, started)
	}()

	if err = CheckProofOfWork(hash, bits, v.params); err != nil {
		v.logger.Debug("proof of work rejected", zap.Stringer("hash", hash), zap.Uint32("bits", bits), zap.Error(err))
	}
	return err
}

// CheckProofOfStake validates the coinstake tx of a block built on prev against bits
// and returns the kernel hash.
func (v *Validator) CheckProofOfStake(ctx context.Context, prev *chain.Node, tx *Tx, bits uint32) (proof chainhash.Hash, err error) {
	started := time.Now()
	defer func() {
		v.metrics.ObserveCheck("proof_of_stake", err, started)
	}()

	if !tx.IsCoinStake() {
		return chainhash.Hash{}, ruleError(KindStructural, 0, ErrNotCoinStake, "called on %s", tx.Hash)
	}

	txin := tx.MsgTx.TxIn[0]
	prevout := txin.PreviousOutPoint

	txPrev, blockHash, err := v.txs.ResolveTransaction(ctx, &prevout.Hash)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return chainhash.Hash{}, ctxErr
		}
		v.logger.Info("read txPrev failed", zap.Stringer("txPrev", prevout.Hash), zap.Error(err))
		return chainhash.Hash{}, &RuleError{
			Kind:      KindStructural,
			Transient: true,
			Reason:    prevout.Hash.String(),
			Err:       fmt.Errorf("%w: %w", ErrTxPrevNotFound, err),
		}
	}

	if err = v.VerifySignature(txPrev, tx, 0, txscript.ScriptFlags(0)); err != nil {
		v.logger.Warn("coinstake signature rejected", zap.Stringer("tx", tx.Hash), zap.Error(err))
		penalty := PenaltyBadSignature
		if errors.Is(err, ErrUnsupportedScript) {
			penalty = 0
		}
		return chainhash.Hash{}, &RuleError{
			Kind:    KindProtocol,
			Penalty: penalty,
			Reason:  "coinstake " + tx.Hash.String(),
			Err:     fmt.Errorf("%w: %w", ErrBadSignature, err),
		}
	}

	if blockHash == nil {
		err = chain.ErrUnknownBlock
	}
	var blockFrom *chain.Node
	if err == nil {
		blockFrom, err = v.blocks.LookupNode(ctx, blockHash)
	}
	if err != nil {
		v.logger.Debug("read block failed", zap.Stringer("txPrev", prevout.Hash), zap.Error(err))
		return chainhash.Hash{}, &RuleError{
			Kind:   KindStructural,
			Reason: "block of " + prevout.Hash.String(),
			Err:    fmt.Errorf("%w: %w", ErrBlockFromNotFound, err),
		}
	}

	// VerifySignature has already checked that the output exists
	staked, _ := stakedOutput(txPrev, prevout.Index)
	proof, err = CheckStakeKernelHash(prev, bits, blockFrom.Time, staked, prevout, tx.Time, v.params)
	if err != nil {
		// may occur during initial download or when behind on chain sync
		v.logger.Info("check kernel failed", zap.Stringer("tx", tx.Hash), zap.Error(err))
		return chainhash.Hash{}, &RuleError{
			Kind:    KindProtocol,
			Penalty: PenaltyKernelCheck,
			Reason:  "coinstake " + tx.Hash.String(),
			Err:     fmt.Errorf("%w: %w", ErrKernelCheck, err),
		}
	}
	return proof, nil
}

// VerifySignature checks that input inputIndex of txTo spends an existing output of
// txFrom and that its script satisfies that output.
func (v *Validator) VerifySignature(txFrom, txTo *Tx, inputIndex int, flags txscript.ScriptFlags) error {
	if inputIndex < 0 || inputIndex >= len(txTo.MsgTx.TxIn) {
		return ruleError(KindStructural, 0, ErrInputIndex, "input %d of %s", inputIndex, txTo.Hash)
	}
	prevout := txTo.MsgTx.TxIn[inputIndex].PreviousOutPoint

	out, ok := txFrom.Output(prevout.Index)
	if !ok {
		return ruleError(KindStructural, 0, ErrPrevOutMissing, "output %d of %s", prevout.Index, txFrom.Hash)
	}
	if prevout.Hash != txFrom.Hash {
		return ruleError(KindStructural, 0, ErrPrevOutMismatch, "input spends %s, got %s", prevout.Hash, txFrom.Hash)
	}

	return v.scripts.VerifyScript(txTo, inputIndex, out, flags)
}
