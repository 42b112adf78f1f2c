package consensus

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a consensus check failed.
type ErrorKind int

const (
	// KindStructural covers missing or malformed inputs: unknown transactions and
	// blocks, out of range indexes.
	KindStructural ErrorKind = iota + 1
	// KindProtocol covers proofs a peer should not have sent.
	KindProtocol
	// KindArithmetic covers targets that do not decode to a valid value.
	KindArithmetic
	// KindTimestamp covers stake age and timestamp mask rules.
	KindTimestamp
)

func (k ErrorKind) String() string {
	switch k {
	case KindStructural:
		return "structural"
	case KindProtocol:
		return "protocol"
	case KindArithmetic:
		return "arithmetic"
	case KindTimestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

// Penalty scores attached to protocol violations.
const (
	PenaltyBadSignature = 100
	PenaltyKernelCheck  = 1
)

var (
	// ErrTxNotFound is returned by lookup capabilities for unknown transactions.
	ErrTxNotFound = errors.New("transaction not found")

	ErrNotCoinStake       = errors.New("not a coinstake transaction")
	ErrTxPrevNotFound     = errors.New("read txPrev failed")
	ErrBadSignature       = errors.New("coinstake signature verification failed")
	ErrBlockFromNotFound  = errors.New("block of previous transaction not found")
	ErrKernelCheck        = errors.New("check kernel failed")
	ErrNoPrevBlock        = errors.New("previous block required")
	ErrMissingAncestor    = errors.New("retarget window ancestor not loaded")
	ErrZeroStakeValue     = errors.New("staked output has zero value")
	ErrMinAgeViolation    = errors.New("min age violation")
	ErrKernelTargetMiss   = errors.New("kernel hash above weighted target")
	ErrBadTarget          = errors.New("target out of range")
	ErrHighHash           = errors.New("block hash above target")
	ErrBadDiffBits        = errors.New("incorrect difficulty bits")
	ErrCoinStakeTimestamp = errors.New("coinstake timestamp violation")
	ErrInputIndex         = errors.New("input index out of range")
	ErrPrevOutMissing     = errors.New("spent output missing from previous transaction")
	ErrPrevOutMismatch    = errors.New("previous transaction hash mismatch")
	ErrScriptSignature    = errors.New("script signature check failed")

	// ErrUnsupportedScript marks spends whose signature hash cannot be computed with the
	// transaction time. They are rejected without penalty.
	ErrUnsupportedScript = errors.New("unsupported signature script")
)

// RuleError is the result of a failed consensus check. Penalty is the misbehaviour
// score a caller may charge the peer that relayed the block; Transient marks failures
// that are expected while the node is still syncing and should be retried.
type RuleError struct {
	Kind      ErrorKind
	Penalty   int
	Transient bool
	Reason    string
	Err       error
}

func (e *RuleError) Error() string {
	if e.Reason == "" {
		return e.Err.Error()
	}
	return e.Reason + ": " + e.Err.Error()
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

func ruleError(kind ErrorKind, penalty int, err error, format string, args ...any) *RuleError {
	return &RuleError{
		Kind:    kind,
		Penalty: penalty,
		Reason:  fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// AsRuleError extracts the outermost RuleError from err.
func AsRuleError(err error) (*RuleError, bool) {
	var re *RuleError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// IsTransient reports whether err is a rule failure worth retrying later.
func IsTransient(err error) bool {
	re, ok := AsRuleError(err)
	return ok && re.Transient
}
