package node

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// WalletChecker answers whether the node's wallet holds a transaction.
type WalletChecker struct {
	rpc WalletRPC
}

// NewWalletChecker creates a WalletChecker.
func NewWalletChecker(rpc WalletRPC) *WalletChecker {
	return &WalletChecker{rpc: rpc}
}

// HasLocalCopyOf implements consensus.LocalTxChecker.
func (w *WalletChecker) HasLocalCopyOf(ctx context.Context, hash *chainhash.Hash) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if _, err := w.rpc.GetTransaction(hash); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("wallet transaction %s: %w", hash, err)
	}
	return true, nil
}
