package consensus

import (
	"context"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/hybridconsensus/internal/chain"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// TxResolver looks a transaction up by hash and reports the block that confirmed it.
	TxResolver interface {
		ResolveTransaction(ctx context.Context, hash *chainhash.Hash) (*Tx, *chainhash.Hash, error)
	}
	// BlockLookup resolves a block hash to its index entry.
	BlockLookup interface {
		LookupNode(ctx context.Context, hash *chainhash.Hash) (*chain.Node, error)
	}
	// ScriptVerifier evaluates input inputIndex of txTo against the output it spends.
	ScriptVerifier interface {
		VerifyScript(txTo *Tx, inputIndex int, prevOut *wire.TxOut, flags txscript.ScriptFlags) error
	}
	// LocalTxChecker reports whether the local wallet holds a transaction.
	LocalTxChecker interface {
		HasLocalCopyOf(ctx context.Context, hash *chainhash.Hash) (bool, error)
	}
	// TxIndexReader reads the transaction holding an outpoint and where it is stored.
	TxIndexReader interface {
		ReadTransactionIndex(ctx context.Context, outpoint wire.OutPoint) (*Tx, TxLocation, error)
	}
	// BlockReader reads the header of the block at a stored location.
	BlockReader interface {
		ReadBlockHeader(ctx context.Context, location TxLocation) (BlockHeader, error)
	}
	// StakeStore is everything the stake search reads from storage.
	StakeStore interface {
		TxResolver
		TxIndexReader
		BlockReader
	}
	// Metrics records the outcome and latency of each consensus check.
	Metrics interface {
		ObserveCheck(check string, err error, started time.Time)
	}
)
