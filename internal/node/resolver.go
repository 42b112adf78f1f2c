package node

import (
	"context"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/golang/groupcache/lru"
	"github.com/goodnatureofminers/hybridconsensus/internal/chain"
	"github.com/goodnatureofminers/hybridconsensus/internal/consensus"
)

type resolvedTx struct {
	tx        *consensus.Tx
	blockHash chainhash.Hash
}

// TxResolver looks transactions and block headers up through the node's transaction
// index. Confirmed transactions are kept in an LRU cache; unconfirmed ones are not
// cached because their block is still unknown.
type TxResolver struct {
	rpc RPCClient

	mu    sync.Mutex
	cache *lru.Cache
}

// NewTxResolver creates a TxResolver caching up to cacheSize transactions.
func NewTxResolver(rpc RPCClient, cacheSize int) *TxResolver {
	return &TxResolver{
		rpc:   rpc,
		cache: lru.New(cacheSize),
	}
}

// ResolveTransaction returns the transaction with the given hash and the hash of the
// block that confirmed it, nil while it is unconfirmed.
func (r *TxResolver) ResolveTransaction(ctx context.Context, hash *chainhash.Hash) (*consensus.Tx, *chainhash.Hash, error) {
	if cached, ok := r.cached(*hash); ok {
		blockHash := cached.blockHash
		return cached.tx, &blockHash, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	src, err := r.rpc.GetRawTransactionVerbose(hash)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, fmt.Errorf("%w: %s", consensus.ErrTxNotFound, hash)
		}
		return nil, nil, fmt.Errorf("get transaction %s: %w", hash, err)
	}
	tx, err := BuildTx(*src)
	if err != nil {
		return nil, nil, err
	}
	if tx.Hash != *hash {
		return nil, nil, fmt.Errorf("node returned transaction %s for %s", tx.Hash, hash)
	}
	if src.BlockHash == "" {
		return tx, nil, nil
	}

	blockHash, err := chainhash.NewHashFromStr(src.BlockHash)
	if err != nil {
		return nil, nil, fmt.Errorf("transaction %s block hash: %w", hash, err)
	}
	r.store(resolvedTx{tx: tx, blockHash: *blockHash})
	return tx, blockHash, nil
}

// ReadTransactionIndex returns the confirmed transaction that created outpoint.
func (r *TxResolver) ReadTransactionIndex(ctx context.Context, outpoint wire.OutPoint) (*consensus.Tx, consensus.TxLocation, error) {
	tx, blockHash, err := r.ResolveTransaction(ctx, &outpoint.Hash)
	if err != nil {
		return nil, consensus.TxLocation{}, err
	}
	if blockHash == nil {
		return nil, consensus.TxLocation{}, fmt.Errorf("%w: %s is unconfirmed", consensus.ErrTxNotFound, outpoint.Hash)
	}
	if _, ok := tx.Output(outpoint.Index); !ok {
		return nil, consensus.TxLocation{}, fmt.Errorf("%w: %s has no output %d", consensus.ErrTxNotFound, outpoint.Hash, outpoint.Index)
	}
	return tx, consensus.TxLocation{BlockHash: *blockHash}, nil
}

// ReadBlockHeader returns the header of the block at location.
func (r *TxResolver) ReadBlockHeader(ctx context.Context, location consensus.TxLocation) (consensus.BlockHeader, error) {
	if err := ctx.Err(); err != nil {
		return consensus.BlockHeader{}, err
	}
	src, err := r.rpc.GetBlockHeaderVerbose(&location.BlockHash)
	if err != nil {
		if isNotFound(err) {
			return consensus.BlockHeader{}, fmt.Errorf("%w: %s", chain.ErrUnknownBlock, location.BlockHash)
		}
		return consensus.BlockHeader{}, fmt.Errorf("get block header %s: %w", location.BlockHash, err)
	}
	return BuildHeader(*src)
}

func (r *TxResolver) cached(hash chainhash.Hash) (resolvedTx, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.cache.Get(hash)
	if !ok {
		return resolvedTx{}, false
	}
	return v.(resolvedTx), true
}

func (r *TxResolver) store(entry resolvedTx) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Add(entry.tx.Hash, entry)
}
