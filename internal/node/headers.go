package node

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/golang/groupcache/lru"
	"github.com/goodnatureofminers/hybridconsensus/internal/chain"
	"github.com/goodnatureofminers/hybridconsensus/internal/consensus"
)

// HeaderLookup resolves block hashes against a local index and falls back to the node
// for blocks the index does not hold. Nodes built from the node's answer carry the
// header fields only: no parent link and no stake modifier.
type HeaderLookup struct {
	index consensus.BlockLookup
	rpc   RPCClient

	mu    sync.Mutex
	cache *lru.Cache
}

// NewHeaderLookup creates a HeaderLookup. index may be nil.
func NewHeaderLookup(index consensus.BlockLookup, rpc RPCClient, cacheSize int) *HeaderLookup {
	return &HeaderLookup{
		index: index,
		rpc:   rpc,
		cache: lru.New(cacheSize),
	}
}

// LookupNode implements consensus.BlockLookup.
func (l *HeaderLookup) LookupNode(ctx context.Context, hash *chainhash.Hash) (*chain.Node, error) {
	if l.index != nil {
		node, err := l.index.LookupNode(ctx, hash)
		if err == nil {
			return node, nil
		}
		if !errors.Is(err, chain.ErrUnknownBlock) {
			return nil, err
		}
	}

	l.mu.Lock()
	v, ok := l.cache.Get(*hash)
	l.mu.Unlock()
	if ok {
		return v.(*chain.Node), nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := l.rpc.GetBlockHeaderVerbose(hash)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", chain.ErrUnknownBlock, hash)
		}
		return nil, fmt.Errorf("get block header %s: %w", hash, err)
	}
	header, err := BuildHeader(*src)
	if err != nil {
		return nil, err
	}

	node := &chain.Node{
		Hash:   header.Hash,
		Height: header.Height,
		Time:   header.Time,
		Bits:   header.Bits,
	}
	l.mu.Lock()
	l.cache.Add(*hash, node)
	l.mu.Unlock()
	return node, nil
}
