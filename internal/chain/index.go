package chain

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// ErrUnknownBlock is returned when a hash is not present in the index.
var ErrUnknownBlock = errors.New("block not in index")

// Index maps block hashes to nodes and tracks the highest node added.
type Index struct {
	mu    sync.RWMutex
	nodes map[chainhash.Hash]*Node
	tip   *Node
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{nodes: make(map[chainhash.Hash]*Node)}
}

// AddNode inserts node. A node whose parent is known must be linked to it.
func (i *Index) AddNode(node *Node) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, ok := i.nodes[node.Hash]; ok {
		return fmt.Errorf("block %s already indexed", node.Hash)
	}
	if node.Prev != nil {
		if known, ok := i.nodes[node.Prev.Hash]; !ok || known != node.Prev {
			return fmt.Errorf("block %s links to unindexed parent %s", node.Hash, node.Prev.Hash)
		}
		if node.Height != node.Prev.Height+1 {
			return fmt.Errorf("block %s height %d does not follow parent height %d", node.Hash, node.Height, node.Prev.Height)
		}
	}

	i.nodes[node.Hash] = node
	if i.tip == nil || node.Height > i.tip.Height {
		i.tip = node
	}
	return nil
}

// LookupNode returns the node with the given hash.
func (i *Index) LookupNode(_ context.Context, hash *chainhash.Hash) (*Node, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	node, ok := i.nodes[*hash]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBlock, hash)
	}
	return node, nil
}

// Tip returns the highest node, or nil for an empty index.
func (i *Index) Tip() *Node {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.tip
}

// Len returns the number of indexed nodes.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.nodes)
}

// Reset drops every node. Lookups holding the index see the empty state immediately.
func (i *Index) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.nodes = make(map[chainhash.Hash]*Node)
	i.tip = nil
}
