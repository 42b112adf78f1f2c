// Package chain holds the in-memory view of block history used by the consensus checks.
package chain

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Node is the consensus-relevant part of one block in the index.
type Node struct {
	Hash chainhash.Hash

	// Prev is nil at genesis and at the first node of a partially loaded index.
	Prev *Node

	Height int32
	Time   int64
	Bits   uint32

	StakeModifier chainhash.Hash
	ProofOfStake  bool
}

// Ancestor returns the ancestor of n at height, or nil when height is out of range or
// the history is not loaded that far back.
func (n *Node) Ancestor(height int32) *Node {
	if n == nil || height < 0 || height > n.Height {
		return nil
	}

	node := n
	for node != nil && node.Height != height {
		node = node.Prev
	}
	return node
}

// LastBlock walks back from n to the most recent block of the requested type. When no
// such block exists it stops at the oldest loaded node.
func (n *Node) LastBlock(proofOfStake bool) *Node {
	node := n
	for node != nil && node.Prev != nil && node.ProofOfStake != proofOfStake {
		node = node.Prev
	}
	return node
}

// PrevHash returns the hash of the parent, or the zero hash when it is not linked.
func (n *Node) PrevHash() chainhash.Hash {
	if n.Prev == nil {
		return chainhash.Hash{}
	}
	return n.Prev.Hash
}
