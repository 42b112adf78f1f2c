package chain

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/hybridconsensus/internal/model"
	"github.com/goodnatureofminers/hybridconsensus/pkg/safe"
)

// Restore replaces the index content with records, which must be sorted by height.
// Consecutive records are linked when the hashes agree; a gap starts a new segment whose
// first node has no parent.
func (i *Index) Restore(records []model.Block) error {
	i.Reset()

	var prev *Node
	for _, record := range records {
		node, prevHash, err := NodeFromBlock(record)
		if err != nil {
			return err
		}
		if prev != nil && prev.Hash == prevHash && prev.Height+1 == node.Height {
			node.Prev = prev
		}
		if err := i.AddNode(node); err != nil {
			return fmt.Errorf("restore block %d: %w", record.Height, err)
		}
		prev = node
	}
	return nil
}

// NodeFromBlock builds an unlinked node from a stored block and returns the hash of its
// parent.
func NodeFromBlock(record model.Block) (*Node, chainhash.Hash, error) {
	hash, err := chainhash.NewHashFromStr(record.Hash)
	if err != nil {
		return nil, chainhash.Hash{}, fmt.Errorf("stored block %d hash: %w", record.Height, err)
	}
	prevHash, err := chainhash.NewHashFromStr(record.PrevHash)
	if err != nil {
		return nil, chainhash.Hash{}, fmt.Errorf("stored block %d prev hash: %w", record.Height, err)
	}
	modifier, err := chainhash.NewHashFromStr(record.StakeModifier)
	if err != nil {
		return nil, chainhash.Hash{}, fmt.Errorf("stored block %d stake modifier: %w", record.Height, err)
	}
	height, err := safe.Int32(record.Height)
	if err != nil {
		return nil, chainhash.Hash{}, fmt.Errorf("stored block height %d: %w", record.Height, err)
	}

	return &Node{
		Hash:          *hash,
		Height:        height,
		Time:          record.Timestamp.Unix(),
		Bits:          record.Bits,
		StakeModifier: *modifier,
		ProofOfStake:  record.ProofOfStake,
	}, *prevHash, nil
}
