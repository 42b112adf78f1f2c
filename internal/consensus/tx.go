package consensus

import (
	"math"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// Tx is a transaction together with the fields the wire format of this chain adds on
// top of a bitcoin transaction: its own timestamp and the hash the node reports for it.
type Tx struct {
	Hash  chainhash.Hash
	Time  uint32
	MsgTx *wire.MsgTx
}

// IsCoinStake reports whether tx is a stake-generation transaction: the first input
// spends a real output, and the first of at least two outputs is empty.
func (tx *Tx) IsCoinStake() bool {
	if tx == nil || tx.MsgTx == nil {
		return false
	}
	m := tx.MsgTx
	if len(m.TxIn) == 0 || len(m.TxOut) < 2 {
		return false
	}
	if isNullOutPoint(m.TxIn[0].PreviousOutPoint) {
		return false
	}
	first := m.TxOut[0]
	return first.Value == 0 && len(first.PkScript) == 0
}

// Output returns output index of tx.
func (tx *Tx) Output(index uint32) (*wire.TxOut, bool) {
	if tx == nil || tx.MsgTx == nil || uint64(index) >= uint64(len(tx.MsgTx.TxOut)) {
		return nil, false
	}
	return tx.MsgTx.TxOut[index], true
}

func isNullOutPoint(op wire.OutPoint) bool {
	return op.Index == math.MaxUint32 && op.Hash == (chainhash.Hash{})
}

// BlockHeader carries the header fields consensus checks read.
type BlockHeader struct {
	Hash     chainhash.Hash
	PrevHash chainhash.Hash
	Height   int32
	Time     int64
	Bits     uint32
}

// Block is a header with its transactions in block order.
type Block struct {
	Header       BlockHeader
	Transactions []*Tx
}

// IsProofOfStake reports whether the second transaction is a coinstake.
func (b *Block) IsProofOfStake() bool {
	return len(b.Transactions) > 1 && b.Transactions[1].IsCoinStake()
}

// CoinStake returns the coinstake of a PoS block, or nil.
func (b *Block) CoinStake() *Tx {
	if !b.IsProofOfStake() {
		return nil
	}
	return b.Transactions[1]
}

// StakeModifierKernel is the value mixed into the stake modifier of this block: the
// block hash for PoW blocks, the outpoint hash spent by the coinstake kernel for PoS.
func (b *Block) StakeModifierKernel() chainhash.Hash {
	if cs := b.CoinStake(); cs != nil {
		return cs.MsgTx.TxIn[0].PreviousOutPoint.Hash
	}
	return b.Header.Hash
}

// TxLocation identifies where the transaction index found a transaction.
type TxLocation struct {
	BlockHash chainhash.Hash
}

// StakedOutput is the snapshot of a coin the kernel hash needs.
type StakedOutput struct {
	Time  uint32
	Value int64
}

func stakedOutput(txPrev *Tx, index uint32) (StakedOutput, bool) {
	out, ok := txPrev.Output(index)
	if !ok {
		return StakedOutput{}, false
	}
	return StakedOutput{Time: txPrev.Time, Value: out.Value}, true
}
