// Package node adapts a node's JSON-RPC interface to the lookups the consensus checks
// consume.
package node

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/hybridconsensus/internal/consensus"
	"github.com/goodnatureofminers/hybridconsensus/pkg/safe"
)

// CoinToAtoms converts a coin amount to the chain's smallest unit with overflow checks.
func CoinToAtoms(value float64) (int64, error) {
	amt, err := btcutil.NewAmount(value)
	if err != nil {
		return 0, err
	}
	if amt < 0 {
		return 0, fmt.Errorf("negative amount: %d", amt)
	}
	return int64(amt), nil
}

// ParseBits parses a bits string into a 32-bit value.
func ParseBits(value string) (uint32, error) {
	parsed, err := strconv.ParseUint(value, 16, 32)
	if err != nil {
		return 0, err
	}
	return uint32(parsed), nil
}

func parseHash(value string) (chainhash.Hash, error) {
	if value == "" {
		return chainhash.Hash{}, nil
	}
	h, err := chainhash.NewHashFromStr(value)
	if err != nil {
		return chainhash.Hash{}, err
	}
	return *h, nil
}

// BuildTx maps a verbose transaction into a consensus.Tx. The raw hex is not decoded
// because the chain serializes a timestamp bitcoin parsers do not expect.
func BuildTx(src btcjson.TxRawResult) (*consensus.Tx, error) {
	hash, err := chainhash.NewHashFromStr(src.Txid)
	if err != nil {
		return nil, fmt.Errorf("tx id %q: %w", src.Txid, err)
	}
	txTime, err := safe.Uint32(src.Time)
	if err != nil {
		return nil, fmt.Errorf("tx %s time: %w", src.Txid, err)
	}

	msg := wire.NewMsgTx(int32(src.Version))
	msg.LockTime = src.LockTime

	for idx, vin := range src.Vin {
		txIn, err := buildTxIn(vin)
		if err != nil {
			return nil, fmt.Errorf("tx %s input %d: %w", src.Txid, idx, err)
		}
		msg.AddTxIn(txIn)
	}

	for idx, vout := range src.Vout {
		if uint64(vout.N) != uint64(idx) {
			return nil, fmt.Errorf("tx %s output %d reported as n=%d", src.Txid, idx, vout.N)
		}
		value, err := CoinToAtoms(vout.Value)
		if err != nil {
			return nil, fmt.Errorf("tx %s output %d value: %w", src.Txid, idx, err)
		}
		pkScript, err := hex.DecodeString(vout.ScriptPubKey.Hex)
		if err != nil {
			return nil, fmt.Errorf("tx %s output %d script: %w", src.Txid, idx, err)
		}
		msg.AddTxOut(wire.NewTxOut(value, pkScript))
	}

	return &consensus.Tx{Hash: *hash, Time: txTime, MsgTx: msg}, nil
}

func buildTxIn(vin btcjson.Vin) (*wire.TxIn, error) {
	if vin.IsCoinBase() {
		script, err := hex.DecodeString(vin.Coinbase)
		if err != nil {
			return nil, fmt.Errorf("coinbase script: %w", err)
		}
		txIn := wire.NewTxIn(wire.NewOutPoint(&chainhash.Hash{}, math.MaxUint32), script, nil)
		txIn.Sequence = vin.Sequence
		return txIn, nil
	}

	prevHash, err := chainhash.NewHashFromStr(vin.Txid)
	if err != nil {
		return nil, fmt.Errorf("prev tx id %q: %w", vin.Txid, err)
	}
	var sigScript []byte
	if vin.ScriptSig != nil {
		if sigScript, err = hex.DecodeString(vin.ScriptSig.Hex); err != nil {
			return nil, fmt.Errorf("signature script: %w", err)
		}
	}
	var witness wire.TxWitness
	for _, item := range vin.Witness {
		data, err := hex.DecodeString(item)
		if err != nil {
			return nil, fmt.Errorf("witness: %w", err)
		}
		witness = append(witness, data)
	}

	txIn := wire.NewTxIn(wire.NewOutPoint(prevHash, vin.Vout), sigScript, witness)
	txIn.Sequence = vin.Sequence
	return txIn, nil
}

// BuildBlock maps a verbose block with transactions into a consensus.Block.
func BuildBlock(src btcjson.GetBlockVerboseTxResult) (*consensus.Block, error) {
	header, err := buildHeader(src.Hash, src.PreviousHash, src.Height, src.Time, src.Bits)
	if err != nil {
		return nil, err
	}

	txs := make([]*consensus.Tx, 0, len(src.Tx))
	for _, rawTx := range src.Tx {
		tx, err := BuildTx(rawTx)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", src.Height, err)
		}
		txs = append(txs, tx)
	}
	return &consensus.Block{Header: header, Transactions: txs}, nil
}

// BuildHeader maps a verbose block header into a consensus.BlockHeader.
func BuildHeader(src btcjson.GetBlockHeaderVerboseResult) (consensus.BlockHeader, error) {
	return buildHeader(src.Hash, src.PreviousHash, int64(src.Height), src.Time, src.Bits)
}

func buildHeader(hash, prevHash string, height, timestamp int64, bits string) (consensus.BlockHeader, error) {
	h, err := parseHash(hash)
	if err != nil {
		return consensus.BlockHeader{}, fmt.Errorf("block %d hash: %w", height, err)
	}
	prev, err := parseHash(prevHash)
	if err != nil {
		return consensus.BlockHeader{}, fmt.Errorf("block %d prev hash: %w", height, err)
	}
	h32, err := safe.Int32(height)
	if err != nil {
		return consensus.BlockHeader{}, fmt.Errorf("block height %d overflow: %w", height, err)
	}
	parsedBits, err := ParseBits(bits)
	if err != nil {
		return consensus.BlockHeader{}, fmt.Errorf("block %d bits parse: %w", height, err)
	}
	return consensus.BlockHeader{
		Hash:     h,
		PrevHash: prev,
		Height:   h32,
		Time:     timestamp,
		Bits:     parsedBits,
	}, nil
}
