package consensus

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

const sigHashMask = 0x1f

// TxScriptVerifier checks input scripts of timestamped transactions. Pay-to-pubkey and
// pay-to-pubkey-hash spends are verified against a signature hash that commits to the
// transaction time. Scripts without signature operations run through the btcd engine.
type TxScriptVerifier struct {
	sigCache *txscript.SigCache
}

// NewTxScriptVerifier returns a verifier with a signature cache of sigCacheSize entries.
func NewTxScriptVerifier(sigCacheSize uint) *TxScriptVerifier {
	return &TxScriptVerifier{sigCache: txscript.NewSigCache(sigCacheSize)}
}

// VerifyScript executes input inputIndex of txTo against prevOut.
func (v *TxScriptVerifier) VerifyScript(txTo *Tx, inputIndex int, prevOut *wire.TxOut, flags txscript.ScriptFlags) error {
	sigScript := txTo.MsgTx.TxIn[inputIndex].SignatureScript

	switch txscript.GetScriptClass(prevOut.PkScript) {
	case txscript.PubKeyHashTy:
		pushes, err := signaturePushes(sigScript, 2)
		if err != nil {
			return fmt.Errorf("input %d of %s: %w", inputIndex, txTo.Hash, err)
		}
		// OP_DUP OP_HASH160 <20 bytes> OP_EQUALVERIFY OP_CHECKSIG
		if !bytes.Equal(btcutil.Hash160(pushes[1]), prevOut.PkScript[3:23]) {
			return fmt.Errorf("input %d of %s: %w: pubkey hash mismatch", inputIndex, txTo.Hash, ErrScriptSignature)
		}
		return v.checkSig(txTo, inputIndex, prevOut.PkScript, pushes[0], pushes[1])

	case txscript.PubKeyTy:
		pushes, err := signaturePushes(sigScript, 1)
		if err != nil {
			return fmt.Errorf("input %d of %s: %w", inputIndex, txTo.Hash, err)
		}
		keys, err := txscript.PushedData(prevOut.PkScript)
		if err != nil || len(keys) != 1 {
			return fmt.Errorf("input %d of %s: %w: malformed pubkey script", inputIndex, txTo.Hash, ErrScriptSignature)
		}
		return v.checkSig(txTo, inputIndex, prevOut.PkScript, pushes[0], keys[0])
	}

	if hasSigOps(prevOut.PkScript) || hasSigOps(sigScript) {
		return fmt.Errorf("input %d of %s: %w", inputIndex, txTo.Hash, ErrUnsupportedScript)
	}

	fetcher := txscript.NewCannedPrevOutputFetcher(prevOut.PkScript, prevOut.Value)
	sigHashes := txscript.NewTxSigHashes(txTo.MsgTx, fetcher)

	vm, err := txscript.NewEngine(prevOut.PkScript, txTo.MsgTx, inputIndex, flags, v.sigCache, sigHashes, prevOut.Value, fetcher)
	if err != nil {
		return fmt.Errorf("init script engine: %w", err)
	}
	if err := vm.Execute(); err != nil {
		return fmt.Errorf("execute input %d of %s: %w", inputIndex, txTo.Hash, err)
	}
	return nil
}

func (v *TxScriptVerifier) checkSig(txTo *Tx, inputIndex int, subScript, sig, pubKey []byte) error {
	if len(sig) == 0 {
		return fmt.Errorf("input %d of %s: %w: empty signature", inputIndex, txTo.Hash, ErrScriptSignature)
	}
	hashType := txscript.SigHashType(sig[len(sig)-1])
	der := sig[:len(sig)-1]

	sigHash, err := TimestampedSigHash(txTo, inputIndex, subScript, hashType)
	if err != nil {
		return err
	}
	if v.sigCache.Exists(sigHash, der, pubKey) {
		return nil
	}

	signature, err := ecdsa.ParseSignature(der)
	if err != nil {
		return fmt.Errorf("input %d of %s: %w: %w", inputIndex, txTo.Hash, ErrScriptSignature, err)
	}
	key, err := btcec.ParsePubKey(pubKey)
	if err != nil {
		return fmt.Errorf("input %d of %s: %w: %w", inputIndex, txTo.Hash, ErrScriptSignature, err)
	}
	if !signature.Verify(sigHash[:], key) {
		return fmt.Errorf("input %d of %s: %w", inputIndex, txTo.Hash, ErrScriptSignature)
	}
	v.sigCache.Add(sigHash, der, pubKey)
	return nil
}

// TimestampedSigHash returns the legacy signature hash of input idx of tx with the
// transaction time serialized right after the version.
func TimestampedSigHash(tx *Tx, idx int, subScript []byte, hashType txscript.SigHashType) (chainhash.Hash, error) {
	if idx < 0 || idx >= len(tx.MsgTx.TxIn) {
		return chainhash.Hash{}, fmt.Errorf("%w: %d of %s", ErrInputIndex, idx, tx.Hash)
	}
	// out of range SIGHASH_SINGLE signs the value one
	if hashType&sigHashMask == txscript.SigHashSingle && idx >= len(tx.MsgTx.TxOut) {
		return chainhash.Hash{0x01}, nil
	}

	txCopy := tx.MsgTx.Copy()
	for i := range txCopy.TxIn {
		if i == idx {
			txCopy.TxIn[i].SignatureScript = subScript
		} else {
			txCopy.TxIn[i].SignatureScript = nil
		}
	}

	switch hashType & sigHashMask {
	case txscript.SigHashNone:
		txCopy.TxOut = txCopy.TxOut[:0]
		zeroOtherSequences(txCopy, idx)
	case txscript.SigHashSingle:
		txCopy.TxOut = txCopy.TxOut[:idx+1]
		for i := 0; i < idx; i++ {
			txCopy.TxOut[i].Value = -1
			txCopy.TxOut[i].PkScript = nil
		}
		zeroOtherSequences(txCopy, idx)
	}
	if hashType&txscript.SigHashAnyOneCanPay != 0 {
		txCopy.TxIn = txCopy.TxIn[idx : idx+1]
	}

	var body bytes.Buffer
	if err := txCopy.SerializeNoWitness(&body); err != nil {
		return chainhash.Hash{}, fmt.Errorf("serialize %s: %w", tx.Hash, err)
	}
	raw := body.Bytes()

	return chainhash.DoubleHashRaw(func(w io.Writer) error {
		// version, time, then inputs, outputs and lock time
		if _, err := w.Write(raw[:4]); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, tx.Time); err != nil {
			return err
		}
		if _, err := w.Write(raw[4:]); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, uint32(hashType))
	}), nil
}

func zeroOtherSequences(tx *wire.MsgTx, idx int) {
	for i := range tx.TxIn {
		if i != idx {
			tx.TxIn[i].Sequence = 0
		}
	}
}

func signaturePushes(sigScript []byte, want int) ([][]byte, error) {
	if !txscript.IsPushOnlyScript(sigScript) {
		return nil, fmt.Errorf("%w: signature script is not push only", ErrScriptSignature)
	}
	pushes, err := txscript.PushedData(sigScript)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptSignature, err)
	}
	if len(pushes) != want {
		return nil, fmt.Errorf("%w: got %d pushes, want %d", ErrScriptSignature, len(pushes), want)
	}
	return pushes, nil
}

func hasSigOps(script []byte) bool {
	tokenizer := txscript.MakeScriptTokenizer(0, script)
	for tokenizer.Next() {
		switch tokenizer.Opcode() {
		case txscript.OP_CHECKSIG, txscript.OP_CHECKSIGVERIFY,
			txscript.OP_CHECKMULTISIG, txscript.OP_CHECKMULTISIGVERIFY:
			return true
		}
	}
	return false
}
