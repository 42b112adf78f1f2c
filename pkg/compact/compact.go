// Package compact converts between 256-bit targets and their 32-bit compact ("bits") form.
package compact

import (
	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/holiman/uint256"
)

const (
	signBit      = 0x00800000
	mantissaMask = 0x007fffff
)

// Decode expands a compact target. The negative and overflow flags are reported
// separately so callers can reject such targets; the returned value ignores the sign.
func Decode(bits uint32) (target *uint256.Int, negative, overflow bool) {
	size := bits >> 24
	word := bits & mantissaMask

	target = new(uint256.Int)
	if size <= 3 {
		word >>= 8 * (3 - size)
		target.SetUint64(uint64(word))
	} else {
		target.SetUint64(uint64(word))
		target.Lsh(target, uint(8*(size-3)))
	}

	negative = word != 0 && bits&signBit != 0
	overflow = word != 0 && (size > 34 ||
		(word > 0xff && size > 33) ||
		(word > 0xffff && size > 32))
	return target, negative, overflow
}

// Encode returns the compact form of v. Precision beyond the 3 byte mantissa is dropped.
func Encode(v *uint256.Int) uint32 {
	return blockchain.BigToCompact(v.ToBig())
}

// Round returns v truncated to compact precision.
func Round(v *uint256.Int) *uint256.Int {
	n, _, _ := Decode(Encode(v))
	return n
}

// HashToInt interprets a hash as an unsigned 256-bit number using the protocol's byte order.
func HashToInt(h *chainhash.Hash) *uint256.Int {
	n, _ := uint256.FromBig(blockchain.HashToBig(h))
	return n
}

// HashFromInt is the inverse of HashToInt.
func HashFromInt(v *uint256.Int) chainhash.Hash {
	be := v.Bytes32()
	var h chainhash.Hash
	for i := range be {
		h[i] = be[len(be)-1-i]
	}
	return h
}

// Limit returns the largest value that fits in the given number of bits, e.g. Limit(252)
// is 0x0fff...ff.
func Limit(bits uint) *uint256.Int {
	n := new(uint256.Int).SetAllOne()
	if bits >= 256 {
		return n
	}
	return n.Rsh(n, 256-bits)
}
