// Package model defines the records persisted by the consensus verifier.
package model

import "time"

// BlockStatus is the verification verdict recorded for a block.
type BlockStatus string

var (
	// BlockAccepted marks a block whose target and proof passed every consensus check.
	BlockAccepted BlockStatus = "accepted"
	// BlockRejected marks a block that violated a consensus rule; Reason says which.
	BlockRejected BlockStatus = "rejected"
)

// Block is one verified block as stored in ClickHouse.
type Block struct {
	Network       Network
	Height        uint64
	Hash          string
	PrevHash      string
	Timestamp     time.Time
	Bits          uint32
	RequiredBits  uint32
	ProofOfStake  bool
	ProofHash     string
	StakeModifier string
	Status        BlockStatus
	Reason        string
	Penalty       uint32
	VerifiedAt    time.Time
}
