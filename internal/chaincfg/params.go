// Package chaincfg defines the consensus parameters of each supported network.
package chaincfg

import (
	"fmt"
	"time"

	"github.com/goodnatureofminers/hybridconsensus/internal/model"
	"github.com/goodnatureofminers/hybridconsensus/pkg/compact"
	"github.com/holiman/uint256"
)

// GenesisBits is the compact target stamped into every network's genesis block.
const GenesisBits uint32 = 0x1e0fffff

// Params holds the parameters the retarget and proof checks depend on.
type Params struct {
	// Name is the network identifier used by the node ("main", "test", "regtest").
	Name string

	Network     model.Network
	DefaultPort string
	GenesisTime time.Time

	// PowLimit and PosLimit are the highest targets a PoW or PoS block may claim.
	PowLimit *uint256.Int
	PosLimit *uint256.Int

	// TargetTimespan is the window the retarget aims to fill with
	// TargetTimespan/TargetSpacing blocks.
	TargetTimespan time.Duration
	TargetSpacing  time.Duration

	// InitHeight is the last height of the bootstrap phase during which PoW blocks
	// are mined at PowLimit.
	InitHeight int32

	// StakeMinAge is how long an output must be confirmed before it may stake.
	StakeMinAge time.Duration

	// StakeTimestampMask constrains coinstake timestamps, see CheckCoinStakeTimestamp.
	StakeTimestampMask uint32
}

// PowLimitBits is PowLimit in compact form.
func (p *Params) PowLimitBits() uint32 {
	return compact.Encode(p.PowLimit)
}

// PosLimitBits is PosLimit in compact form.
func (p *Params) PosLimitBits() uint32 {
	return compact.Encode(p.PosLimit)
}

// TargetTimespanSeconds returns TargetTimespan in whole seconds.
func (p *Params) TargetTimespanSeconds() int64 {
	return int64(p.TargetTimespan / time.Second)
}

// TargetSpacingSeconds returns TargetSpacing in whole seconds.
func (p *Params) TargetSpacingSeconds() int64 {
	return int64(p.TargetSpacing / time.Second)
}

// StakeMinAgeSeconds returns StakeMinAge in whole seconds.
func (p *Params) StakeMinAgeSeconds() int64 {
	return int64(p.StakeMinAge / time.Second)
}

// DifficultyAdjustmentInterval is the number of blocks in one retarget window.
func (p *Params) DifficultyAdjustmentInterval() int64 {
	return p.TargetTimespanSeconds() / p.TargetSpacingSeconds()
}

// MainNetParams are the parameters of the production network.
var MainNetParams = Params{
	Name:               "main",
	Network:            model.Mainnet,
	DefaultPort:        "13701",
	GenesisTime:        time.Unix(1531180800, 0).UTC(),
	PowLimit:           compact.Limit(252),
	PosLimit:           compact.Limit(252),
	TargetTimespan:     time.Hour,
	TargetSpacing:      time.Minute,
	InitHeight:         60,
	StakeMinAge:        time.Minute,
	StakeTimestampMask: 0xf,
}

// TestNetParams are the parameters of the public test network.
var TestNetParams = Params{
	Name:               "test",
	Network:            model.Testnet,
	DefaultPort:        "13711",
	GenesisTime:        time.Unix(1531180801, 0).UTC(),
	PowLimit:           compact.Limit(236),
	PosLimit:           compact.Limit(236),
	TargetTimespan:     time.Hour,
	TargetSpacing:      time.Minute,
	InitHeight:         60,
	StakeMinAge:        8 * time.Hour,
	StakeTimestampMask: 0xf,
}

// RegressionNetParams are the parameters of the local regression test network.
var RegressionNetParams = Params{
	Name:           "regtest",
	Network:        model.Regtest,
	DefaultPort:    "13721",
	GenesisTime:    time.Unix(1531180802, 0).UTC(),
	PowLimit:       compact.Limit(255),
	PosLimit:       compact.Limit(256),
	TargetTimespan: 84 * time.Hour,
	TargetSpacing:  150 * time.Second,
	InitHeight:     1,
}

// ForNetwork returns the parameters registered for network.
func ForNetwork(network model.Network) (*Params, error) {
	switch network {
	case model.Mainnet:
		return &MainNetParams, nil
	case model.Testnet:
		return &TestNetParams, nil
	case model.Regtest:
		return &RegressionNetParams, nil
	default:
		return nil, fmt.Errorf("unknown network %q", network)
	}
}
