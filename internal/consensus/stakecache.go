package consensus

import (
	"github.com/btcsuite/btcd/wire"
	cmap "github.com/orcaman/concurrent-map"
)

// StakeCacheEntry memoizes what the stake search reads for one staked output.
type StakeCacheEntry struct {
	BlockFrom BlockHeader
	Location  TxLocation
	TxPrev    *Tx
}

// StakeCache is a process-lifetime cache of stake entries keyed by outpoint. Entries are
// inserted once and never replaced or evicted. It is safe for concurrent use.
type StakeCache struct {
	entries cmap.ConcurrentMap
}

// NewStakeCache returns an empty cache.
func NewStakeCache() *StakeCache {
	return &StakeCache{entries: cmap.New()}
}

// Get returns the entry cached for outpoint.
func (c *StakeCache) Get(outpoint wire.OutPoint) (StakeCacheEntry, bool) {
	v, ok := c.entries.Get(outpoint.String())
	if !ok {
		return StakeCacheEntry{}, false
	}
	return v.(StakeCacheEntry), true
}

// Has reports whether outpoint is cached.
func (c *StakeCache) Has(outpoint wire.OutPoint) bool {
	return c.entries.Has(outpoint.String())
}

// Insert stores entry unless outpoint is already cached and reports whether it did.
func (c *StakeCache) Insert(outpoint wire.OutPoint, entry StakeCacheEntry) bool {
	return c.entries.SetIfAbsent(outpoint.String(), entry)
}

// Len returns the number of cached outpoints.
func (c *StakeCache) Len() int {
	return c.entries.Count()
}
