package metrics

import (
	"time"

	"github.com/goodnatureofminers/hybridconsensus/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stakeScanTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "stake_scanner",
		Name:      "scans_total",
		Help:      "Count of stake scans.",
	}, []string{"network", "status"})

	stakeScanDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "stake_scanner",
		Name:      "scan_duration_seconds",
		Help:      "Duration of one scan over all candidate outputs.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "status"})

	stakeKernelsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "stake_scanner",
		Name:      "kernels_total",
		Help:      "Count of kernel attempts by result.",
	}, []string{"network", "result"})

	stakeCacheEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "stake_scanner",
		Name:      "cache_entries",
		Help:      "Number of outputs in the stake cache.",
	}, []string{"network"})
)

// StakeScanner tracks metrics for the stake scanner.
type StakeScanner struct {
	network model.Network
}

// NewStakeScanner constructs a StakeScanner collector.
func NewStakeScanner(network model.Network) *StakeScanner {
	return &StakeScanner{network: networkLabel(network)}
}

// ObserveScan records one scan and the size of the stake cache after it.
func (m StakeScanner) ObserveScan(err error, cacheEntries int, started time.Time) {
	status := statusLabel(err)
	stakeScanTotal.WithLabelValues(string(m.network), status).Inc()
	stakeScanDuration.WithLabelValues(string(m.network), status).Observe(time.Since(started).Seconds())
	stakeCacheEntries.WithLabelValues(string(m.network)).Set(float64(cacheEntries))
}

// ObserveKernel records a single kernel attempt.
func (m StakeScanner) ObserveKernel(eligible bool, err error) {
	result := "miss"
	switch {
	case err != nil:
		result = "error"
	case eligible:
		result = "eligible"
	}
	stakeKernelsTotal.WithLabelValues(string(m.network), result).Inc()
}
