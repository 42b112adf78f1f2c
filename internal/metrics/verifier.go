package metrics

import (
	"time"

	"github.com/goodnatureofminers/hybridconsensus/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	verifierFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "verifier",
		Name:      "fetch_total",
		Help:      "Count of attempts to fetch upcoming blocks from the node.",
	}, []string{"network", "status"})

	verifierFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "verifier",
		Name:      "fetch_duration_seconds",
		Help:      "Duration of fetching a batch of blocks.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "status"})

	verifierFetchSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "verifier",
		Name:      "fetch_batch_size",
		Help:      "Number of blocks fetched per batch.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"network"})

	verifierBlocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "verifier",
		Name:      "blocks_total",
		Help:      "Count of verified blocks by verdict and proof type.",
	}, []string{"network", "status", "proof"})

	verifierPenaltyTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "verifier",
		Name:      "penalty_total",
		Help:      "Sum of misbehaviour scores of rejected blocks.",
	}, []string{"network"})

	verifierHeight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "verifier",
		Name:      "height",
		Help:      "Height of the last verified block.",
	}, []string{"network"})
)

// Verifier tracks metrics for the consensus verifier service.
type Verifier struct {
	network model.Network
}

// NewVerifier constructs a Verifier with defaults.
func NewVerifier(network model.Network) *Verifier {
	return &Verifier{network: networkLabel(network)}
}

// ObserveFetch records a fetch attempt outcome, its duration and how many blocks it returned.
func (m Verifier) ObserveFetch(err error, blocks int, started time.Time) {
	status := statusLabel(err)
	verifierFetchTotal.WithLabelValues(string(m.network), status).Inc()
	verifierFetchDuration.WithLabelValues(string(m.network), status).
		Observe(time.Since(started).Seconds())
	if err == nil {
		verifierFetchSize.WithLabelValues(string(m.network)).Observe(float64(blocks))
	}
}

// ObserveBlock records the verdict for one block.
func (m Verifier) ObserveBlock(block model.Block) {
	proof := "pow"
	if block.ProofOfStake {
		proof = "pos"
	}
	verifierBlocksTotal.WithLabelValues(string(m.network), string(block.Status), proof).Inc()
	if block.Penalty > 0 {
		verifierPenaltyTotal.WithLabelValues(string(m.network)).Add(float64(block.Penalty))
	}
	verifierHeight.WithLabelValues(string(m.network)).Set(float64(block.Height))
}
