package metrics

import (
	"time"

	"github.com/goodnatureofminers/hybridconsensus/internal/consensus"
	"github.com/goodnatureofminers/hybridconsensus/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	validatorChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "validator",
		Name:      "checks_total",
		Help:      "Count of consensus checks by outcome.",
	}, []string{"check", "network", "status"})
	validatorCheckDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "validator",
		Name:      "check_duration_seconds",
		Help:      "Duration of consensus checks, including lookups they perform.",
		Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
	}, []string{"check", "network", "status"})
	validatorRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "validator",
		Name:      "rejections_total",
		Help:      "Count of failed consensus checks by error kind.",
	}, []string{"check", "network", "kind"})
)

// Validator tracks the outcome of consensus checks.
type Validator struct {
	network model.Network
}

// NewValidator constructs a Validator collector.
func NewValidator(network model.Network) *Validator {
	return &Validator{network: networkLabel(network)}
}

// ObserveCheck records one consensus check. Rule failures are counted as rejected or
// transient; anything else that failed is an error.
func (m Validator) ObserveCheck(check string, err error, started time.Time) {
	status := checkStatus(err)

	validatorChecksTotal.WithLabelValues(check, string(m.network), status).Inc()
	validatorCheckDuration.WithLabelValues(check, string(m.network), status).Observe(time.Since(started).Seconds())
	if re, ok := consensus.AsRuleError(err); ok {
		validatorRejectionsTotal.WithLabelValues(check, string(m.network), re.Kind.String()).Inc()
	}
}

func checkStatus(err error) string {
	if err == nil {
		return "success"
	}
	re, ok := consensus.AsRuleError(err)
	switch {
	case !ok:
		return "error"
	case re.Transient:
		return "transient"
	default:
		return "rejected"
	}
}
