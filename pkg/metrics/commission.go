package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CommissionMetrics records distribution outcomes and rate-resolution
// fallbacks. The fallback counter exists because soft-failing to the default
// rate can mask data integrity problems and must stay visible.
type CommissionMetrics struct {
	distributions *prometheus.CounterVec
	reversals     *prometheus.CounterVec
	rateFallbacks *prometheus.CounterVec
}

// NewCommissionMetrics registers the commission metrics on the provided registerer.
func NewCommissionMetrics(reg prometheus.Registerer) *CommissionMetrics {
	if reg == nil {
		return &CommissionMetrics{}
	}
	distributions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "commission_distributions_total",
		Help: "Commission distribution attempts by outcome.",
	}, []string{"outcome"})
	reversals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "commission_reversals_total",
		Help: "Commission reversal attempts by outcome.",
	}, []string{"outcome"})
	rateFallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "commission_rate_fallbacks_total",
		Help: "Rate resolutions that fell back to the global default.",
	}, []string{"subject_type"})
	reg.MustRegister(distributions, reversals, rateFallbacks)
	return &CommissionMetrics{
		distributions: distributions,
		reversals:     reversals,
		rateFallbacks: rateFallbacks,
	}
}

// IncDistribution counts a distribution attempt with the given outcome.
func (c *CommissionMetrics) IncDistribution(outcome string) {
	if c == nil || c.distributions == nil {
		return
	}
	c.distributions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncReversal counts a reversal attempt with the given outcome.
func (c *CommissionMetrics) IncReversal(outcome string) {
	if c == nil || c.reversals == nil {
		return
	}
	c.reversals.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncRateFallback counts a soft-fail rate resolution for the subject type.
func (c *CommissionMetrics) IncRateFallback(subjectType string) {
	if c == nil || c.rateFallbacks == nil {
		return
	}
	c.rateFallbacks.WithLabelValues(normalizeLabel(subjectType)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
