package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Invocation metrics
	invocationsTotal *prometheus.CounterVec

	// Decision metrics
	credentialDecisions *prometheus.CounterVec
	quirkResolutions    *prometheus.CounterVec

	// Registration guard
	metricsOnce       sync.Once
	metricsRegistered bool
)

// DecisionMetrics provides methods to record quirk and credential
// decision metrics.
type DecisionMetrics struct{}

// NewDecisionMetrics creates a new DecisionMetrics instance.
// Metrics are lazily registered on first use.
func NewDecisionMetrics() *DecisionMetrics {
	return &DecisionMetrics{}
}

// InitMetrics initializes all Prometheus metrics.
// This should be called once at startup if the metrics endpoint is enabled.
func InitMetrics() {
	metricsOnce.Do(func() {
		invocationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nugetrun_invocations_total",
				Help: "Total number of package-manager invocations",
			},
			[]string{"status"},
		)

		credentialDecisions = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nugetrun_credential_decisions_total",
				Help: "Credential mechanism decisions by mechanism and outcome",
			},
			[]string{"mechanism", "enabled"},
		)

		quirkResolutions = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nugetrun_quirk_resolutions_total",
				Help: "Quirk set resolutions by source",
			},
			[]string{"source"},
		)

		metricsRegistered = true
	})
}

// RecordInvocation records one child-process launch outcome.
func (m *DecisionMetrics) RecordInvocation(status string) {
	if !metricsRegistered {
		return
	}
	invocationsTotal.WithLabelValues(status).Inc()
}

// RecordDecision records one credential mechanism decision.
func (m *DecisionMetrics) RecordDecision(mechanism string, enabled bool) {
	if !metricsRegistered {
		return
	}
	outcome := "false"
	if enabled {
		outcome = "true"
	}
	credentialDecisions.WithLabelValues(mechanism, outcome).Inc()
}

// RecordQuirkResolution records whether a resolution came from the
// version table or fell back to the default set.
func (m *DecisionMetrics) RecordQuirkResolution(source string) {
	if !metricsRegistered {
		return
	}
	quirkResolutions.WithLabelValues(source).Inc()
}

// IsMetricsRegistered reports whether InitMetrics has run.
func IsMetricsRegistered() bool {
	return metricsRegistered
}

// GetInvocationsTotal returns the invocations counter for testing.
func GetInvocationsTotal() *prometheus.CounterVec {
	return invocationsTotal
}

// GetCredentialDecisions returns the decisions counter for testing.
func GetCredentialDecisions() *prometheus.CounterVec {
	return credentialDecisions
}

// GetQuirkResolutions returns the resolutions counter for testing.
func GetQuirkResolutions() *prometheus.CounterVec {
	return quirkResolutions
}
