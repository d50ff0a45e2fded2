package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Workflow outcomes reported on WorkflowExecutions.
const (
	OutcomeSuccess          = "success"
	OutcomeCached           = "cached"
	OutcomeConflict         = "conflict"
	OutcomeValidationError  = "validation_error"
	OutcomeProviderError    = "provider_error"
	OutcomePersistenceError = "persistence_error"
)

var (
	WorkflowExecutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_workflow_executions_total",
			Help: "Workflow executions by outcome",
		},
		[]string{"workflow", "outcome"},
	)

	WorkflowDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "console_workflow_duration_seconds",
			Help:    "Duration of workflow executions in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"workflow"},
	)

	ProviderCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_provider_calls_total",
			Help: "Calls to external providers by operation and result",
		},
		[]string{"provider", "operation", "result"},
	)

	IdempotencyKeysPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "console_idempotency_keys_purged_total",
			Help: "Expired idempotency reservations removed by the purge loop",
		},
	)
)

// ProviderResult maps an error to the "result" label of ProviderCalls.
func ProviderResult(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
