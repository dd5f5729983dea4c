package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ApplicationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loanflow_applications_created_total",
			Help: "Total number of loan applications created",
		},
	)

	ProviderEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loanflow_provider_events_total",
			Help: "Total number of provider events processed by type and result",
		},
		[]string{"event_type", "result"},
	)

	EventDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "loanflow_event_duration_seconds",
			Help: "Duration of provider event handling in seconds",
		},
		[]string{"event_type"},
	)

	UnderwritingOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loanflow_underwriting_outcomes_total",
			Help: "Total number of underwriting runs by terminal status",
		},
		[]string{"status"},
	)
)
