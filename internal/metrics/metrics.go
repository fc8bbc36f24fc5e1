// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prospect_provider_calls_total",
			Help: "LLM provider calls by provider and outcome (ok, transient, fatal, error)",
		},
		[]string{"provider", "outcome"},
	)

	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prospect_provider_call_duration_seconds",
			Help:    "LLM provider call latency in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 90},
		},
		[]string{"provider"},
	)

	ProviderTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prospect_provider_tokens_total",
			Help: "Tokens consumed by provider and direction (input, output)",
		},
		[]string{"provider", "direction"},
	)

	SearchAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prospect_search_attempts",
			Help:    "Attempts spent per lead search",
			Buckets: prometheus.LinearBuckets(1, 1, 8),
		},
	)

	LeadsAccepted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prospect_leads_accepted_total",
			Help: "Leads returned by searches",
		},
	)

	LeadsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prospect_leads_rejected_total",
			Help: "Candidate leads rejected by reason (invalid_phone, duplicate, filter)",
		},
		[]string{"reason"},
	)

	CoachFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prospect_coach_fallbacks_total",
			Help: "Coaching replies served from the built-in fallback",
		},
		[]string{"tool"},
	)
)
