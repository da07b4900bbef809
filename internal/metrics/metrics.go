// Package metrics registers the Prometheus metrics exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QuotaDecisions counts gated requests by decision ("allowed", "rejected").
	QuotaDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "what_to_cook_quota_decisions_total",
			Help: "Gated requests by quota decision.",
		},
		[]string{"decision"},
	)

	// QuotaConsumed counts successful requests charged against a session quota.
	QuotaConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "what_to_cook_quota_consumed_total",
			Help: "Successful gated requests charged to a session quota.",
		},
	)

	// LimitReachedRewrites counts success bodies rewritten with limit_reached
	// ("ok", "skipped" when the body was not a JSON object).
	LimitReachedRewrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "what_to_cook_limit_reached_rewrites_total",
			Help: "Success responses annotated after the quota was used up.",
		},
		[]string{"result"},
	)

	// RecipeGenerations counts recipe creation attempts by outcome
	// ("success", "generation_error", "parsing_error", "creation_error",
	// "upstream_rate_limited", "upstream_error", "invalid_input", "internal").
	RecipeGenerations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "what_to_cook_recipe_generations_total",
			Help: "Recipe creation attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// LLMRequestDuration observes chat completion latency in seconds.
	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "what_to_cook_llm_request_duration_seconds",
			Help:    "Chat completion latency in seconds.",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"step"},
	)
)
