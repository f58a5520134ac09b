// Package metrics declares the prometheus counters/gauges this service
// exports, grounded on the pack's own handler/metrics.go files
// (promauto.NewCounter/NewCounterVec at package scope), plus the
// go-gin-prometheus middleware wiring used in the pack's service mains.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// #region counters

var (
	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentd_decisions_total",
			Help: "Total decision iterations run, by agent and outcome.",
		},
		[]string{"agentId", "outcome"}, // outcome: ok | fallback | error
	)

	FallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentd_fallbacks_total",
			Help: "Total fallback decisions substituted, by agent.",
		},
		[]string{"agentId"},
	)

	ModelCostTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentd_model_cost_usd_total",
			Help: "Accumulated model call cost in USD, by agent.",
		},
		[]string{"agentId"},
	)

	CheckpointsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentd_checkpoints_total",
			Help: "Total checkpoint uploads attempted, by agent and result.",
		},
		[]string{"agentId", "result"}, // result: ok | failed
	)

	AgentsPaused = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "agentd_agents_paused",
			Help: "1 if the agent is currently paused (client heartbeat lost), else 0.",
		},
		[]string{"agentId"},
	)
)

// #endregion counters
