package coordinator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Loop metrics, registered on the default registerer.
var (
	iterationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vagent_coordinator_iterations_total",
		Help: "Total coordination loop iterations across all sessions.",
	})

	sessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vagent_coordinator_sessions_total",
		Help: "Completed sessions by terminal status.",
	}, []string{"status"})

	toolExecutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vagent_tool_executions_total",
		Help: "Tool executions by outcome (success or error kind).",
	}, []string{"tool", "outcome"})

	extractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vagent_extractions_total",
		Help: "Replies that yielded tool calls, by extraction strategy.",
	}, []string{"strategy"})

	llmRequestSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vagent_llm_request_seconds",
		Help:    "Latency of LLM completion calls.",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
	})
)

// observeToolResult records the outcome label for one execution.
func observeToolResult(tool string, success bool, errKind string) {
	outcome := "success"
	if !success {
		outcome = errKind
	}
	toolExecutionsTotal.WithLabelValues(tool, outcome).Inc()
}
