// Package metrics exposes Prometheus instrumentation for the MCP surface
// and the rollup engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ToolCalls counts tool invocations by tool name and result.
	ToolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workgraph_tool_calls_total",
		Help: "Total MCP tool calls by tool and result",
	}, []string{"tool", "result"})

	// ToolDuration tracks tool call latency.
	ToolDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "workgraph_tool_duration_seconds",
		Help:    "MCP tool call duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	}, []string{"tool"})

	// CycleRejections counts writes refused because they would close a cycle.
	CycleRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workgraph_cycle_rejections_total",
		Help: "Total writes rejected by cycle detection, by graph",
	}, []string{"graph"})

	// RollupTargets tracks how many ancestors one hour-delta propagation touched.
	RollupTargets = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "workgraph_rollup_targets",
		Help:    "Number of tasks and projects updated per hour rollup",
		Buckets: []float64{1, 2, 5, 10, 20, 50},
	})
)
