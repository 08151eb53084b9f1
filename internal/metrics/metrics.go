// Package metrics implements Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PacketsTotal counts frames read from the capture source.
	PacketsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "framewatch_capture_packets_total",
			Help: "Total number of frames read from the capture source",
		},
		[]string{"source", "interface"},
	)

	// DropsTotal counts frames dropped by the driver or kernel,
	// as reported by the capture source.
	DropsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "framewatch_capture_drops_total",
			Help: "Total number of frames dropped during capture",
		},
		[]string{"source", "stage"},
	)

	// DecodedTotal counts frames successfully decoded into frame
	// control information.
	DecodedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "framewatch_decoded_frames_total",
			Help: "Total number of frames decoded into frame control information",
		},
		[]string{"ether_type"},
	)

	// DecodeErrorsTotal counts frames the decoder declined.
	DecodeErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "framewatch_decode_errors_total",
			Help: "Total number of frames the decoder declined",
		},
		[]string{"reason"},
	)

	// AnalyzerRequestsTotal counts AI analyzer calls by outcome.
	AnalyzerRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "framewatch_analyzer_requests_total",
			Help: "Total number of AI analyzer requests",
		},
		[]string{"outcome"},
	)

	// CaptureRunning tracks whether a capture loop is active.
	CaptureRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "framewatch_capture_running",
			Help: "Whether a capture loop is currently running (0 or 1)",
		},
	)
)
