// Package metrics defines Prometheus metrics for render runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Capture metrics
var (
	FramesCapturedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "framecast_frames_captured_total",
			Help: "Total number of frames captured",
		},
	)

	FramesFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "framecast_frames_failed_total",
			Help: "Total number of frames that failed permanently",
		},
		[]string{"reason"}, // "readiness_timeout", "element_not_found", "render"
	)

	FramesRetriedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "framecast_frames_retried_total",
			Help: "Total number of frame capture retries on a fresh surface",
		},
	)

	FrameCaptureSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "framecast_frame_capture_duration_seconds",
			Help:    "Time to capture a single frame",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
)

// Pool metrics
var (
	ActiveWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "framecast_active_workers",
			Help: "Number of live rendering surfaces",
		},
	)

	SurfaceLaunchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "framecast_surface_launches_total",
			Help: "Total number of surface launches",
		},
		[]string{"status"}, // "success", "error"
	)
)

// Encoder metrics
var (
	EncoderInvocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "framecast_encoder_invocations_total",
			Help: "Total number of encoder invocations",
		},
		[]string{"status"},
	)

	StitchSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "framecast_stitch_duration_seconds",
			Help:    "Time spent in the encoder while stitching",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)
)

// Run metrics
var (
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "framecast_runs_total",
			Help: "Total number of render runs",
		},
		[]string{"status"}, // "success", "aborted", "error"
	)

	RunDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "framecast_run_duration_seconds",
			Help:    "Total duration of a render run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusAborted = "aborted"
)
