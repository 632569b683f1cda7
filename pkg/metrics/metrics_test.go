package metrics

import (
	"testing"
)

func TestMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"FramesCapturedTotal", FramesCapturedTotal},
		{"FramesFailedTotal", FramesFailedTotal},
		{"FramesRetriedTotal", FramesRetriedTotal},
		{"FrameCaptureSeconds", FrameCaptureSeconds},
		{"ActiveWorkers", ActiveWorkers},
		{"SurfaceLaunchesTotal", SurfaceLaunchesTotal},
		{"EncoderInvocationsTotal", EncoderInvocationsTotal},
		{"StitchSeconds", StitchSeconds},
		{"RunsTotal", RunsTotal},
		{"RunDurationSeconds", RunDurationSeconds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestLabeledMetricsAcceptLabels(t *testing.T) {
	FramesFailedTotal.WithLabelValues("render").Add(0)
	SurfaceLaunchesTotal.WithLabelValues(StatusSuccess).Add(0)
	EncoderInvocationsTotal.WithLabelValues(StatusError).Add(0)
	RunsTotal.WithLabelValues(StatusAborted).Add(0)
}
