// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistration(t *testing.T) {
	collectors := []prometheus.Collector{
		SessionsActive,
		FallbacksTotal,
		FramesDrawn,
		DrawErrors,
		Resizes,
	}

	for _, c := range collectors {
		desc := make(chan *prometheus.Desc, 1)
		c.Describe(desc)
		close(desc)

		require.NotNil(t, <-desc, "metric should have a valid descriptor")
	}
}

func TestFallbackReasons(t *testing.T) {
	for _, reason := range []string{ReasonCapability, ReasonContext, ReasonShader} {
		before := testutil.ToFloat64(FallbacksTotal.WithLabelValues(reason))
		FallbacksTotal.WithLabelValues(reason).Inc()
		assert.InDelta(t, before+1, testutil.ToFloat64(FallbacksTotal.WithLabelValues(reason)), 0.001, reason)
	}
}

func TestMetricsLint(t *testing.T) {
	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer,
		"overlay_sessions_active",
		"overlay_frames_drawn_total",
		"overlay_draw_errors_total",
		"overlay_resizes_total",
	)
	require.NoError(t, err)
	assert.Empty(t, problems)
}

func TestCounterMetrics(t *testing.T) {
	tests := []struct {
		name    string
		counter prometheus.Counter
	}{
		{"frames", FramesDrawn},
		{"draw_errors", DrawErrors},
		{"resizes", Resizes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(tt.counter)
			tt.counter.Inc()
			assert.InDelta(t, before+1, testutil.ToFloat64(tt.counter), 0.001)
			assert.Equal(t, 1, testutil.CollectAndCount(tt.counter))
		})
	}
}
