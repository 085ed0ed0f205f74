// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package metrics holds the process-wide Prometheus collectors for overlay
// sessions. Collectors register on the default registry at init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "overlay"

// Fallback reasons used as the "reason" label of FallbacksTotal.
const (
	ReasonCapability = "capability"
	ReasonContext    = "context"
	ReasonShader     = "shader"
)

// Session Metrics
var (
	// SessionsActive tracks mounted sessions that are not yet disposed,
	// including sessions rendering the fallback background.
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of mounted, not yet disposed overlay sessions",
		},
	)

	// FallbacksTotal tracks sessions that resolved into fallback rendering.
	FallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Total sessions rendering the static fallback, by reason",
		},
		[]string{"reason"},
	)
)

// Frame Metrics
var (
	// FramesDrawn tracks draw calls issued by granted frame callbacks.
	FramesDrawn = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_drawn_total",
			Help:      "Total draw calls issued by overlay frame callbacks",
		},
	)

	// DrawErrors tracks draw calls that returned an error.
	DrawErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draw_errors_total",
			Help:      "Total overlay draw calls that failed",
		},
	)

	// Resizes tracks backing-store resizes applied after observed container
	// changes.
	Resizes = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resizes_total",
			Help:      "Total observed container resizes applied to overlay surfaces",
		},
	)
)
