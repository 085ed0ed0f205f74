// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package overlay

import (
	"log/slog"

	"github.com/jonboulle/clockwork"
)

// Option configures a Session during Mount.
// Use functional options to inject host facilities and collaborators.
//
// Example:
//
//	// Registered backend, host-provided frame source and observers
//	s := overlay.Mount(host, overlay.DefaultConfig())
//
//	// Simulated clock and frame source (tests)
//	s := overlay.Mount(host, cfg,
//	    overlay.WithClock(clock),
//	    overlay.WithFrameSource(frames))
type Option func(*options)

// options holds optional configuration for Mount.
type options struct {
	backend    Backend
	backendSet bool

	vertex, fragment string

	clock    clockwork.Clock
	frames   FrameSource
	observer ResizeObserver
	pointer  PointerSource
	logger   *slog.Logger
}

// defaultOptions returns the default mount options.
func defaultOptions() options {
	return options{
		vertex:   DefaultVertexShader,
		fragment: DefaultFragmentShader,
	}
}

// WithBackend uses b instead of the registered backend.
// Passing nil forces fallback rendering.
func WithBackend(b Backend) Option {
	return func(o *options) {
		o.backend = b
		o.backendSet = true
	}
}

// WithShaders replaces the built-in shader sources. Both sources are passed
// to the backend untouched.
func WithShaders(vertex, fragment string) Option {
	return func(o *options) {
		o.vertex = vertex
		o.fragment = fragment
	}
}

// WithClock sets the clock used for the session start time and for the
// default frame source. Tests pass a clockwork.FakeClock.
func WithClock(c clockwork.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithFrameSource sets the per-frame callback facility.
//
// If unset, a Host that implements FrameSource is used, and otherwise a
// clock-driven source ticking at DefaultFrameInterval.
func WithFrameSource(fs FrameSource) Option {
	return func(o *options) {
		o.frames = fs
	}
}

// WithResizeObserver sets the resize observation mechanism.
//
// If unset, a Host that implements ResizeObserver is used. Without an
// observer the session keeps the size read at mount.
func WithResizeObserver(ro ResizeObserver) Option {
	return func(o *options) {
		o.observer = ro
	}
}

// WithPointerSource sets the pointer facility used by interactive sessions.
//
// If unset, a Host that implements PointerSource is used.
func WithPointerSource(ps PointerSource) Option {
	return func(o *options) {
		o.pointer = ps
	}
}

// WithLogger sets the session logger. Defaults to Logger().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// resolve fills unset collaborators from the host and package defaults.
func (o *options) resolve(h Host) {
	if !o.backendSet {
		o.backend = CurrentBackend()
	}
	if o.clock == nil {
		o.clock = clockwork.NewRealClock()
	}
	if o.frames == nil {
		if fs, ok := h.(FrameSource); ok {
			o.frames = fs
		} else {
			o.frames = NewClockFrameSource(o.clock, DefaultFrameInterval)
		}
	}
	if o.observer == nil {
		if ro, ok := h.(ResizeObserver); ok {
			o.observer = ro
		}
	}
	if o.pointer == nil {
		if ps, ok := h.(PointerSource); ok {
			o.pointer = ps
		}
	}
	if o.logger == nil {
		o.logger = Logger()
	}
}
