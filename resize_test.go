// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package overlay

import (
	"errors"
	"math"
	"testing"
)

func TestBackingSize(t *testing.T) {
	tests := []struct {
		name         string
		w, h, ratio  float64
		wantW, wantH uint32
	}{
		{"identity", 800, 600, 1, 800, 600},
		{"retina", 400, 300, 2, 800, 600},
		{"fractional rounds up", 100.1, 50.5, 1.25, 126, 64},
		{"zero box", 0, 0, 2, 1, 1},
		{"negative box", -10, 20, 1, 1, 20},
		{"NaN", math.NaN(), 10, 1, 1, 10},
		{"huge", 1e12, 1, 1, math.MaxUint32, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := BackingSize(tt.w, tt.h, tt.ratio)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("BackingSize(%v, %v, %v) = %dx%d, want %dx%d", tt.w, tt.h, tt.ratio, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestEffectivePixelRatio(t *testing.T) {
	tests := []struct {
		ratio, max, want float64
	}{
		{1, 2, 1},
		{3, 2, 2},
		{2, 2, 2},
		{1.5, 0, 1.5},
		{0, 2, 1},
		{-1, 2, 1},
		{math.Inf(1), 2, 1},
		{math.NaN(), 2, 1},
	}
	for _, tt := range tests {
		if got := EffectivePixelRatio(tt.ratio, tt.max); got != tt.want {
			t.Errorf("EffectivePixelRatio(%v, %v) = %v, want %v", tt.ratio, tt.max, got, tt.want)
		}
	}
}

func TestSurfaceDimensionsString(t *testing.T) {
	d := SurfaceDimensions{Width: 400, Height: 300, PixelRatio: 2}
	if got := d.String(); got != "400x300@2 (800x600)" {
		t.Errorf("String() = %q", got)
	}
}

func TestResizeCoordinatorObserve(t *testing.T) {
	h := newMockHost(640, 480, 3)
	obs := newManualObserver()
	rc := newResizeCoordinator(h, obs, 2)

	if d := rc.read(); d.Width != 640 || d.Height != 480 || d.PixelRatio != 2 {
		t.Errorf("read() = %+v", d)
	}

	var got [][2]float64
	if err := rc.observe(func(w, h float64) { got = append(got, [2]float64{w, h}) }); err != nil {
		t.Fatalf("observe() = %v", err)
	}
	obs.notify(10, 20)
	if len(got) != 1 || got[0] != [2]float64{10, 20} {
		t.Errorf("notifications = %v", got)
	}

	rc.stop()
	rc.stop()
	if obs.disposed != 1 {
		t.Errorf("disposed = %d, want 1", obs.disposed)
	}
	obs.notify(30, 40)
	if len(got) != 1 {
		t.Error("notification delivered after stop")
	}
}

func TestResizeCoordinatorStatic(t *testing.T) {
	rc := newResizeCoordinator(newMockHost(1, 1, 1), nil, 2)
	if err := rc.observe(func(float64, float64) {}); !errors.Is(err, ErrResizeObservation) {
		t.Errorf("observe() without observer = %v, want ErrResizeObservation", err)
	}
	if !rc.static {
		t.Error("coordinator should switch to static sizing")
	}

	obs := newManualObserver()
	obs.err = errBoom
	rc = newResizeCoordinator(newMockHost(1, 1, 1), obs, 2)
	err := rc.observe(func(float64, float64) {})
	if !errors.Is(err, ErrResizeObservation) || !errors.Is(err, errBoom) {
		t.Errorf("observe() = %v, want ErrResizeObservation wrapping cause", err)
	}
}
