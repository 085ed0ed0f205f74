// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package overlay

import (
	"fmt"
	"math"
)

// SurfaceDimensions is the last observed container box together with the
// effective (capped) pixel ratio. It is derived state: the backing-store
// size is always computed from it, never stored on its own.
type SurfaceDimensions struct {
	Width      float64 // logical width of the container
	Height     float64 // logical height of the container
	PixelRatio float64 // device pixel ratio after capping
}

// Backing returns the backing-store size in physical pixels.
func (d SurfaceDimensions) Backing() (width, height uint32) {
	return BackingSize(d.Width, d.Height, d.PixelRatio)
}

func (d SurfaceDimensions) String() string {
	w, h := d.Backing()
	return fmt.Sprintf("%gx%g@%g (%dx%d)", d.Width, d.Height, d.PixelRatio, w, h)
}

// BackingSize computes ceil(width*ratio) x ceil(height*ratio), clamped to a
// minimum of 1x1 so that no zero-area context is ever created. Negative or
// non-finite inputs count as zero.
func BackingSize(width, height, ratio float64) (uint32, uint32) {
	return backingDim(width, ratio), backingDim(height, ratio)
}

func backingDim(v, ratio float64) uint32 {
	p := math.Ceil(v * ratio)
	if !finite(p) || p < 1 {
		return 1
	}
	if p > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(p)
}

// EffectivePixelRatio caps ratio at maxRatio. Non-positive or non-finite
// ratios are treated as 1.
func EffectivePixelRatio(ratio, maxRatio float64) float64 {
	if !positive(ratio) {
		ratio = 1
	}
	if positive(maxRatio) && ratio > maxRatio {
		ratio = maxRatio
	}
	return ratio
}

// resizeCoordinator measures the host and keeps the observation registration.
// It holds no lock of its own; the owning session serializes every call.
type resizeCoordinator struct {
	host     Host
	observer ResizeObserver
	maxRatio float64

	sub    Disposable
	static bool // observation unavailable; the mount-time size is kept
}

func newResizeCoordinator(h Host, observer ResizeObserver, maxRatio float64) *resizeCoordinator {
	return &resizeCoordinator{host: h, observer: observer, maxRatio: maxRatio}
}

// measure derives dimensions for an observed box using the host's current
// pixel ratio.
func (rc *resizeCoordinator) measure(width, height float64) SurfaceDimensions {
	return SurfaceDimensions{
		Width:      width,
		Height:     height,
		PixelRatio: EffectivePixelRatio(rc.host.DevicePixelRatio(), rc.maxRatio),
	}
}

// read performs the synchronous read of the host box used before the first
// frame.
func (rc *resizeCoordinator) read() SurfaceDimensions {
	w, h := rc.host.ContentBox()
	return rc.measure(w, h)
}

// observe registers cb with the resize observer. On failure the coordinator
// switches to static sizing and returns an error wrapping
// ErrResizeObservation.
func (rc *resizeCoordinator) observe(cb func(width, height float64)) error {
	if rc.observer == nil {
		rc.static = true
		return fmt.Errorf("%w: no observer configured", ErrResizeObservation)
	}
	sub, err := rc.observer.Observe(rc.host, cb)
	if err != nil {
		rc.static = true
		return fmt.Errorf("%w: %w", ErrResizeObservation, err)
	}
	rc.sub = sub
	return nil
}

// stop disposes the observation. Safe to call multiple times.
func (rc *resizeCoordinator) stop() {
	if rc.sub != nil {
		rc.sub.Dispose()
		rc.sub = nil
	}
}
