// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package overlay

import (
	"image"
	"time"
)

// Host is the container region an overlay is mounted into.
//
// A Host reports its layout box and display density, accepts a managed
// child surface, and can carry an ordinary (non-GPU) background. Hosts are
// provided by the embedding application; the host package ships an
// in-memory implementation for headless use and tests.
type Host interface {
	// ContentBox returns the current layout size of the container in
	// logical (CSS-like) units.
	ContentBox() (width, height float64)

	// DevicePixelRatio returns the number of physical pixels per logical unit.
	DevicePixelRatio() float64

	// Attach inserts s as a managed child of the container.
	Attach(s Surface)

	// Detach removes s from the container. Detaching a surface that is not
	// attached is a no-op.
	Detach(s Surface)

	// SetBackground applies a static background using ordinary styling.
	// A nil background clears any previously applied one.
	SetBackground(bg *Background)
}

// Presenter is an optional Host interface for containers that display
// frames read back from an offscreen backing store.
type Presenter interface {
	// PresentFrame receives the pixels of the most recent draw. The image
	// is owned by the caller and only valid until the next draw.
	PresentFrame(img *image.RGBA)
}

// FrameHandle is a cancellable token for one pending frame callback.
type FrameHandle interface {
	// Cancel withdraws the pending callback. It must not block and is safe
	// to call after the callback already ran.
	Cancel()
}

// FrameSource is the host's per-frame callback facility, aligned to the
// display refresh.
//
// A FrameSource delivers at most one invocation per RequestFrame call. The
// timestamp passed to the callback is the frame time; it is expected to be
// non-decreasing, but sessions tolerate skew. The callback must not be
// invoked from within RequestFrame itself.
type FrameSource interface {
	RequestFrame(cb func(now time.Time)) FrameHandle
}

// Disposable releases an observation registration.
type Disposable interface {
	// Dispose stops the observation. Repeated calls are no-ops and must not block.
	Dispose()
}

// ResizeObserver passively observes a host's content box.
//
// Notifications are coalesced by the observer, at most one per paint. The
// first notification is not guaranteed to arrive before the first frame.
// Like frame callbacks, notifications must not be delivered from within
// Observe.
type ResizeObserver interface {
	Observe(h Host, cb func(width, height float64)) (Disposable, error)
}

// PointerSource reports pointer movement over a host in logical units
// relative to the container origin.
type PointerSource interface {
	ObservePointer(h Host, cb func(x, y float64)) (Disposable, error)
}
