// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package host

import (
	"errors"
	"fmt"
	"image"
	"maps"
	"slices"
	"sync"

	"golang.org/x/image/draw"

	"github.com/gogpu/overlay"
)

// Common errors returned by Image operations.
var (
	// ErrHostClosed is returned when operations are attempted on a closed host.
	ErrHostClosed = errors.New("host: host is closed")

	// ErrInvalidDimensions is returned when width, height, or pixel ratio is invalid.
	ErrInvalidDimensions = errors.New("host: invalid dimensions")
)

// Image is an in-memory overlay host.
//
// It reports a settable content box and pixel ratio, receives GPU frames
// through overlay.Presenter, and doubles as the resize observer and pointer
// source for sessions mounted into it. Resize and MovePointer deliver
// notifications synchronously on the calling goroutine.
//
// Image is safe for concurrent use.
type Image struct {
	mu sync.Mutex

	width, height float64
	ratio         float64

	surfaces   []overlay.Surface
	background *overlay.Background
	frame      *image.RGBA
	frames     uint64

	nextID   uint64
	resizers map[uint64]func(width, height float64)
	pointers map[uint64]func(x, y float64)

	closed bool
}

var (
	_ overlay.Host           = (*Image)(nil)
	_ overlay.Presenter      = (*Image)(nil)
	_ overlay.ResizeObserver = (*Image)(nil)
	_ overlay.PointerSource  = (*Image)(nil)
)

// NewImage creates a host with the given logical box and pixel ratio.
func NewImage(width, height, ratio float64) (*Image, error) {
	if err := validate(width, height, ratio); err != nil {
		return nil, err
	}
	return &Image{
		width:    width,
		height:   height,
		ratio:    ratio,
		resizers: make(map[uint64]func(width, height float64)),
		pointers: make(map[uint64]func(x, y float64)),
	}, nil
}

// MustNewImage is like NewImage but panics on error.
func MustNewImage(width, height, ratio float64) *Image {
	h, err := NewImage(width, height, ratio)
	if err != nil {
		panic(err)
	}
	return h
}

func validate(width, height, ratio float64) error {
	if !(width >= 0) || !(height >= 0) || !(ratio > 0) {
		return fmt.Errorf("%w: width=%g, height=%g, ratio=%g", ErrInvalidDimensions, width, height, ratio)
	}
	return nil
}

// ContentBox returns the logical box.
func (h *Image) ContentBox() (float64, float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.width, h.height
}

// DevicePixelRatio returns the pixel ratio.
func (h *Image) DevicePixelRatio() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ratio
}

// Attach records s as a child surface.
func (h *Image) Attach(s overlay.Surface) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !slices.Contains(h.surfaces, s) {
		h.surfaces = append(h.surfaces, s)
	}
}

// Detach removes s. Unknown surfaces are ignored.
func (h *Image) Detach(s overlay.Surface) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.surfaces = slices.DeleteFunc(h.surfaces, func(x overlay.Surface) bool { return x == s })
}

// Surfaces returns the number of attached surfaces.
func (h *Image) Surfaces() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.surfaces)
}

// SetBackground stores bg; nil clears it.
func (h *Image) SetBackground(bg *overlay.Background) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.background = bg
}

// Background returns the applied background, or nil.
func (h *Image) Background() *overlay.Background {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.background
}

// PresentFrame copies img as the latest frame.
func (h *Image) PresentFrame(img *image.RGBA) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	if h.frame == nil || h.frame.Bounds() != img.Bounds() {
		h.frame = image.NewRGBA(img.Bounds())
	}
	copy(h.frame.Pix, img.Pix)
	h.frames++
}

// Frames returns the number of frames presented so far.
func (h *Image) Frames() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frames
}

// Snapshot returns a copy of what the host shows: the latest presented
// frame while a surface is attached, otherwise the background rasterized
// at the backing size. With neither it returns nil.
func (h *Image) Snapshot() *image.RGBA {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch {
	case len(h.surfaces) > 0 && h.frame != nil:
		out := image.NewRGBA(h.frame.Bounds())
		draw.Draw(out, out.Bounds(), h.frame, h.frame.Bounds().Min, draw.Src)
		return out
	case h.background != nil:
		w, ht := overlay.BackingSize(h.width, h.height, h.ratio)
		return h.background.Image(int(w), int(ht))
	default:
		return nil
	}
}

// Observe registers cb for content box changes.
func (h *Image) Observe(_ overlay.Host, cb func(width, height float64)) (overlay.Disposable, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrHostClosed
	}
	id := h.nextID
	h.nextID++
	h.resizers[id] = cb
	return disposeFunc(func() {
		h.mu.Lock()
		delete(h.resizers, id)
		h.mu.Unlock()
	}), nil
}

// ObservePointer registers cb for pointer moves.
func (h *Image) ObservePointer(_ overlay.Host, cb func(x, y float64)) (overlay.Disposable, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrHostClosed
	}
	id := h.nextID
	h.nextID++
	h.pointers[id] = cb
	return disposeFunc(func() {
		h.mu.Lock()
		delete(h.pointers, id)
		h.mu.Unlock()
	}), nil
}

// Observers returns the number of active resize and pointer registrations.
func (h *Image) Observers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.resizers) + len(h.pointers)
}

// Resize changes the logical box and notifies resize observers. Resizing
// to the current box is a no-op.
func (h *Image) Resize(width, height float64) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrHostClosed
	}
	if err := validate(width, height, h.ratio); err != nil {
		h.mu.Unlock()
		return err
	}
	if h.width == width && h.height == height {
		h.mu.Unlock()
		return nil
	}
	h.width, h.height = width, height
	cbs := slices.Collect(maps.Values(h.resizers))
	h.mu.Unlock()

	for _, cb := range cbs {
		cb(width, height)
	}
	return nil
}

// SetPixelRatio changes the pixel ratio and notifies resize observers,
// since the backing size changes with it.
func (h *Image) SetPixelRatio(ratio float64) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrHostClosed
	}
	if err := validate(h.width, h.height, ratio); err != nil {
		h.mu.Unlock()
		return err
	}
	if h.ratio == ratio {
		h.mu.Unlock()
		return nil
	}
	h.ratio = ratio
	width, height := h.width, h.height
	cbs := slices.Collect(maps.Values(h.resizers))
	h.mu.Unlock()

	for _, cb := range cbs {
		cb(width, height)
	}
	return nil
}

// MovePointer reports a pointer position in logical units.
func (h *Image) MovePointer(x, y float64) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	cbs := slices.Collect(maps.Values(h.pointers))
	h.mu.Unlock()

	for _, cb := range cbs {
		cb(x, y)
	}
}

// Close drops all registrations. Subsequent observation requests fail with
// ErrHostClosed. Idempotent.
func (h *Image) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	clear(h.resizers)
	clear(h.pointers)
}

// disposeFunc adapts a function to overlay.Disposable. Repeated calls are
// harmless.
type disposeFunc func()

func (f disposeFunc) Dispose() { f() }
