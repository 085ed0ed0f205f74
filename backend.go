// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package overlay

import (
	"errors"
	"reflect"
	"sync"
)

// Backend is an accelerated rendering provider.
//
// When registered via RegisterBackend, Mount probes it and, if the probe
// succeeds, creates a GPU surface for the session. If the probe fails or
// surface creation fails, the session transparently falls back to a static
// background.
//
// Implementations are provided by GPU packages (e.g., overlay/gpu/).
// Users opt in to GPU rendering via blank import:
//
//	import _ "github.com/gogpu/overlay/gpu" // enables GPU rendering
type Backend interface {
	// Name returns the backend name (e.g., "vulkan", "noop").
	Name() string

	// Probe reports whether an accelerated context can be obtained at all.
	// It must be synchronous, cheap, and must not retain any resources.
	Probe() bool

	// Create allocates a drawing surface sized to the host's current box and
	// attaches it to the host. Failures wrap ErrContextCreation.
	Create(h Host, opts SurfaceOptions) (Surface, error)
}

// SurfaceOptions carries the per-session settings a backend needs when
// creating a surface.
type SurfaceOptions struct {
	// Transparent selects the clear mode: transparent black when true,
	// opaque black otherwise.
	Transparent bool

	// Label prefixes GPU debug labels for this surface.
	Label string
}

// Surface is the drawing target owned by one session.
//
// Surfaces are NOT safe for concurrent use; the owning session serializes
// every call.
type Surface interface {
	// Compile builds a program from vertex and fragment sources. Failures
	// are reported as *ShaderCompileError.
	Compile(vertex, fragment string) (Program, error)

	// Resize recomputes the backing store for dims and updates the viewport.
	// Resizing to the current backing size is a no-op.
	Resize(dims SurfaceDimensions) error

	// Draw issues one full-surface draw with p and the current values in u.
	Draw(p Program, u *UniformStore) error

	// BackingSize returns the current backing-store size in physical pixels.
	BackingSize() (width, height uint32)

	// Destroy detaches the surface from its host and releases the context.
	// Subsequent calls are no-ops.
	Destroy()
}

// Program is a compiled shader program bound to one surface.
type Program interface {
	// Layout describes the uniforms the program consumes.
	Layout() UniformLayout

	// Destroy releases the program's GPU objects. Safe to call multiple times.
	Destroy()
}

var (
	backendMu sync.RWMutex
	backend   Backend

	probeMu    sync.Mutex
	probeCache = map[Backend]bool{}
)

// RegisterBackend registers the accelerated backend used by Mount.
//
// Only one backend can be registered. Subsequent calls replace the previous
// one and discard its cached probe result.
//
// Typical usage via blank import in GPU backend packages:
//
//	func init() {
//	    overlay.RegisterBackend(NewBackend())
//	}
func RegisterBackend(b Backend) error {
	if b == nil {
		return errors.New("overlay: backend must not be nil")
	}
	propagateLogger(b, Logger())
	backendMu.Lock()
	old := backend
	backend = b
	backendMu.Unlock()
	if old != nil && cacheable(old) {
		probeMu.Lock()
		delete(probeCache, old)
		probeMu.Unlock()
	}
	return nil
}

// CurrentBackend returns the currently registered backend, or nil if none.
func CurrentBackend() Backend {
	backendMu.RLock()
	b := backend
	backendMu.RUnlock()
	return b
}

// Probe runs the backend's capability probe once per process and caches the
// result. A nil backend, or a probe that panics, reports false. Backends
// that cannot be map keys are probed on every call.
func Probe(b Backend) bool {
	if b == nil {
		return false
	}
	if !cacheable(b) {
		return safeProbe(b)
	}
	probeMu.Lock()
	defer probeMu.Unlock()
	if ok, cached := probeCache[b]; cached {
		return ok
	}
	ok := safeProbe(b)
	probeCache[b] = ok
	return ok
}

// cacheable reports whether b can key probeCache. Comparable checks the
// dynamic values of interface fields too, which hashing would panic on.
func cacheable(b Backend) bool {
	return reflect.ValueOf(b).Comparable()
}

func safeProbe(b Backend) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			Logger().Warn("overlay: capability probe panicked", "backend", b.Name(), "panic", r)
			ok = false
		}
	}()
	return b.Probe()
}
