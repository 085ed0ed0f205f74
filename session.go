// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package overlay

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chewxy/math32"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/gogpu/overlay/internal/metrics"
)

// Status is the lifecycle state of a Session.
type Status uint8

const (
	// StatusProbing is the state during Mount, before a rendering path is chosen.
	StatusProbing Status = iota

	// StatusActive means a GPU surface is attached and the frame loop runs.
	StatusActive

	// StatusFallback means the static background is shown. A session never
	// leaves this state except through Dispose.
	StatusFallback

	// StatusDisposed is terminal.
	StatusDisposed
)

func (s Status) String() string {
	switch s {
	case StatusProbing:
		return "probing"
	case StatusActive:
		return "active"
	case StatusFallback:
		return "fallback"
	case StatusDisposed:
		return "disposed"
	default:
		return fmt.Sprintf("Status(%d)", s)
	}
}

// pointerEasing is the rate, per second, at which continuous pointer mode
// closes the distance between iMouse and the latest pointer position.
const pointerEasing = 8

// drawErrorLogInterval throttles draw-failure warnings to one per interval.
const drawErrorLogInterval = 5 * time.Second

// Session is one mounted overlay instance.
//
// A Session exclusively owns its surface, program, and uniform store. Every
// host callback (frame, resize, pointer) and every public method runs under
// the session mutex, so each one is a discrete, non-reentrant turn and no
// draw ever observes a half-applied update.
//
// Session is safe for concurrent use.
type Session struct {
	mu sync.Mutex

	id   uuid.UUID
	host Host
	cfg  Config
	opts options
	log  *slog.Logger

	status Status
	err    error

	surface  Surface
	program  Program
	uniforms *UniformStore
	dims     SurfaceDimensions
	resize   *resizeCoordinator

	sched     *frameScheduler
	startTime time.Time
	lastFrame time.Time
	elapsed   float64 // scaled seconds written to iTime
	frames    uint64

	pointerSub Disposable
	hasPointer bool
	target     [2]float32 // latest pointer position, physical pixels
	mouse      [2]float32 // current iMouse value

	background *Background
	drawErrLog rate.Sometimes
}

// Mount creates a session for h.
//
// Mount never fails: when accelerated rendering is unavailable, the context
// cannot be created, or the shaders do not compile, the session paints a
// static background instead and Err reports the cause. Invalid cfg values
// are replaced by their defaults.
//
// The caller must call Dispose exactly once when the overlay is unmounted.
func Mount(h Host, cfg Config, opts ...Option) *Session {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.resolve(h)

	cfg, fixed := cfg.Normalize()
	s := &Session{
		id:         uuid.New(),
		host:       h,
		cfg:        cfg,
		opts:       o,
		status:     StatusProbing,
		drawErrLog: rate.Sometimes{First: 1, Interval: drawErrorLogInterval},
	}
	s.log = sessionLogger(o.logger, s.id)
	if len(fixed) > 0 {
		s.log.Warn("overlay: configuration values replaced by defaults", "fields", fixed)
	}

	metrics.SessionsActive.Inc()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.mount()
	return s
}

// mount chooses the rendering path. Called once, with s.mu held.
func (s *Session) mount() {
	b := s.opts.backend
	if b == nil || !Probe(b) {
		s.fallback(ErrCapabilityUnavailable, metrics.ReasonCapability)
		return
	}

	surf, err := b.Create(s.host, SurfaceOptions{
		Transparent: s.cfg.Transparent,
		Label:       "overlay_" + s.id.String()[:8],
	})
	if err != nil {
		if !errors.Is(err, ErrContextCreation) {
			err = fmt.Errorf("%w: %w", ErrContextCreation, err)
		}
		s.fallback(err, metrics.ReasonContext)
		return
	}

	prog, err := surf.Compile(s.opts.vertex, s.opts.fragment)
	if err != nil {
		surf.Destroy()
		s.fallback(err, metrics.ReasonShader)
		return
	}

	s.surface = surf
	s.program = prog
	s.uniforms = NewUniformStore(prog.Layout())
	s.applyConfig()

	// The observer's first notification may arrive after the first frame,
	// so the initial size is read and applied synchronously.
	s.resize = newResizeCoordinator(s.host, s.opts.observer, s.cfg.MaxPixelRatio)
	if err := s.applySize(s.resize.read()); err != nil {
		s.releaseGPU()
		s.fallback(fmt.Errorf("%w: %w", ErrContextCreation, err), metrics.ReasonContext)
		return
	}
	if err := s.resize.observe(s.onResize); err != nil {
		s.err = err
		s.log.Warn("overlay: keeping static size", "dims", s.dims.String(), "err", err)
	}

	if s.cfg.Interactive {
		s.observePointer()
	}

	s.startTime = s.opts.clock.Now()
	s.lastFrame = s.startTime
	s.sched = newFrameScheduler(s.opts.frames, s.enter, s.tick)
	s.sched.start()
	s.status = StatusActive

	s.log.Info("overlay: session mounted",
		"backend", b.Name(),
		"dims", s.dims.String(),
		"uniforms", s.uniforms.Names())
}

// fallback switches to static rendering. GPU resources must already be
// released.
func (s *Session) fallback(cause error, reason string) {
	s.err = cause
	s.status = StatusFallback
	s.background = BackgroundFor(s.cfg)
	RenderFallback(s.host, s.background)
	metrics.FallbacksTotal.WithLabelValues(reason).Inc()
	s.log.Warn("overlay: rendering fallback background", "reason", reason, "err", cause)
}

// enter runs fn as one callback turn.
func (s *Session) enter(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// tick runs one frame: advance iTime, ease the pointer, draw.
func (s *Session) tick(now time.Time) {
	dt := now.Sub(s.lastFrame).Seconds()
	if dt < 0 {
		// Skewed frame timestamp: hold time rather than run it backwards.
		dt = 0
	} else {
		s.lastFrame = now
	}
	s.elapsed += dt * s.cfg.Speed
	s.uniforms.Set(UniformTime, Float(float32(s.elapsed)))

	if s.cfg.Interactive && s.cfg.PointerMode == PointerContinuous && s.hasPointer {
		s.easePointer(float32(dt))
	}

	s.frames++
	metrics.FramesDrawn.Inc()
	if err := s.surface.Draw(s.program, s.uniforms); err != nil {
		metrics.DrawErrors.Inc()
		s.drawErrLog.Do(func() {
			s.log.Warn("overlay: draw failed", "frame", s.frames, "err", err)
		})
	}
}

// onResize applies an observed container box.
func (s *Session) onResize(width, height float64) {
	s.enter(func() {
		if s.status != StatusActive {
			return
		}
		dims := s.resize.measure(width, height)
		if err := s.applySize(dims); err != nil {
			s.log.Warn("overlay: resize failed", "dims", dims.String(), "err", err)
			return
		}
		metrics.Resizes.Inc()
		s.log.Debug("overlay: resized", "dims", dims.String())
	})
}

// applySize resizes the backing store and updates iResolution.
func (s *Session) applySize(dims SurfaceDimensions) error {
	if err := s.surface.Resize(dims); err != nil {
		return err
	}
	s.dims = dims
	w, h := s.surface.BackingSize()
	s.uniforms.Set(UniformResolution, Vec2(float32(w), float32(h)))
	if !s.hasPointer {
		s.centerPointer()
	}
	return nil
}

// centerPointer parks iMouse at the center of the backing store.
func (s *Session) centerPointer() {
	w, h := s.surface.BackingSize()
	s.mouse = [2]float32{float32(w) / 2, float32(h) / 2}
	s.target = s.mouse
	s.uniforms.Set(UniformMouse, Vec2(s.mouse[0], s.mouse[1]))
}

// applyConfig writes the configuration-derived uniforms.
func (s *Session) applyConfig() {
	s.uniforms.Set(UniformColor, s.cfg.Tint().Uniform())
	s.uniforms.Set(UniformScale, Float(float32(s.cfg.Scale)))
	s.uniforms.Set(UniformOpacity, Float(float32(s.cfg.Opacity)))
}

func (s *Session) observePointer() {
	if s.pointerSub != nil {
		return
	}
	if s.opts.pointer == nil {
		s.log.Warn("overlay: interactive mode without a pointer source")
		return
	}
	sub, err := s.opts.pointer.ObservePointer(s.host, s.onPointer)
	if err != nil {
		s.log.Warn("overlay: pointer observation unavailable", "err", err)
		return
	}
	s.pointerSub = sub
}

func (s *Session) stopPointer() {
	if s.pointerSub != nil {
		s.pointerSub.Dispose()
		s.pointerSub = nil
	}
	s.hasPointer = false
}

// onPointer records a pointer move given in logical units.
func (s *Session) onPointer(x, y float64) {
	s.enter(func() {
		if s.status != StatusActive || !s.cfg.Interactive {
			return
		}
		r := s.dims.PixelRatio
		s.target = [2]float32{float32(x * r), float32(y * r)}
		if !s.hasPointer || s.cfg.PointerMode == PointerDiscrete {
			s.hasPointer = true
			s.mouse = s.target
			s.uniforms.Set(UniformMouse, Vec2(s.mouse[0], s.mouse[1]))
		}
	})
}

// easePointer moves iMouse toward the pointer with exponential smoothing.
func (s *Session) easePointer(dt float32) {
	a := 1 - math32.Exp(-dt*pointerEasing)
	s.mouse[0] += (s.target[0] - s.mouse[0]) * a
	s.mouse[1] += (s.target[1] - s.mouse[1]) * a
	s.uniforms.Set(UniformMouse, Vec2(s.mouse[0], s.mouse[1]))
}

// releaseGPU destroys the program and then the surface.
func (s *Session) releaseGPU() {
	if s.program != nil {
		s.program.Destroy()
		s.program = nil
	}
	if s.surface != nil {
		s.surface.Destroy()
		s.surface = nil
	}
}

// Dispose tears the session down: cancel the frame loop, stop resize and
// pointer observation, then release the program and the surface. Repeated
// calls are no-ops.
func (s *Session) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusDisposed {
		return
	}

	// Cancel first so no draw can race the destroyed context.
	if s.sched != nil {
		s.sched.cancel()
	}
	if s.resize != nil {
		s.resize.stop()
	}
	s.stopPointer()
	s.releaseGPU()
	if s.background != nil {
		s.host.SetBackground(nil)
		s.background = nil
	}

	prev := s.status
	s.status = StatusDisposed
	metrics.SessionsActive.Dec()
	s.log.Info("overlay: session disposed", "from", prev.String(), "frames", s.frames)
}

// Reconfigure applies a new configuration record. Color, scale, opacity,
// speed, interactivity, pointer mode, and the pixel-ratio cap take effect
// on the next frame; Transparent only applies at mount. A fallback session
// repaints its background.
func (s *Session) Reconfigure(cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusDisposed {
		return ErrSessionDisposed
	}

	cfg, fixed := cfg.Normalize()
	if len(fixed) > 0 {
		s.log.Warn("overlay: configuration values replaced by defaults", "fields", fixed)
	}
	prev := s.cfg
	s.cfg = cfg

	switch s.status {
	case StatusFallback:
		s.background = BackgroundFor(cfg)
		RenderFallback(s.host, s.background)
	case StatusActive:
		s.applyConfig()
		if cfg.MaxPixelRatio != prev.MaxPixelRatio {
			s.resize.maxRatio = cfg.MaxPixelRatio
			dims := s.resize.measure(s.dims.Width, s.dims.Height)
			if err := s.applySize(dims); err != nil {
				s.log.Warn("overlay: resize failed", "dims", dims.String(), "err", err)
			}
		}
		switch {
		case cfg.Interactive && !prev.Interactive:
			s.observePointer()
		case !cfg.Interactive && prev.Interactive:
			s.stopPointer()
			s.centerPointer()
		}
	}
	s.log.Debug("overlay: reconfigured", "status", s.status.String())
	return nil
}

// ID returns the session identifier used in log records.
func (s *Session) ID() string {
	return s.id.String()
}

// Status returns the current lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Err returns the error that put the session into fallback or static
// sizing, or nil.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Config returns the normalized configuration in effect.
func (s *Session) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Uniform returns the current value of a uniform. Fallback sessions have no
// uniforms.
func (s *Session) Uniform(name string) (UniformValue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uniforms == nil {
		return UniformValue{}, false
	}
	return s.uniforms.Get(name)
}

// Dimensions returns the last applied surface dimensions.
func (s *Session) Dimensions() SurfaceDimensions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dims
}

// Frames returns the number of draw calls issued so far.
func (s *Session) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// FramePending reports whether a frame callback is outstanding.
func (s *Session) FramePending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched != nil && s.sched.pending()
}
