// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package overlay

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// mockBackend records calls and hands out mockSurfaces.
type mockBackend struct {
	name       string
	probe      bool
	probePanic bool
	createErr  error
	compileErr error
	resizeErr  error
	drawErr    error

	probes   int
	creates  int
	surfaces []*mockSurface
	logger   *slog.Logger
}

func (b *mockBackend) Name() string { return b.name }

func (b *mockBackend) Probe() bool {
	b.probes++
	if b.probePanic {
		panic("probe exploded")
	}
	return b.probe
}

func (b *mockBackend) Create(h Host, opts SurfaceOptions) (Surface, error) {
	b.creates++
	if b.createErr != nil {
		return nil, b.createErr
	}
	s := &mockSurface{
		host:       h,
		opts:       opts,
		compileErr: b.compileErr,
		resizeErr:  b.resizeErr,
		drawErr:    b.drawErr,
	}
	b.surfaces = append(b.surfaces, s)
	h.Attach(s)
	return s, nil
}

func (b *mockBackend) SetLogger(l *slog.Logger) { b.logger = l }

func (b *mockBackend) last() *mockSurface {
	if len(b.surfaces) == 0 {
		return nil
	}
	return b.surfaces[len(b.surfaces)-1]
}

// mockSurface counts calls. The session serializes them, but tests read the
// counters from other goroutines, so they are guarded.
type mockSurface struct {
	mu sync.Mutex

	host       Host
	opts       SurfaceOptions
	compileErr error
	resizeErr  error
	drawErr    error

	program   *mockProgram
	resizes   []SurfaceDimensions
	width     uint32
	height    uint32
	draws     int
	lastTime  float32
	times     []float32
	destroyed int
}

func (s *mockSurface) Compile(vertex, fragment string) (Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.compileErr != nil {
		return nil, s.compileErr
	}
	s.program = &mockProgram{layout: StandardLayout}
	return s.program, nil
}

func (s *mockSurface) Resize(dims SurfaceDimensions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resizeErr != nil {
		return s.resizeErr
	}
	s.resizes = append(s.resizes, dims)
	s.width, s.height = dims.Backing()
	return nil
}

func (s *mockSurface) Draw(p Program, u *UniformStore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed > 0 {
		panic("draw after destroy")
	}
	s.draws++
	v, _ := u.Get(UniformTime)
	s.lastTime = v.Float()
	s.times = append(s.times, s.lastTime)
	return s.drawErr
}

func (s *mockSurface) BackingSize() (uint32, uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

func (s *mockSurface) Destroy() {
	s.mu.Lock()
	s.destroyed++
	first := s.destroyed == 1
	s.mu.Unlock()
	if first {
		s.host.Detach(s)
	}
}

func (s *mockSurface) drawCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draws
}

func (s *mockSurface) destroyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}

type mockProgram struct {
	layout    UniformLayout
	destroyed int
}

func (p *mockProgram) Layout() UniformLayout { return p.layout }
func (p *mockProgram) Destroy()              { p.destroyed++ }

// mockHost is a minimal Host with settable box and ratio.
type mockHost struct {
	mu         sync.Mutex
	width      float64
	height     float64
	ratio      float64
	attached   []Surface
	background *Background
	bgCalls    int
}

func newMockHost(w, h, ratio float64) *mockHost {
	return &mockHost{width: w, height: h, ratio: ratio}
}

func (h *mockHost) ContentBox() (float64, float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.width, h.height
}

func (h *mockHost) DevicePixelRatio() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ratio
}

func (h *mockHost) Attach(s Surface) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.attached = append(h.attached, s)
}

func (h *mockHost) Detach(s Surface) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, a := range h.attached {
		if a == s {
			h.attached = append(h.attached[:i], h.attached[i+1:]...)
			return
		}
	}
}

func (h *mockHost) SetBackground(bg *Background) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.background = bg
	h.bgCalls++
}

func (h *mockHost) setBox(w, ht float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.width, h.height = w, ht
}

func (h *mockHost) setRatio(r float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ratio = r
}

func (h *mockHost) attachedCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.attached)
}

// manualFrames grants frame callbacks only when the test calls fire.
type manualFrames struct {
	mu       sync.Mutex
	pending  []*manualHandle
	requests int
}

type manualHandle struct {
	cb        func(time.Time)
	cancelled atomic.Bool
}

func (h *manualHandle) Cancel() { h.cancelled.Store(true) }

func (m *manualFrames) RequestFrame(cb func(time.Time)) FrameHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests++
	h := &manualHandle{cb: cb}
	m.pending = append(m.pending, h)
	return h
}

// fire delivers every outstanding callback, including cancelled ones, the
// way a host whose cancellation lost a race would. It reports how many were
// delivered.
func (m *manualFrames) fire(now time.Time) int {
	m.mu.Lock()
	batch := m.pending
	m.pending = nil
	m.mu.Unlock()
	for _, h := range batch {
		h.cb(now)
	}
	return len(batch)
}

// fireLive delivers only the callbacks that were not cancelled.
func (m *manualFrames) fireLive(now time.Time) int {
	m.mu.Lock()
	batch := m.pending
	m.pending = nil
	m.mu.Unlock()
	n := 0
	for _, h := range batch {
		if !h.cancelled.Load() {
			h.cb(now)
			n++
		}
	}
	return n
}

func (m *manualFrames) outstanding() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, h := range m.pending {
		if !h.cancelled.Load() {
			n++
		}
	}
	return n
}

// manualObserver keeps registered callbacks for the test to invoke.
type manualObserver struct {
	mu       sync.Mutex
	err      error
	cbs      map[int]func(float64, float64)
	next     int
	disposed int
}

func newManualObserver() *manualObserver {
	return &manualObserver{cbs: make(map[int]func(float64, float64))}
}

func (o *manualObserver) Observe(h Host, cb func(float64, float64)) (Disposable, error) {
	if o.err != nil {
		return nil, o.err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	id := o.next
	o.next++
	o.cbs[id] = cb
	return disposeFunc(func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if _, ok := o.cbs[id]; ok {
			delete(o.cbs, id)
			o.disposed++
		}
	}), nil
}

func (o *manualObserver) ObservePointer(h Host, cb func(float64, float64)) (Disposable, error) {
	return o.Observe(h, cb)
}

func (o *manualObserver) notify(w, h float64) {
	o.mu.Lock()
	cbs := make([]func(float64, float64), 0, len(o.cbs))
	for _, cb := range o.cbs {
		cbs = append(cbs, cb)
	}
	o.mu.Unlock()
	for _, cb := range cbs {
		cb(w, h)
	}
}

func (o *manualObserver) active() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.cbs)
}

type disposeFunc func()

func (f disposeFunc) Dispose() { f() }

var errBoom = errors.New("boom")
