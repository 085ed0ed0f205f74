// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package overlay

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultFrameInterval approximates a 60 Hz display refresh.
const DefaultFrameInterval = time.Second / 60

// ClockFrameSource emulates a display-refresh callback facility with timers.
// It is used when the host has no frame callback of its own, for headless
// rendering, and in tests together with clockwork.FakeClock.
//
// Callbacks run on the clock's timer goroutine.
type ClockFrameSource struct {
	clock    clockwork.Clock
	interval time.Duration
}

// NewClockFrameSource returns a source that grants each request after
// interval. A nil clock uses the real clock; a non-positive interval uses
// DefaultFrameInterval.
func NewClockFrameSource(clock clockwork.Clock, interval time.Duration) *ClockFrameSource {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &ClockFrameSource{clock: clock, interval: interval}
}

// Interval returns the emulated refresh interval.
func (s *ClockFrameSource) Interval() time.Duration {
	return s.interval
}

// RequestFrame schedules cb once, one interval from now.
func (s *ClockFrameSource) RequestFrame(cb func(now time.Time)) FrameHandle {
	t := s.clock.AfterFunc(s.interval, func() {
		cb(s.clock.Now())
	})
	return timerHandle{t}
}

type timerHandle struct {
	t clockwork.Timer
}

func (h timerHandle) Cancel() {
	h.t.Stop()
}
