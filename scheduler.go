// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package overlay

import "time"

// SchedulerState is the frame scheduler's position in its lifecycle:
//
//	Idle -> Scheduled -> Running -> Scheduled -> ... -> Cancelled
type SchedulerState uint8

const (
	SchedulerIdle SchedulerState = iota
	SchedulerScheduled
	SchedulerRunning
	SchedulerCancelled
)

func (s SchedulerState) String() string {
	switch s {
	case SchedulerIdle:
		return "idle"
	case SchedulerScheduled:
		return "scheduled"
	case SchedulerRunning:
		return "running"
	case SchedulerCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// frameScheduler drives one tick per granted frame callback.
//
// The scheduler keeps exactly one pending request while scheduled. Each
// request carries a generation number, so a callback that was already in
// flight when cancel ran is recognised as stale and dropped. The owning
// session serializes all calls.
type frameScheduler struct {
	source FrameSource
	state  SchedulerState
	handle FrameHandle
	gen    uint64

	// tick runs one frame. It is called with the session lock held.
	tick func(now time.Time)

	// enter acquires the session lock around a callback turn.
	enter func(fn func())
}

func newFrameScheduler(source FrameSource, enter func(fn func()), tick func(now time.Time)) *frameScheduler {
	return &frameScheduler{source: source, enter: enter, tick: tick}
}

// start transitions Idle -> Scheduled. Calling start in any other state is a no-op.
func (fs *frameScheduler) start() {
	if fs.state != SchedulerIdle {
		return
	}
	fs.request()
}

// request asks the source for the next callback.
func (fs *frameScheduler) request() {
	fs.gen++
	gen := fs.gen
	fs.state = SchedulerScheduled
	fs.handle = fs.source.RequestFrame(func(now time.Time) {
		fs.enter(func() { fs.run(gen, now) })
	})
}

// run executes one granted callback: tick, then re-request unless cancelled.
func (fs *frameScheduler) run(gen uint64, now time.Time) {
	if fs.state != SchedulerScheduled || gen != fs.gen {
		return
	}
	fs.handle = nil
	fs.state = SchedulerRunning
	fs.tick(now)
	if fs.state == SchedulerCancelled {
		return
	}
	fs.request()
}

// cancel transitions to Cancelled from any state. Idempotent.
func (fs *frameScheduler) cancel() {
	if fs.state == SchedulerCancelled {
		return
	}
	fs.state = SchedulerCancelled
	fs.gen++
	if fs.handle != nil {
		fs.handle.Cancel()
		fs.handle = nil
	}
}

// pending reports whether a frame callback is outstanding.
func (fs *frameScheduler) pending() bool {
	return fs.handle != nil
}
