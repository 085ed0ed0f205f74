// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package overlay

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestClockFrameSourceDefaults(t *testing.T) {
	fs := NewClockFrameSource(nil, 0)
	if fs.Interval() != DefaultFrameInterval {
		t.Errorf("Interval() = %v, want %v", fs.Interval(), DefaultFrameInterval)
	}
}

func TestClockFrameSourceFires(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fs := NewClockFrameSource(clock, 16*time.Millisecond)

	got := make(chan time.Time, 1)
	fs.RequestFrame(func(now time.Time) { got <- now })

	clock.BlockUntil(1)
	want := clock.Now().Add(16 * time.Millisecond)
	clock.Advance(16 * time.Millisecond)

	select {
	case now := <-got:
		if !now.Equal(want) {
			t.Errorf("frame time = %v, want %v", now, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("frame callback not delivered")
	}
}

func TestClockFrameSourceCancel(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fs := NewClockFrameSource(clock, 16*time.Millisecond)

	fired := make(chan struct{}, 1)
	h := fs.RequestFrame(func(time.Time) { fired <- struct{}{} })
	clock.BlockUntil(1)
	h.Cancel()
	h.Cancel()
	clock.Advance(time.Second)

	select {
	case <-fired:
		t.Fatal("cancelled frame callback delivered")
	case <-time.After(20 * time.Millisecond):
	}
}
