// Package overlay manages a real-time shader surface mounted into a host
// region.
//
// # Overview
//
// An overlay owns a GPU-backed drawing surface, runs an animation loop that
// drives shader uniforms, keeps the backing store in step with the container
// size, and releases every GPU resource, observer, and pending frame
// callback when it is unmounted. When accelerated rendering is not
// available the overlay degrades to a static background.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/overlay"
//	    _ "github.com/gogpu/overlay/gpu" // enables GPU rendering
//	)
//
//	cfg := overlay.DefaultConfig()
//	cfg.Color = "#3b82f6"
//	cfg.Opacity = 0.8
//
//	s := overlay.Mount(host, cfg)
//	defer s.Dispose()
//
// # Sessions
//
// Mount returns a Session in one of two states. An Active session owns a
// Surface and a compiled Program and redraws once per granted frame
// callback. A Fallback session shows a Background through Host.SetBackground
// and allocates no GPU resources. Mount never fails; Session.Err reports why
// a session fell back or kept a static size.
//
// # Uniforms
//
// The frame loop writes iTime (scaled by Config.Speed) before every draw.
// iResolution follows the backing-store size, and iColor, iScale, iOpacity,
// and iMouse come from the configuration and pointer input. Writes to
// uniforms a shader does not declare are ignored.
//
// # Host Facilities
//
// Frame callbacks, resize observation, and pointer input are injected as
// interfaces (FrameSource, ResizeObserver, PointerSource), either through
// options or by the Host implementing them. ClockFrameSource emulates a
// display refresh with a clockwork.Clock, which makes sessions testable
// with a fake clock.
//
// # Backends
//
// GPU backends register themselves with RegisterBackend. The gpu
// sub-package provides one built on gogpu/wgpu:
//
//	import _ "github.com/gogpu/overlay/gpu"
//
// # Logging
//
// By default overlay produces no log output. Call SetLogger to enable
// structured logging via log/slog.
package overlay
