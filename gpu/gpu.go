//go:build !nogpu

// Package gpu registers the GPU backend for overlay sessions.
//
// Import this package to render overlays with gogpu/wgpu on Vulkan. If no
// Vulkan device is available the capability probe fails and sessions fall
// back to a static background.
//
// Usage:
//
//	import _ "github.com/gogpu/overlay/gpu" // enable GPU rendering
package gpu

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/overlay"
	gpuimpl "github.com/gogpu/overlay/internal/gpu"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// ViewHost is implemented by hosts that present GPU output themselves,
// such as a window swapchain. Other hosts must implement overlay.Presenter.
type ViewHost = gpuimpl.ViewHost

// backend is the instance registered at init.
var backend = gpuimpl.NewBackend("vulkan", gpuimpl.HALInstance(gputypes.BackendVulkan))

func init() {
	if err := overlay.RegisterBackend(backend); err != nil {
		overlay.Logger().Warn("GPU backend not available", "err", err)
	}
}

// Backend returns the registered GPU backend.
func Backend() overlay.Backend {
	return backend
}

// SetDeviceProvider makes new surfaces render on a shared GPU device from
// an external provider (e.g., gogpu) instead of opening their own. The
// provider must also expose HalDevice() and HalQueue().
//
// Call this before mounting overlays.
func SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	return backend.SetDeviceProvider(provider)
}
