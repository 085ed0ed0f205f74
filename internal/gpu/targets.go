//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// copyPitchAlignment is the required BytesPerRow alignment for
// texture-to-buffer copies.
const copyPitchAlignment = 256

// alignedRow returns the padded row pitch for a readback of width pixels.
func alignedRow(width uint32) uint32 {
	return (width*4 + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
}

// renderTarget is the offscreen backing store of a surface: a single-sample
// color texture that can be copied out, and the staging buffer it is copied
// into.
type renderTarget struct {
	colorTex  hal.Texture
	colorView hal.TextureView
	staging   hal.Buffer
	pitch     uint32
	width     uint32
	height    uint32
}

// ensure creates or recreates the target if the requested size differs from
// the current one. Matching sizes are a no-op.
func (rt *renderTarget) ensure(device hal.Device, w, h uint32, format gputypes.TextureFormat, label string) error {
	if rt.width == w && rt.height == h && rt.colorTex != nil {
		return nil
	}
	rt.destroy(device)

	colorTex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label + "_color",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create color texture: %w", err)
	}
	rt.colorTex = colorTex

	colorView, err := device.CreateTextureView(colorTex, &hal.TextureViewDescriptor{
		Label: label + "_color_view",
	})
	if err != nil {
		rt.destroy(device)
		return fmt.Errorf("create color view: %w", err)
	}
	rt.colorView = colorView

	pitch := alignedRow(w)
	staging, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label + "_staging",
		Size:  uint64(pitch) * uint64(h),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		rt.destroy(device)
		return fmt.Errorf("create staging buffer: %w", err)
	}
	rt.staging = staging

	rt.pitch = pitch
	rt.width = w
	rt.height = h
	return nil
}

// destroy releases all target resources and resets the size.
func (rt *renderTarget) destroy(device hal.Device) {
	if rt.staging != nil {
		device.DestroyBuffer(rt.staging)
		rt.staging = nil
	}
	if rt.colorView != nil {
		device.DestroyTextureView(rt.colorView)
		rt.colorView = nil
	}
	if rt.colorTex != nil {
		device.DestroyTexture(rt.colorTex)
		rt.colorTex = nil
	}
	rt.pitch = 0
	rt.width = 0
	rt.height = 0
}
