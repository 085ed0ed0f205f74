//go:build !nogpu

// Package gpu implements the overlay rendering backend on gogpu/wgpu HAL.
//
// This is an internal package; the public entry point is
// github.com/gogpu/overlay/gpu, which registers a Backend at init.
//
// # Architecture Overview
//
// Every overlay surface owns a Device (instance, device, and queue) unless
// the backend was given an external device provider, in which case the
// device is shared and never destroyed by a surface.
//
//	Probe  -> instance -> adapters -> discard
//	Create -> Device -> Surface (uniform buffer, render target)
//	Compile -> naga (WGSL -> SPIR-V) -> shader modules -> render pipeline
//	Draw   -> uniform upload -> render pass (one triangle) -> readback | present
//
// # Render Modes
//
// Hosts that implement overlay.Presenter receive each frame as an
// *image.RGBA read back from an offscreen RGBA8 texture. Hosts that
// implement ViewHost supply a texture view per frame and present it
// themselves; no readback happens. Hosts that implement neither cannot
// display GPU output and surface creation fails.
//
// # Shader Compilation
//
// Vertex and fragment sources are separate WGSL modules with entry points
// vs_main and fs_main. Each is compiled with naga so that diagnostics carry
// the failing stage. Pipeline creation failures are reported as link
// failures.
package gpu
