// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package overlay

import _ "embed"

// Built-in WGSL shader sources used when Mount is not given WithShaders.
//
// The vertex stage draws one full-surface triangle (entry point vs_main, no
// vertex buffers). The fragment stage (entry point fs_main) reads the
// StandardLayout uniform block at group(0) binding(0). Custom fragment
// shaders must declare the same block layout; they may leave fields unused.

//go:embed shaders/fullscreen.wgsl
var DefaultVertexShader string

//go:embed shaders/glow.wgsl
var DefaultFragmentShader string
