// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package overlay

import (
	"errors"
	"fmt"
)

// Common errors reported by sessions. None of them escape Mount: they are
// resolved into fallback rendering or static sizing and exposed through
// Session.Err.
var (
	// ErrCapabilityUnavailable indicates no accelerated context can be
	// obtained. The session renders the fallback background.
	ErrCapabilityUnavailable = errors.New("overlay: accelerated rendering unavailable")

	// ErrContextCreation indicates the backend failed to create a context even
	// though the capability probe passed. The session renders the fallback
	// background.
	ErrContextCreation = errors.New("overlay: context creation failed")

	// ErrResizeObservation indicates the host cannot observe container
	// resizes. The session keeps the size computed at mount.
	ErrResizeObservation = errors.New("overlay: resize observation unavailable")

	// ErrSessionDisposed is returned when operations are attempted on a
	// disposed session.
	ErrSessionDisposed = errors.New("overlay: session is disposed")
)

// ShaderStage identifies the shader stage that failed to build.
type ShaderStage string

const (
	StageVertex   ShaderStage = "vertex"
	StageFragment ShaderStage = "fragment"
	StageLink     ShaderStage = "link"
)

// ShaderCompileError reports a compile or link failure together with the
// compiler's own diagnostic text.
type ShaderCompileError struct {
	Stage      ShaderStage
	Diagnostic string
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("overlay: %s shader failed to compile: %s", e.Stage, e.Diagnostic)
}
