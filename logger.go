// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package overlay

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
)

// nopHandler drops every record. Enabled reports false, so disabled
// per-frame logging costs one atomic load.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var silent = slog.New(nopHandler{})

// current is the package logger; sessions without WithLogger derive theirs
// from it at mount.
var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(silent)
}

// SetLogger sets the logger shared by overlay, the registered backend, and
// sessions mounted afterwards. nil restores the silent default. Sessions
// already mounted keep the logger they started with.
//
// Records a session emits, tagged with its "session" id:
//   - Info: session mounted (backend, backing size, uniforms) and disposed
//   - Warn: fallback rendering, static sizing, throttled draw failures,
//     configuration values replaced by defaults
//   - Debug: resizes and reconfiguration
//
// The gpu backend adds adapter selection (Info) and surface sizing (Debug).
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	current.Store(l)
	if b := CurrentBackend(); b != nil {
		propagateLogger(b, l)
	}
}

// Logger returns the package logger. Safe for concurrent use.
func Logger() *slog.Logger {
	return current.Load()
}

// sessionLogger tags base with the session id.
func sessionLogger(base *slog.Logger, id uuid.UUID) *slog.Logger {
	if base == nil {
		base = Logger()
	}
	return base.With("session", id.String())
}

type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// propagateLogger hands l to b when the backend logs on its own.
func propagateLogger(b Backend, l *slog.Logger) {
	if ls, ok := b.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}
