// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/overlay"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// noDotenv points Load at a dotenv file that does not exist.
func noDotenv(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_DefaultValues(t *testing.T) {
	s, err := Load("", noDotenv(t))
	require.NoError(t, err)

	assert.Equal(t, overlay.DefaultColor, s.Overlay.Color)
	assert.Equal(t, 1.0, s.Overlay.Speed)
	assert.Equal(t, "continuous", s.Overlay.PointerMode)
	assert.Equal(t, 800.0, s.Render.Width)
	assert.Equal(t, 600.0, s.Render.Height)
	assert.Equal(t, 60, s.Render.FPS)
	assert.Equal(t, "info", s.Log.Level)
	assert.Equal(t, "text", s.Log.Format)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, t.TempDir(), "overlay.toml", `
[overlay]
color = "royalblue"
speed = 2.5
opacity = 0.8
interactive = true
pointer_mode = "discrete"

[render]
width = 320
height = 240
frames = 5
`)

	s, err := Load(path, noDotenv(t))
	require.NoError(t, err)

	assert.Equal(t, "royalblue", s.Overlay.Color)
	assert.Equal(t, 2.5, s.Overlay.Speed)
	assert.Equal(t, 0.8, s.Overlay.Opacity)
	assert.True(t, s.Overlay.Interactive)
	assert.Equal(t, 320.0, s.Render.Width)
	assert.Equal(t, 5, s.Render.Frames)

	// Keys absent from the file keep their defaults.
	assert.Equal(t, 1.0, s.Overlay.Scale)
	assert.Equal(t, 60, s.Render.FPS)

	cfg := s.OverlayConfig()
	assert.Equal(t, overlay.PointerDiscrete, cfg.PointerMode)
	assert.Equal(t, 2.5, cfg.Speed)
}

func TestLoad_UnknownKey(t *testing.T) {
	path := writeFile(t, t.TempDir(), "overlay.toml", `
[overlay]
colour = "red"
`)
	_, err := Load(path, noDotenv(t))
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"), noDotenv(t))
	require.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "overlay.toml", `
[overlay]
color = "red"
speed = 2
`)
	t.Setenv("OVERLAY_COLOR", "#00ff00")
	t.Setenv("LOG_LEVEL", "debug")

	s, err := Load(path, noDotenv(t))
	require.NoError(t, err)

	assert.Equal(t, "#00ff00", s.Overlay.Color)
	assert.Equal(t, 2.0, s.Overlay.Speed)
	assert.Equal(t, "debug", s.Log.Level)
}

func TestLoad_Dotenv(t *testing.T) {
	dir := t.TempDir()
	dotenv := writeFile(t, dir, "test.env", "OVERLAY_FPS=30\n")
	t.Setenv("OVERLAY_FPS", "")
	require.NoError(t, os.Unsetenv("OVERLAY_FPS"))

	s, err := Load("", dotenv)
	require.NoError(t, err)
	assert.Equal(t, 30, s.Render.FPS)
}

func TestOverlayConfig_UnknownPointerMode(t *testing.T) {
	s := Default()
	s.Overlay.PointerMode = "sometimes"
	assert.Equal(t, overlay.PointerContinuous, s.OverlayConfig().PointerMode)
}

func TestWatch_Reload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "overlay.toml", "[overlay]\nspeed = 1\n")
	dotenv := []string{noDotenv(t)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Settings, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, dotenv, func(s *Settings) {
			select {
			case reloaded <- s:
			default:
			}
		}, func(error) {})
	}()

	// Give the watcher time to register before writing.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("[overlay]\nspeed = 3\n"), 0o600)
		select {
		case s := <-reloaded:
			return s.Overlay.Speed == 3
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
