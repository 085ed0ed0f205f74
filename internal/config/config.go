// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package config loads overlay demo settings from a TOML file, a .env file,
// and the environment, in increasing order of precedence, and watches the
// file for changes.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"go-simpler.org/env"

	"github.com/gogpu/overlay"
)

// Settings is the full demo configuration.
type Settings struct {
	Overlay Overlay `toml:"overlay"`
	Render  Render  `toml:"render"`
	Log     Log     `toml:"log"`
}

// Overlay mirrors overlay.Config.
type Overlay struct {
	Color         string  `toml:"color" env:"OVERLAY_COLOR"`
	Speed         float64 `toml:"speed" env:"OVERLAY_SPEED"`
	Scale         float64 `toml:"scale" env:"OVERLAY_SCALE"`
	Opacity       float64 `toml:"opacity" env:"OVERLAY_OPACITY"`
	Interactive   bool    `toml:"interactive" env:"OVERLAY_INTERACTIVE"`
	PointerMode   string  `toml:"pointer_mode" env:"OVERLAY_POINTER_MODE"`
	MaxPixelRatio float64 `toml:"max_pixel_ratio" env:"OVERLAY_MAX_PIXEL_RATIO"`
	Transparent   bool    `toml:"transparent" env:"OVERLAY_TRANSPARENT"`
}

// Render describes the headless host and output.
type Render struct {
	Width      float64 `toml:"width" env:"OVERLAY_WIDTH"`
	Height     float64 `toml:"height" env:"OVERLAY_HEIGHT"`
	PixelRatio float64 `toml:"pixel_ratio" env:"OVERLAY_PIXEL_RATIO"`
	FPS        int     `toml:"fps" env:"OVERLAY_FPS"`
	Frames     int     `toml:"frames" env:"OVERLAY_FRAMES"`
	Output     string  `toml:"output" env:"OVERLAY_OUTPUT"`
	Fragment   string  `toml:"fragment" env:"OVERLAY_FRAGMENT"` // optional WGSL fragment shader file
}

// Log selects the slog level and handler.
type Log struct {
	Level  string `toml:"level" env:"LOG_LEVEL"`
	Format string `toml:"format" env:"LOG_FORMAT"`
}

// Default returns the built-in settings.
func Default() *Settings {
	cfg := overlay.DefaultConfig()
	return &Settings{
		Overlay: Overlay{
			Color:         cfg.Color,
			Speed:         cfg.Speed,
			Scale:         cfg.Scale,
			Opacity:       cfg.Opacity,
			Interactive:   cfg.Interactive,
			PointerMode:   cfg.PointerMode.String(),
			MaxPixelRatio: cfg.MaxPixelRatio,
			Transparent:   cfg.Transparent,
		},
		Render: Render{
			Width:      800,
			Height:     600,
			PixelRatio: 1,
			FPS:        60,
			Frames:     60,
			Output:     "frames",
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads settings from path (if non-empty), then applies environment
// overrides. Variables from dotenv files (".env" when none are given) are
// added to the environment first; missing dotenv files are ignored.
func Load(path string, dotenv ...string) (*Settings, error) {
	if err := godotenv.Load(dotenv...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load dotenv: %w", err)
	}

	s := Default()
	if path != "" {
		if err := s.readFile(path); err != nil {
			return nil, err
		}
	}
	if err := env.Load(s, nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}
	return s, nil
}

// readFile decodes the TOML file at path over s. Keys absent from the file
// keep their current values; unknown keys are an error.
func (s *Settings) readFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(s); err != nil {
		return fmt.Errorf("config: decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// OverlayConfig converts the overlay section. An unknown pointer mode
// selects the continuous mode.
func (s *Settings) OverlayConfig() overlay.Config {
	mode, _ := overlay.ParsePointerMode(s.Overlay.PointerMode)
	return overlay.Config{
		Color:         s.Overlay.Color,
		Speed:         s.Overlay.Speed,
		Scale:         s.Overlay.Scale,
		Opacity:       s.Overlay.Opacity,
		Interactive:   s.Overlay.Interactive,
		PointerMode:   mode,
		MaxPixelRatio: s.Overlay.MaxPixelRatio,
		Transparent:   s.Overlay.Transparent,
	}
}

// Watch reloads the file at path whenever it is written or replaced and
// passes the result to fn. Reload failures go to onErr and the previous
// settings stay in effect. Watch blocks until ctx is done.
//
// The parent directory is watched so that editors which save by renaming a
// temporary file are seen.
func Watch(ctx context.Context, path string, dotenv []string, fn func(*Settings), onErr func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: create watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("config: watch %s: %w", filepath.Dir(abs), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			s, err := Load(abs, dotenv...)
			if err != nil {
				onErr(err)
				continue
			}
			fn(s)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			onErr(err)
		}
	}
}
