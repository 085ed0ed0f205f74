// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package overlay

import (
	"fmt"
	"math"
)

// PointerMode selects how pointer movement feeds the iMouse uniform when
// Config.Interactive is set.
type PointerMode uint8

const (
	// PointerContinuous eases iMouse toward the latest pointer position on
	// every frame.
	PointerContinuous PointerMode = iota

	// PointerDiscrete writes iMouse only when a pointer move event arrives.
	PointerDiscrete
)

func (m PointerMode) String() string {
	switch m {
	case PointerContinuous:
		return "continuous"
	case PointerDiscrete:
		return "discrete"
	default:
		return fmt.Sprintf("PointerMode(%d)", m)
	}
}

// ParsePointerMode parses "continuous" or "discrete". Any other value
// reports false.
func ParsePointerMode(s string) (PointerMode, bool) {
	switch s {
	case "continuous":
		return PointerContinuous, true
	case "discrete":
		return PointerDiscrete, true
	}
	return PointerContinuous, false
}

// Defaults applied by Config.Normalize.
const (
	DefaultColor         = "#3b82f6"
	DefaultSpeed         = 1.0
	DefaultScale         = 1.0
	DefaultOpacity       = 1.0
	DefaultMaxPixelRatio = 2.0
)

// Config is the mount-time configuration record of an overlay.
//
// Start from DefaultConfig: the zero value is valid but fully transparent
// because a zero Opacity is honored.
type Config struct {
	// Color is the visual tint as a hex value or CSS color name.
	Color string

	// Speed is the time-scale multiplier applied to iTime. Must be > 0.
	Speed float64

	// Scale is the spatial-frequency multiplier. Must be > 0.
	Scale float64

	// Opacity is the overall opacity in [0, 1].
	Opacity float64

	// Interactive feeds pointer position into iMouse.
	Interactive bool

	// PointerMode selects continuous or discrete pointer updates.
	PointerMode PointerMode

	// MaxPixelRatio caps the device pixel ratio used for the backing store.
	// Must be > 0.
	MaxPixelRatio float64

	// Transparent clears the surface to transparent black instead of opaque
	// black before each draw.
	Transparent bool
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		Color:         DefaultColor,
		Speed:         DefaultSpeed,
		Scale:         DefaultScale,
		Opacity:       DefaultOpacity,
		PointerMode:   PointerContinuous,
		MaxPixelRatio: DefaultMaxPixelRatio,
		Transparent:   true,
	}
}

// Normalize returns a copy of c with every unrecognized or out-of-range
// value replaced by its default, and the names of the fields that were
// replaced. It never fails.
func (c Config) Normalize() (Config, []string) {
	var fixed []string
	if _, err := ParseColor(c.Color); err != nil {
		c.Color = DefaultColor
		fixed = append(fixed, "color")
	}
	if !positive(c.Speed) {
		c.Speed = DefaultSpeed
		fixed = append(fixed, "speed")
	}
	if !positive(c.Scale) {
		c.Scale = DefaultScale
		fixed = append(fixed, "scale")
	}
	if !finite(c.Opacity) || c.Opacity < 0 || c.Opacity > 1 {
		c.Opacity = DefaultOpacity
		fixed = append(fixed, "opacity")
	}
	if c.PointerMode != PointerContinuous && c.PointerMode != PointerDiscrete {
		c.PointerMode = PointerContinuous
		fixed = append(fixed, "pointer_mode")
	}
	if !positive(c.MaxPixelRatio) {
		c.MaxPixelRatio = DefaultMaxPixelRatio
		fixed = append(fixed, "max_pixel_ratio")
	}
	return c, fixed
}

// Tint returns the parsed Color, or the default color if it does not parse.
func (c Config) Tint() RGBA {
	if t, err := ParseColor(c.Color); err == nil {
		return t
	}
	t, _ := ParseColor(DefaultColor)
	return t
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func positive(f float64) bool {
	return finite(f) && f > 0
}
