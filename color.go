// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package overlay

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
	"golang.org/x/text/cases"
)

// RGBA represents a straight-alpha color with red, green, blue, and alpha
// components. Each component is in the range [0, 1].
type RGBA struct {
	R, G, B, A float64
}

// ErrInvalidColor is returned by ParseColor for values it cannot interpret.
var ErrInvalidColor = errors.New("overlay: invalid color")

// ParseColor parses a design-token color value.
// Supported formats: "#RGB", "#RRGGBB", "#RRGGBBAA" and CSS color names
// ("royalblue", "Transparent"). Surrounding whitespace is ignored.
func ParseColor(s string) (RGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RGBA{}, fmt.Errorf("%w: empty value", ErrInvalidColor)
	}
	if s[0] == '#' {
		return parseHexColor(s)
	}
	// Casers are stateful, so each call folds with its own.
	name := cases.Fold().String(s)
	if name == "transparent" {
		return RGBA{}, nil
	}
	if c, ok := colornames.Map[name]; ok {
		return FromColor(c), nil
	}
	if c, ok := css4Names[name]; ok {
		return FromColor(c), nil
	}
	return RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
}

// css4Names holds the CSS Color Level 4 names missing from colornames.Map,
// which follows SVG 1.1.
var css4Names = map[string]color.RGBA{
	"rebeccapurple": {0x66, 0x33, 0x99, 0xff},
}

func parseHexColor(s string) (RGBA, error) {
	// colorful.Hex scans with Sscanf, which accepts short fields and
	// ignores trailing input.
	switch len(s) {
	case 4, 7, 9:
	default:
		return RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	for i := 1; i < len(s); i++ {
		if !isHexDigit(s[i]) {
			return RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
	}

	alpha := 1.0
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		alpha = float64(a) / 255
		s = s[:7]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return RGBA{R: c.R, G: c.G, B: c.B, A: alpha}, nil
}

func isHexDigit(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// FromColor converts a standard color.Color to RGBA.
func FromColor(c color.Color) RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBA{
		R: float64(n.R) / 255,
		G: float64(n.G) / 255,
		B: float64(n.B) / 255,
		A: float64(n.A) / 255,
	}
}

// NRGBA converts to the standard non-premultiplied color type.
func (c RGBA) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R)*255 + 0.5),
		G: uint8(clamp01(c.G)*255 + 0.5),
		B: uint8(clamp01(c.B)*255 + 0.5),
		A: uint8(clamp01(c.A)*255 + 0.5),
	}
}

// Uniform returns the color as an iColor uniform value.
func (c RGBA) Uniform() UniformValue {
	return ColorValue(float32(c.R), float32(c.G), float32(c.B), float32(c.A))
}

// BlendLab interpolates toward other in CIE-L*a*b* space, which keeps
// gradients perceptually even. Alpha is interpolated linearly.
func (c RGBA) BlendLab(other RGBA, t float64) RGBA {
	a := colorful.Color{R: c.R, G: c.G, B: c.B}
	b := colorful.Color{R: other.R, G: other.G, B: other.B}
	m := a.BlendLab(b, t).Clamped()
	return RGBA{R: m.R, G: m.G, B: m.B, A: c.A + (other.A-c.A)*t}
}

// Hex formats the color as "#rrggbb", or "#rrggbbaa" when not opaque.
func (c RGBA) Hex() string {
	n := c.NRGBA()
	if n.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A)
}

// clamp01 restricts a value to [0, 1] range.
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
