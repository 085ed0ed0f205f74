// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package overlay

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// gradientSteps is the resolution of the gradient strip that Background.Image
// scales up to the target size.
const gradientSteps = 64

// fallbackShade is how far the bottom stop of the fallback gradient blends
// from the tint toward black.
const fallbackShade = 0.35

// Background is a static, non-animated backdrop described with ordinary
// styling: a vertical two-stop gradient. Equal stops give a flat fill.
type Background struct {
	Top     RGBA
	Bottom  RGBA
	Opacity float64
}

// BackgroundFor derives the fallback backdrop for cfg: the tint at the top,
// blended toward black at the bottom.
func BackgroundFor(cfg Config) *Background {
	tint := cfg.Tint()
	return &Background{
		Top:     tint,
		Bottom:  tint.BlendLab(RGBA{A: tint.A}, fallbackShade),
		Opacity: cfg.Opacity,
	}
}

// Flat reports whether both stops are the same color.
func (b *Background) Flat() bool {
	return b.Top == b.Bottom
}

// Image rasterizes the background at the given size for hosts that need
// pixels rather than a style description. Non-positive sizes yield a 1x1
// image.
func (b *Background) Image(width, height int) *image.RGBA {
	width, height = max(width, 1), max(height, 1)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))

	if b.Flat() {
		c := b.stop(0)
		draw.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
		return dst
	}

	strip := image.NewNRGBA(image.Rect(0, 0, 1, gradientSteps))
	for y := range gradientSteps {
		strip.SetNRGBA(0, y, b.stop(float64(y)/float64(gradientSteps-1)))
	}
	draw.BiLinear.Scale(dst, dst.Bounds(), strip, strip.Bounds(), draw.Src, nil)
	return dst
}

// stop returns the gradient color at t in [0, 1], opacity applied.
func (b *Background) stop(t float64) color.NRGBA {
	c := b.Top.BlendLab(b.Bottom, t)
	c.A *= clamp01(b.Opacity)
	return c.NRGBA()
}

// RenderFallback paints bg into h using ordinary styling. No GPU resources,
// frame loop, or resize observation are involved; the host reflows the
// background with its normal layout.
func RenderFallback(h Host, bg *Background) {
	h.SetBackground(bg)
}
