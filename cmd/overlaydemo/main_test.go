package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/overlay"
	"github.com/gogpu/overlay/host"
	"github.com/gogpu/overlay/internal/config"
)

func TestApplySettings(t *testing.T) {
	h := host.MustNewImage(800, 600, 1)
	defer h.Close()
	session := overlay.Mount(h, overlay.DefaultConfig(), overlay.WithBackend(nil))
	defer session.Dispose()

	next := config.Default()
	next.Overlay.Color = "#ff0000"
	next.Render.Width = 320
	next.Render.Height = 240
	next.Render.PixelRatio = 2

	require.NoError(t, applySettings(session, h, next))

	w, ht := h.ContentBox()
	assert.Equal(t, 320.0, w)
	assert.Equal(t, 240.0, ht)
	assert.Equal(t, 2.0, h.DevicePixelRatio())
	assert.Equal(t, "#ff0000", session.Config().Color)
}

func TestApplySettingsInvalidPixelRatio(t *testing.T) {
	h := host.MustNewImage(800, 600, 1)
	defer h.Close()
	session := overlay.Mount(h, overlay.DefaultConfig(), overlay.WithBackend(nil))
	defer session.Dispose()

	next := config.Default()
	next.Render.PixelRatio = 0

	err := applySettings(session, h, next)
	require.ErrorIs(t, err, host.ErrInvalidDimensions)
	assert.Equal(t, 1.0, h.DevicePixelRatio())
}
