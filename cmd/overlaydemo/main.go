// Command overlaydemo renders an overlay session headlessly and writes the
// host's contents to numbered PNG files.
//
// Settings come from an optional TOML file, a .env file, and OVERLAY_*
// environment variables. With -watch, edits to the file are applied to the
// running session.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gogpu/overlay"
	_ "github.com/gogpu/overlay/gpu" // enables GPU rendering
	"github.com/gogpu/overlay/host"
	"github.com/gogpu/overlay/internal/config"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML settings file")
		output     = flag.String("output", "", "output directory (overrides settings)")
		frames     = flag.Int("frames", 0, "number of frames to write (overrides settings)")
		watch      = flag.Bool("watch", false, "apply edits to the settings file while running")
		metrics    = flag.String("metrics", "", "serve Prometheus metrics on this address")
	)
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *output != "" {
		settings.Render.Output = *output
	}
	if *frames > 0 {
		settings.Render.Frames = *frames
	}

	logger := initLogger(settings.Log.Level, settings.Log.Format)
	overlay.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *metrics != "" {
		go serveMetrics(ctx, logger, *metrics)
	}

	if err := run(ctx, logger, settings, *configPath, *watch); err != nil {
		logger.Error("overlaydemo failed", "err", err)
		os.Exit(1)
	}
}

// initLogger builds the process logger.
// level: "debug", "info", "warn", "error" (defaults to "info")
// format: "json" or "text" (defaults to "text")
func initLogger(level, format string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func serveMetrics(ctx context.Context, logger *slog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	logger.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("metrics server stopped", "err", err)
	}
}

func run(ctx context.Context, logger *slog.Logger, s *config.Settings, configPath string, watch bool) error {
	h, err := host.NewImage(s.Render.Width, s.Render.Height, s.Render.PixelRatio)
	if err != nil {
		return err
	}
	defer h.Close()

	fps := max(s.Render.FPS, 1)
	interval := time.Second / time.Duration(fps)
	clock := clockwork.NewRealClock()

	opts := []overlay.Option{
		overlay.WithClock(clock),
		overlay.WithFrameSource(overlay.NewClockFrameSource(clock, interval)),
		overlay.WithLogger(logger),
	}
	if s.Render.Fragment != "" {
		fragment, err := os.ReadFile(s.Render.Fragment)
		if err != nil {
			return fmt.Errorf("read fragment shader: %w", err)
		}
		opts = append(opts, overlay.WithShaders(overlay.DefaultVertexShader, string(fragment)))
	}

	session := overlay.Mount(h, s.OverlayConfig(), opts...)
	defer session.Dispose()

	logger.Info("overlay mounted",
		"session", session.ID(),
		"status", session.Status().String(),
		"dims", session.Dimensions().String())
	if err := session.Err(); err != nil {
		logger.Warn("overlay degraded", "err", err)
	}

	if watch && configPath != "" {
		go func() {
			err := config.Watch(ctx, configPath, nil, func(next *config.Settings) {
				if err := applySettings(session, h, next); err != nil {
					logger.Warn("settings not applied", "err", err)
					return
				}
				logger.Info("settings reloaded", "path", configPath)
			}, func(err error) {
				logger.Warn("settings reload failed", "err", err)
			})
			if err != nil {
				logger.Warn("settings watch stopped", "err", err)
			}
		}()
	}

	if err := os.MkdirAll(s.Render.Output, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	for i := 0; i < s.Render.Frames; i++ {
		select {
		case <-ctx.Done():
			logger.Info("interrupted", "written", i)
			return nil
		case <-ticker.Chan():
		}
		path := filepath.Join(s.Render.Output, fmt.Sprintf("frame_%04d.png", i))
		if err := writeSnapshot(h, path); err != nil {
			return err
		}
	}

	logger.Info("frames written",
		"count", s.Render.Frames,
		"dir", s.Render.Output,
		"drawn", session.Frames(),
		"presented", h.Frames())
	return nil
}

func writeSnapshot(h *host.Image, path string) error {
	img := h.Snapshot()
	if img == nil {
		return fmt.Errorf("host shows nothing to snapshot")
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// applySettings pushes reloaded settings into the running session and its
// host. Reconfigure runs first so a new pixel-ratio cap applies to the
// resize that follows.
func applySettings(session *overlay.Session, h *host.Image, next *config.Settings) error {
	if err := session.Reconfigure(next.OverlayConfig()); err != nil {
		return fmt.Errorf("reconfigure: %w", err)
	}
	if err := h.SetPixelRatio(next.Render.PixelRatio); err != nil {
		return fmt.Errorf("pixel ratio: %w", err)
	}
	if err := h.Resize(next.Render.Width, next.Render.Height); err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	return nil
}
