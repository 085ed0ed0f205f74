//go:build !nogpu

package gpu

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/overlay"
)

// Backend creates overlay surfaces on a HAL device. It implements
// overlay.Backend.
type Backend struct {
	mu sync.Mutex

	name    string
	factory InstanceFactory

	// Shared device from an external provider. When set, surfaces render
	// on it instead of opening their own device.
	shared       *Device
	sharedFormat gputypes.TextureFormat
}

var _ overlay.Backend = (*Backend)(nil)

// NewBackend returns a backend that opens devices through factory.
func NewBackend(name string, factory InstanceFactory) *Backend {
	return &Backend{name: name, factory: factory}
}

// Name returns the backend name.
func (b *Backend) Name() string { return b.name }

// SetLogger implements the logger propagation hook of overlay.SetLogger.
func (b *Backend) SetLogger(l *slog.Logger) { setLogger(l) }

// Probe reports whether a device could be opened. A shared device always
// probes true.
func (b *Backend) Probe() bool {
	b.mu.Lock()
	shared := b.shared != nil
	b.mu.Unlock()
	if shared {
		return true
	}
	return Probe(b.factory)
}

// Create opens a device and builds a surface on it for h. Errors wrap
// overlay.ErrContextCreation.
func (b *Backend) Create(h overlay.Host, opts overlay.SurfaceOptions) (overlay.Surface, error) {
	_, isView := h.(ViewHost)
	_, isPresenter := h.(overlay.Presenter)
	if !isView && !isPresenter {
		return nil, fmt.Errorf("%w: %w", overlay.ErrContextCreation, ErrNoPresentation)
	}

	dev, format, err := b.device()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", overlay.ErrContextCreation, err)
	}
	s, err := newSurface(dev, h, opts, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", overlay.ErrContextCreation, err)
	}
	slogger().Info("gpu: surface created", "label", s.label, "adapter", dev.Name())
	return s, nil
}

// device returns the device for a new surface and the format direct-mode
// views use.
func (b *Backend) device() (*Device, gputypes.TextureFormat, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.shared != nil {
		return SharedDevice(b.shared.device, b.shared.queue), b.sharedFormat, nil
	}
	dev, err := OpenDevice(b.factory)
	if err != nil {
		return nil, gputypes.TextureFormatUndefined, err
	}
	return dev, gputypes.TextureFormatBGRA8Unorm, nil
}

// SetDeviceProvider switches the backend to a shared GPU device from an
// external provider (e.g., gogpu). The provider must implement
// HalDevice() any and HalQueue() any returning hal.Device and hal.Queue.
// Passing nil returns to per-surface devices. Existing surfaces keep the
// device they were created with.
func (b *Backend) SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if provider == nil {
		b.shared = nil
		b.sharedFormat = gputypes.TextureFormatUndefined
		return nil
	}

	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("gpu: provider HalQueue is not hal.Queue")
	}

	format := provider.SurfaceFormat()
	if format == gputypes.TextureFormatUndefined {
		format = gputypes.TextureFormatBGRA8Unorm
	}
	b.shared = SharedDevice(device, queue)
	b.sharedFormat = format
	slogger().Info("gpu: switched to shared GPU device", "format", format)
	return nil
}
