//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// InstanceFactory creates a HAL instance. The backend uses one bound to a
// registered HAL backend; tests pass one for the noop API.
type InstanceFactory func() (hal.Instance, error)

// ErrNoAdapter is returned when an instance exposes no adapters.
var ErrNoAdapter = errors.New("gpu: no GPU adapters found")

// HALInstance returns a factory for the registered HAL backend of kind.
func HALInstance(kind gputypes.Backend) InstanceFactory {
	return func() (hal.Instance, error) {
		backend, ok := hal.GetBackend(kind)
		if !ok {
			return nil, fmt.Errorf("gpu: %v backend not available", kind)
		}
		return backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	}
}

// Probe reports whether factory yields an instance with at least one
// adapter. The instance is destroyed before Probe returns.
func Probe(factory InstanceFactory) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slogger().Warn("gpu: probe panicked", "panic", r)
			ok = false
		}
	}()
	instance, err := factory()
	if err != nil || instance == nil {
		slogger().Debug("gpu: probe failed", "err", err)
		return false
	}
	defer instance.Destroy()
	return len(instance.EnumerateAdapters(nil)) > 0
}

// Device bundles the HAL objects one surface renders with.
type Device struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	name     string

	// external devices belong to a provider and are never destroyed here.
	external bool
}

// OpenDevice creates an instance from factory and opens the preferred
// adapter: the first discrete or integrated GPU, else the first adapter.
func OpenDevice(factory InstanceFactory) (*Device, error) {
	instance, err := factory()
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}
	slogger().Info("gpu: device opened", "adapter", selected.Info.Name)
	return &Device{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		name:     selected.Info.Name,
	}, nil
}

// SharedDevice wraps a device owned by someone else.
func SharedDevice(device hal.Device, queue hal.Queue) *Device {
	return &Device{device: device, queue: queue, name: "shared", external: true}
}

// Name returns the adapter name, or "shared" for external devices.
func (d *Device) Name() string { return d.name }

// Release destroys the device and instance unless they are external.
// Safe to call multiple times.
func (d *Device) Release() {
	if d.external {
		d.device = nil
		d.queue = nil
		return
	}
	if d.device != nil {
		d.device.Destroy()
		d.device = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
	d.queue = nil
}
