//go:build !nogpu

package gpu

import (
	"testing"

	"github.com/gogpu/overlay"
)

func TestBackendRegistered(t *testing.T) {
	if Backend() == nil {
		t.Fatal("Backend() = nil")
	}
	if got := overlay.CurrentBackend(); got != Backend() {
		t.Errorf("CurrentBackend() = %v, want the gpu backend", got)
	}
	if got := Backend().Name(); got != "vulkan" {
		t.Errorf("Name() = %q, want %q", got, "vulkan")
	}
}

func TestSetDeviceProviderNil(t *testing.T) {
	if err := SetDeviceProvider(nil); err != nil {
		t.Errorf("SetDeviceProvider(nil) = %v, want nil", err)
	}
}
