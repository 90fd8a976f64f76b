//go:build !nogpu

package gpu

import (
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/ssao"
)

type mockDevice struct{}

func (m *mockDevice) Poll(wait bool) {}
func (m *mockDevice) Destroy()       {}

type mockQueue struct{}

type mockAdapter struct{}

// mockProvider implements gpucontext.DeviceProvider without HAL access.
type mockProvider struct{}

func (mockProvider) Device() gpucontext.Device             { return &mockDevice{} }
func (mockProvider) Queue() gpucontext.Queue               { return &mockQueue{} }
func (mockProvider) Adapter() gpucontext.Adapter           { return &mockAdapter{} }
func (mockProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }

func TestInitRegistersAccelerator(t *testing.T) {
	a := ssao.CurrentAccelerator()
	if a == nil {
		t.Fatal("no accelerator registered after import")
	}
	if a.Name() != "ssao-wgpu" {
		t.Errorf("registered accelerator = %q, want %q", a.Name(), "ssao-wgpu")
	}
	if !a.CanAccelerate(ssao.AccelOcclusion) {
		t.Error("registered accelerator cannot run the occlusion kernel")
	}
}

func TestSetDeviceProvider_Nil(t *testing.T) {
	if err := SetDeviceProvider(nil); err == nil {
		t.Error("SetDeviceProvider(nil) returned nil error")
	}
}

func TestSetDeviceProvider_WithoutHAL(t *testing.T) {
	if err := SetDeviceProvider(mockProvider{}); err == nil {
		t.Error("SetDeviceProvider accepted a provider without HAL access")
	}
}
