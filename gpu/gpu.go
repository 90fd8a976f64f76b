//go:build !nogpu

// Package gpu registers the wgpu compute accelerator for the SSAO kernel.
//
// Import this package to run the kernel as a WGSL compute shader. Renderer
// tries the accelerator first for requests that use the built-in
// perspective reconstruction and falls back to the CPU dispatcher otherwise.
//
// If GPU initialization fails (no Vulkan device available), the accelerator
// stays registered but declines every request, and all work runs on the CPU.
//
// Usage:
//
//	import _ "github.com/gogpu/ssao/gpu" // enable GPU acceleration
package gpu

import (
	"errors"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/ssao"
	gpuimpl "github.com/gogpu/ssao/internal/gpu"
)

func init() {
	accel := &gpuimpl.SSAOAccelerator{}
	if err := ssao.RegisterAccelerator(accel); err != nil {
		ssao.Logger().Warn("GPU accelerator not available", "err", err)
	}
}

// SetDeviceProvider configures the GPU accelerator to use a shared GPU device
// from an external provider (e.g., a gogpu window). This avoids creating a
// separate GPU instance.
//
// The provider must also implement HalDevice() any and HalQueue() any for
// direct HAL access; otherwise an error is returned.
func SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	if provider == nil {
		return errors.New("gpu: device provider must not be nil")
	}
	return ssao.SetAcceleratorDeviceProvider(provider)
}
