package ssao

import (
	"errors"
	"sync"
)

// ErrFallbackToCPU indicates the GPU accelerator cannot handle this request.
// The caller should transparently fall back to the CPU kernel.
var ErrFallbackToCPU = errors.New("ssao: falling back to CPU")

// AcceleratedOp describes operation types for GPU capability checking.
type AcceleratedOp uint32

const (
	// AccelOcclusion is the full kernel producing the final AO output.
	AccelOcclusion AcceleratedOp = 1 << iota
)

// AccelRequest is one accelerated dispatch. Depth and Out have the output
// size given by Params.
type AccelRequest struct {
	Depth      *DepthBuffer
	Params     Params
	Projection Perspective
	Out        *AOBuffer
}

// Accelerator is an optional GPU implementation of the kernel.
//
// When registered via RegisterAccelerator, Renderer tries it first. If it
// returns ErrFallbackToCPU or any error, the CPU kernel runs instead.
//
// Implementations live in GPU backend packages. Users opt in via blank import:
//
//	import _ "github.com/gogpu/ssao/gpu" // enables GPU acceleration
type Accelerator interface {
	// Name returns the accelerator name (e.g., "wgpu-vulkan").
	Name() string

	// Init initializes GPU resources. Called once during registration.
	Init() error

	// Close releases GPU resources.
	Close()

	// CanAccelerate reports whether the accelerator supports the operation.
	CanAccelerate(op AcceleratedOp) bool

	// Compute runs the kernel over the whole output and writes req.Out.
	// Returns ErrFallbackToCPU if the request cannot run on the GPU.
	Compute(req AccelRequest) error
}

// DeviceProviderAware is an optional interface for accelerators that can share
// GPU resources with an external provider (e.g., a gogpu window).
// When SetDeviceProvider is called, the accelerator reuses the provided GPU
// device instead of creating its own.
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

var (
	accelMu sync.RWMutex
	accel   Accelerator
)

// RegisterAccelerator registers a GPU accelerator.
//
// Only one accelerator can be registered. Subsequent calls replace the previous one.
// The accelerator's Init() method is called during registration.
// If Init() fails, the accelerator is not registered and the error is returned.
func RegisterAccelerator(a Accelerator) error {
	if a == nil {
		return errors.New("ssao: accelerator must not be nil")
	}
	propagateLogger(a, Logger())
	if err := a.Init(); err != nil {
		return err
	}
	accelMu.Lock()
	old := accel
	accel = a
	accelMu.Unlock()
	if old != nil {
		old.Close()
	}
	Logger().Info("ssao: accelerator registered", "name", a.Name())
	return nil
}

// CurrentAccelerator returns the registered accelerator, or nil if none.
func CurrentAccelerator() Accelerator {
	accelMu.RLock()
	a := accel
	accelMu.RUnlock()
	return a
}

// SetAcceleratorDeviceProvider passes a device provider to the registered
// accelerator, enabling GPU device sharing. If no accelerator is registered
// or it doesn't support device sharing, this is a no-op.
func SetAcceleratorDeviceProvider(provider any) error {
	a := CurrentAccelerator()
	if a == nil {
		return nil
	}
	if dpa, ok := a.(DeviceProviderAware); ok {
		return dpa.SetDeviceProvider(provider)
	}
	return nil
}
