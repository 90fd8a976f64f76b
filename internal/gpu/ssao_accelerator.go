//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ssao"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// workgroupSize is the tile edge of ssao.wgsl (@workgroup_size(16, 16, 1)).
const workgroupSize = 16

// readbackTimeout bounds the fence wait of one dispatch.
const readbackTimeout = 5 * time.Second

// ssaoParams is the uniform block of ssao.wgsl. Field order and padding
// match the WGSL struct (48 bytes).
type ssaoParams struct {
	OutputWidth    uint32
	OutputHeight   uint32
	PixelSizeX     float32
	PixelSizeY     float32
	HalfPixelX     float32
	HalfPixelY     float32
	Strength       float32
	SamplingRadius float32
	TanHalfFovX    float32
	TanHalfFovY    float32
	_              float32
	_              float32
}

func makeParams(p ssao.Params, proj ssao.Perspective) ssaoParams {
	return ssaoParams{
		OutputWidth:    p.OutputWidth,
		OutputHeight:   p.OutputHeight,
		PixelSizeX:     p.PixelSize[0],
		PixelSizeY:     p.PixelSize[1],
		HalfPixelX:     p.HalfPixelSize[0],
		HalfPixelY:     p.HalfPixelSize[1],
		Strength:       p.Strength,
		SamplingRadius: p.SamplingRadius,
		TanHalfFovX:    proj.TanHalfFovX,
		TanHalfFovY:    proj.TanHalfFovY,
	}
}

// SSAOAccelerator runs the SSAO kernel as a wgpu/hal compute pipeline.
// It implements the ssao.Accelerator interface.
//
// Each Compute call uploads the depth buffer, dispatches one workgroup per
// 16x16 tile and reads the AO plane back. When no GPU is available Init
// still succeeds and every Compute returns ssao.ErrFallbackToCPU.
type SSAOAccelerator struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline

	gpuReady       bool
	externalDevice bool // true when using shared device (don't destroy on Close)
}

var (
	_ ssao.Accelerator         = (*SSAOAccelerator)(nil)
	_ ssao.DeviceProviderAware = (*SSAOAccelerator)(nil)
)

func (a *SSAOAccelerator) Name() string { return "ssao-wgpu" }

func (a *SSAOAccelerator) CanAccelerate(op ssao.AcceleratedOp) bool {
	return op&ssao.AccelOcclusion != 0
}

// SetLogger sets the logger for the GPU backend.
// Called by ssao.SetLogger to propagate logging configuration.
func (a *SSAOAccelerator) SetLogger(l *slog.Logger) {
	setLogger(l)
}

func (a *SSAOAccelerator) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.initGPU(); err != nil {
		slogger().Warn("ssao-gpu: GPU init failed, using CPU fallback", "err", err)
	}
	return nil
}

// Ready reports whether a device and pipeline are available.
func (a *SSAOAccelerator) Ready() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gpuReady
}

func (a *SSAOAccelerator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.destroyPipelines()
	if !a.externalDevice {
		if a.device != nil {
			a.device.Destroy()
			a.device = nil
		}
		if a.instance != nil {
			a.instance.Destroy()
			a.instance = nil
		}
	} else {
		a.device = nil
		a.instance = nil
	}
	a.queue = nil
	a.gpuReady = false
	a.externalDevice = false
}

// SetDeviceProvider switches the accelerator to a shared GPU device from an
// external provider (e.g., gogpu). The provider must implement
// HalDevice() any and HalQueue() any returning hal.Device and hal.Queue.
func (a *SSAOAccelerator) SetDeviceProvider(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return errors.New("ssao-gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return errors.New("ssao-gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return errors.New("ssao-gpu: provider HalQueue is not hal.Queue")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.destroyPipelines()
	if !a.externalDevice && a.device != nil {
		a.device.Destroy()
	}
	if a.instance != nil {
		a.instance.Destroy()
		a.instance = nil
	}

	a.device = device
	a.queue = queue
	a.externalDevice = true

	if err := a.createPipelines(); err != nil {
		a.gpuReady = false
		return fmt.Errorf("ssao-gpu: create pipelines with shared device: %w", err)
	}
	a.gpuReady = true
	slogger().Info("ssao-gpu: switched to shared GPU device")
	return nil
}

// Compute runs the kernel for req on the GPU and writes req.Out.
func (a *SSAOAccelerator) Compute(req ssao.AccelRequest) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.gpuReady {
		return ssao.ErrFallbackToCPU
	}
	if req.Depth == nil || req.Out == nil {
		return ssao.ErrFallbackToCPU
	}
	w, h := req.Params.OutputWidth, req.Params.OutputHeight
	n := int(w) * int(h)
	if len(req.Depth.Data) != n || len(req.Out.Data) != n {
		return ssao.ErrSizeMismatch
	}

	start := time.Now()
	if err := a.dispatch(req, w, h); err != nil {
		return err
	}
	slogger().Debug("ssao-gpu: dispatch complete",
		"width", w, "height", h, "elapsed", time.Since(start))
	return nil
}

// gpuBuffers holds the per-dispatch resources.
type gpuBuffers struct {
	params  hal.Buffer
	depth   hal.Buffer
	ao      hal.Buffer
	staging hal.Buffer
	bind    hal.BindGroup
}

func (a *SSAOAccelerator) destroyBuffers(b *gpuBuffers) {
	if b.bind != nil {
		a.device.DestroyBindGroup(b.bind)
	}
	for _, buf := range []hal.Buffer{b.params, b.depth, b.ao, b.staging} {
		if buf != nil {
			a.device.DestroyBuffer(buf)
		}
	}
}

func (a *SSAOAccelerator) dispatch(req ssao.AccelRequest, w, h uint32) error {
	params := makeParams(req.Params, req.Projection)
	paramBytes := structToBytes(unsafe.Pointer(&params), unsafe.Sizeof(params)) //nolint:gosec // safe struct access
	depthBytes := floatsToBytes(req.Depth.Data)
	planeSize := uint64(len(depthBytes))

	var b gpuBuffers
	defer a.destroyBuffers(&b)
	if err := a.createBuffers(&b, uint64(len(paramBytes)), planeSize); err != nil {
		return err
	}
	a.queue.WriteBuffer(b.params, 0, paramBytes)
	a.queue.WriteBuffer(b.depth, 0, depthBytes)

	encoder, err := a.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "ssao_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("ssao"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}
	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "ssao_pass"})
	pass.SetPipeline(a.pipeline)
	pass.SetBindGroup(0, b.bind, nil)
	pass.Dispatch(workgroupCount(w), workgroupCount(h), 1)
	pass.End()
	encoder.CopyBufferToBuffer(b.ao, b.staging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: planeSize},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer a.device.FreeCommandBuffer(cmdBuf)

	fence, err := a.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer a.device.DestroyFence(fence)
	if err := a.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := a.device.Wait(fence, 1, readbackTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	readback := make([]byte, planeSize)
	if err := a.queue.ReadBuffer(b.staging, 0, readback); err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	bytesToFloats(readback, req.Out.Data)
	return nil
}

func (a *SSAOAccelerator) createBuffers(b *gpuBuffers, paramSize, planeSize uint64) error {
	var err error
	b.params, err = a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "ssao_params", Size: paramSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create params buffer: %w", err)
	}
	b.depth, err = a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "ssao_depth", Size: planeSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create depth buffer: %w", err)
	}
	b.ao, err = a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "ssao_ao", Size: planeSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create ao buffer: %w", err)
	}
	b.staging, err = a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "ssao_staging", Size: planeSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create staging buffer: %w", err)
	}
	b.bind, err = a.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "ssao_bind", Layout: a.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: b.params.NativeHandle(), Offset: 0, Size: paramSize}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: b.depth.NativeHandle(), Offset: 0, Size: planeSize}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: b.ao.NativeHandle(), Offset: 0, Size: planeSize}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	return nil
}

func (a *SSAOAccelerator) initGPU() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return errors.New("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	a.instance = instance
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return errors.New("no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	a.device = openDev.Device
	a.queue = openDev.Queue
	if err := a.createPipelines(); err != nil {
		a.device.Destroy()
		a.device = nil
		a.queue = nil
		return fmt.Errorf("create pipelines: %w", err)
	}
	a.gpuReady = true
	slogger().Info("ssao-gpu: GPU accelerator initialized", "adapter", selected.Info.Name)
	return nil
}

func (a *SSAOAccelerator) createPipelines() error {
	module, err := ParseShader(ssaoShaderSource)
	if err != nil {
		return fmt.Errorf("parse ssao shader: %w", err)
	}
	if err := checkEntryPoint(module, ssaoEntryPoint); err != nil {
		return err
	}
	spirv, err := CompileShaderToSPIRV(ssaoShaderSource)
	if err != nil {
		return err
	}

	shader, err := a.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "ssao",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return fmt.Errorf("create ssao shader module: %w", err)
	}
	a.shader = shader

	bindLayout, err := a.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "ssao_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	a.bindLayout = bindLayout

	pipeLayout, err := a.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "ssao_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{a.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	a.pipeLayout = pipeLayout

	pipeline, err := a.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "ssao_pipeline", Layout: a.pipeLayout,
		Compute: hal.ComputeState{Module: a.shader, EntryPoint: ssaoEntryPoint},
	})
	if err != nil {
		return fmt.Errorf("create compute pipeline: %w", err)
	}
	a.pipeline = pipeline
	return nil
}

func (a *SSAOAccelerator) destroyPipelines() {
	if a.device == nil {
		return
	}
	if a.pipeline != nil {
		a.device.DestroyComputePipeline(a.pipeline)
		a.pipeline = nil
	}
	if a.pipeLayout != nil {
		a.device.DestroyPipelineLayout(a.pipeLayout)
		a.pipeLayout = nil
	}
	if a.bindLayout != nil {
		a.device.DestroyBindGroupLayout(a.bindLayout)
		a.bindLayout = nil
	}
	if a.shader != nil {
		a.device.DestroyShaderModule(a.shader)
		a.shader = nil
	}
}

func workgroupCount(n uint32) uint32 {
	return (n + workgroupSize - 1) / workgroupSize
}

func structToBytes(ptr unsafe.Pointer, size uintptr) []byte {
	return unsafe.Slice((*byte)(ptr), size) //nolint:gosec // safe struct serialization
}

func floatsToBytes(src []float32) []byte {
	out := make([]byte, len(src)*4)
	for i, v := range src {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

func bytesToFloats(src []byte, dst []float32) {
	for i := range dst {
		if (i+1)*4 > len(src) {
			return
		}
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
	}
}
