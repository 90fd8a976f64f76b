//go:build !nogpu

// Package gpu implements the SSAO kernel as a wgpu/hal compute pipeline.
//
// The WGSL shader in shaders/ssao.wgsl mirrors the CPU kernel in
// internal/kernel: one 16x16 workgroup per output tile, a 1024-slot
// workgroup buffer holding first the padded depth tile and then three
// planes of ring occluders, and workgroup barriers around every exchange.
//
// # Pipeline
//
//	depth (storage, read) + params (uniform)
//	    -> ssao.wgsl, dispatch ceil(W/16) x ceil(H/16)
//	    -> ao (storage, read_write) -> staging -> readback
//
// The shader implements only the built-in perspective reconstruction.
// Requests with a custom reconstructor stay on the CPU.
//
// # Device Ownership
//
// SSAOAccelerator opens its own Vulkan device during Init. When an
// application already owns a device (for example a gogpu window), it can be
// shared through SetDeviceProvider; shared devices are never destroyed by
// the accelerator.
package gpu
