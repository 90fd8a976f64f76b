// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package kernel is the host implementation of the tile-parallel SSAO compute
// kernel.
//
// One workgroup of 256 lanes processes one 16×16 output tile:
//
//	load depth tile   -> group barrier
//	reconstruct + Phase I (local offsets from shared depth)
//	                  -> group barrier (shared buffer changes layout)
//	Phase II × 10     (direct depth taps, shared within sub-groups,
//	                   sub-group barriers around every exchange)
//	composite + write
//
// Lanes run through an Executor. SerialExecutor is the fast host path;
// GoroutineExecutor runs real concurrent lanes on explicit barriers.
package kernel

// Reconstructor converts a screen UV and linear depth to a view-space position.
type Reconstructor interface {
	ViewPosition(uv Vec2, depth float32) Vec3
}

// Constants is the per-dispatch constant block.
type Constants struct {
	OutputWidth, OutputHeight uint32
	PixelSize, HalfPixelSize  Vec2
	Strength, SamplingRadius  float32
}

// Inputs groups everything a dispatch reads. Inputs are never written.
type Inputs struct {
	Depth         Field
	Reconstructor Reconstructor
	Constants     Constants
}

// accum is a per-lane (occlusion, weight) pair.
type accum struct {
	occlusion float32
	weight    float32
}

// laneState holds the registers of one lane for one dispatch.
type laneState struct {
	px, py   int // output pixel
	gx, gy   int // depth-grid cell of the output pixel
	pos      Vec3
	normal   Vec3
	local    accum // Phase I; not part of the final output
	ring     accum // Phase II
	angle    float32
	occluder Vec3
}

// Workgroup is the scratch state of one in-flight tile: the shared buffer,
// the lane registers and the compiled program. A Workgroup is reused across
// dispatches but must not run two dispatches at once.
type Workgroup struct {
	shared  SharedTile
	lanes   [GroupLanes]laneState
	exec    Executor
	program []Step

	in               *Inputs
	originX, originY int
	out, local       *Field
}

// NewWorkgroup creates a workgroup that runs on exec.
// A nil exec selects SerialExecutor.
func NewWorkgroup(exec Executor) *Workgroup {
	if exec == nil {
		exec = SerialExecutor{}
	}
	w := &Workgroup{exec: exec}
	w.program = w.compile()
	return w
}

// Program returns the step list the workgroup executes per dispatch.
func (w *Workgroup) Program() []Step {
	return w.program
}

func (w *Workgroup) compile() []Step {
	program := []Step{
		{Name: "load", Run: w.loadLane, Sync: SyncGroup},
		{Name: "local", Run: w.localLane, Sync: SyncGroup},
	}
	for range RingLoops {
		program = append(program,
			Step{Name: "ring-sample", Run: w.ringSampleLane, Sync: SyncSubgroup},
			Step{Name: "ring-share", Run: w.ringShareLane, Sync: SyncSubgroup},
		)
	}
	return append(program, Step{Name: "composite", Run: w.compositeLane, Sync: SyncNone})
}

// Dispatch runs the kernel for tile (tileX, tileY) and writes one value per
// covered output pixel into out. When local is non-nil, the Phase I estimate
// is composited into it as a diagnostic.
func (w *Workgroup) Dispatch(in *Inputs, tileX, tileY int, out, local *Field) {
	w.shared.Reset()
	clear(w.lanes[:])
	w.in = in
	w.originX = tileX * TileSize
	w.originY = tileY * TileSize
	w.out = out
	w.local = local

	w.exec.Execute(w.program)

	w.in, w.out, w.local = nil, nil, nil
}

// TileCount returns the dispatch grid for an output size.
func TileCount(width, height int) (x, y int) {
	return (width + TileSize - 1) / TileSize, (height + TileSize - 1) / TileSize
}

// Run dispatches every tile of the output on a single workgroup.
// Parallel hosts dispatch tiles on their own workgroups instead.
func Run(in *Inputs, exec Executor, out, local *Field) {
	w := NewWorkgroup(exec)
	tx, ty := TileCount(out.Width, out.Height)
	for y := range ty {
		for x := range tx {
			w.Dispatch(in, x, y, out, local)
		}
	}
}
