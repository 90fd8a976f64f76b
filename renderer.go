package ssao

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gogpu/ssao/internal/kernel"
	"github.com/gogpu/ssao/internal/parallel"
)

// ErrClosed is returned by a Renderer after Close.
var ErrClosed = errors.New("ssao: renderer closed")

// Renderer computes ambient occlusion for depth buffers.
//
// A Renderer owns a pool of tile workers. It is safe for concurrent use as
// long as concurrent calls write to different output buffers.
type Renderer struct {
	opts     options
	dispatch *parallel.Dispatcher
	closed   atomic.Bool
}

// NewRenderer creates a renderer with the given options.
func NewRenderer(opts ...Option) *Renderer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var newExec func() kernel.Executor
	if o.lanes == LaneGoroutines {
		newExec = func() kernel.Executor { return kernel.NewGoroutineExecutor() }
	}

	return &Renderer{
		opts:     o,
		dispatch: parallel.NewDispatcher(o.workers, newExec),
	}
}

// Compute runs the kernel over depth and returns a new output buffer.
func (r *Renderer) Compute(ctx context.Context, depth *DepthBuffer, params Params) (*AOBuffer, error) {
	out := NewAOBuffer(params.Size())
	if err := r.ComputeInto(ctx, depth, params, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ComputeInto runs the kernel over depth and writes every pixel of out.
//
// The registered accelerator is tried first when enabled and the
// reconstructor is a Perspective. Any accelerator error falls back to the
// CPU kernel. On the CPU path, cancelling ctx stops scheduling further
// tiles; out is then partially written and ctx.Err() is returned.
func (r *Renderer) ComputeInto(ctx context.Context, depth *DepthBuffer, params Params, out *AOBuffer) error {
	if err := r.check(ctx, depth, params, out); err != nil {
		return err
	}

	rec, proj, gpuOK := r.reconstructor(params)
	if r.opts.accelerate && gpuOK {
		err := r.accelerate(AccelRequest{Depth: depth, Params: params, Projection: proj, Out: out})
		if err == nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	o := out.field()
	return r.run(ctx, depth, params, rec, &o, nil)
}

// ComputeLocal returns the Phase I estimate composited on its own.
//
// The final output never includes this estimate. It is a diagnostic view of
// the local occlusion term and always runs on the CPU.
func (r *Renderer) ComputeLocal(ctx context.Context, depth *DepthBuffer, params Params) (*AOBuffer, error) {
	local := NewAOBuffer(params.Size())
	if err := r.check(ctx, depth, params, local); err != nil {
		return nil, err
	}

	rec, _, _ := r.reconstructor(params)
	discard := kernel.NewField(local.Width, local.Height)
	lf := local.field()
	if err := r.run(ctx, depth, params, rec, &discard, &lf); err != nil {
		return nil, err
	}
	return local, nil
}

// Close stops the tile workers. Close is safe to call multiple times.
func (r *Renderer) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}
	r.dispatch.Close()
}

// check validates a request before any work is scheduled.
func (r *Renderer) check(ctx context.Context, depth *DepthBuffer, params Params, out *AOBuffer) error {
	if r.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := params.Validate(); err != nil {
		return err
	}
	w, h := params.Size()
	if depth == nil || depth.Width != w || depth.Height != h || len(depth.Data) != w*h {
		return fmt.Errorf("%w: depth buffer does not match output %dx%d", ErrSizeMismatch, w, h)
	}
	if out == nil || out.Width != w || out.Height != h || len(out.Data) != w*h {
		return fmt.Errorf("%w: AO buffer does not match output %dx%d", ErrSizeMismatch, w, h)
	}
	return nil
}

// reconstructor resolves the configured reconstructor for an output size and
// reports whether the GPU shader can express it.
func (r *Renderer) reconstructor(params Params) (Reconstructor, Perspective, bool) {
	switch rec := r.opts.reconstructor.(type) {
	case nil:
		w, h := params.Size()
		p := NewPerspective(DefaultFovY, float32(w)/float32(h))
		return p, p, true
	case Perspective:
		return rec, rec, true
	default:
		return rec, Perspective{}, false
	}
}

// accelerate tries the registered accelerator.
func (r *Renderer) accelerate(req AccelRequest) error {
	a := CurrentAccelerator()
	if a == nil || !a.CanAccelerate(AccelOcclusion) {
		return ErrFallbackToCPU
	}
	err := a.Compute(req)
	switch {
	case err == nil:
		Logger().Debug("ssao: gpu dispatch", "accelerator", a.Name(),
			"width", req.Params.OutputWidth, "height", req.Params.OutputHeight)
	case errors.Is(err, ErrFallbackToCPU):
		Logger().Debug("ssao: accelerator declined, using CPU", "accelerator", a.Name())
	default:
		Logger().Warn("ssao: GPU compute failed, falling back to CPU", "accelerator", a.Name(), "err", err)
	}
	return err
}

func (r *Renderer) run(ctx context.Context, depth *DepthBuffer, params Params, rec Reconstructor, out, local *kernel.Field) error {
	in := &kernel.Inputs{
		Depth:         depth.field(),
		Reconstructor: rec,
		Constants:     params.constants(),
	}

	tx, ty := params.TileCount()
	Logger().Debug("ssao: cpu dispatch",
		"width", params.OutputWidth, "height", params.OutputHeight,
		"tiles", tx*ty, "workers", r.dispatch.Workers(), "lanes", r.opts.lanes)

	return r.dispatch.Run(ctx, in, out, local)
}
