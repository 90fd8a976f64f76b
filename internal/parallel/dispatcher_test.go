package parallel

import (
	"context"
	"errors"
	"math"
	"runtime"
	"sync"
	"testing"

	"github.com/gogpu/ssao/internal/kernel"
	"github.com/gogpu/ssao/internal/synth"
)

type pinhole struct{ tanHalf float32 }

func (p pinhole) ViewPosition(uv kernel.Vec2, depth float32) kernel.Vec3 {
	return kernel.Vec3{
		X: (2*uv.X - 1) * p.tanHalf * depth,
		Y: (1 - 2*uv.Y) * p.tanHalf * depth,
		Z: depth,
	}
}

func testInputs(w, h int, gen synth.Generator) *kernel.Inputs {
	depth := kernel.NewField(w, h)
	copy(depth.Data, gen(w, h))
	px := kernel.Vec2{X: 1 / float32(w), Y: 1 / float32(h)}
	return &kernel.Inputs{
		Depth:         depth,
		Reconstructor: pinhole{tanHalf: 0.5},
		Constants: kernel.Constants{
			OutputWidth:    uint32(w),
			OutputHeight:   uint32(h),
			PixelSize:      px,
			HalfPixelSize:  kernel.Vec2{X: px.X / 2, Y: px.Y / 2},
			Strength:       1,
			SamplingRadius: 0.05,
		},
	}
}

func sameBits(t *testing.T, got, want kernel.Field) {
	t.Helper()
	for i := range want.Data {
		if math.Float32bits(got.Data[i]) != math.Float32bits(want.Data[i]) {
			t.Fatalf("pixel (%d, %d) = %v, want %v",
				i%want.Width, i/want.Width, got.Data[i], want.Data[i])
		}
	}
}

// =============================================================================
// Dispatcher Tests
// =============================================================================

func TestDispatcher_MatchesSequentialRun(t *testing.T) {
	in := testInputs(53, 37, synth.Sphere(0.35, 20, 6))

	want := kernel.NewField(53, 37)
	kernel.Run(in, nil, &want, nil)

	d := NewDispatcher(4, nil)
	defer d.Close()

	got := kernel.NewField(53, 37)
	if err := d.Run(context.Background(), in, &got, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	sameBits(t, got, want)
}

func TestDispatcher_GoroutineLanes(t *testing.T) {
	in := testInputs(32, 32, synth.Waves(12, 1.5))

	want := kernel.NewField(32, 32)
	kernel.Run(in, nil, &want, nil)

	d := NewDispatcher(2, func() kernel.Executor { return kernel.NewGoroutineExecutor() })
	defer d.Close()

	got := kernel.NewField(32, 32)
	if err := d.Run(context.Background(), in, &got, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	sameBits(t, got, want)
}

func TestDispatcher_WritesEveryPixel(t *testing.T) {
	in := testInputs(21, 19, synth.Plane(10))

	d := NewDispatcher(3, nil)
	defer d.Close()

	out := kernel.NewField(21, 19)
	for i := range out.Data {
		out.Data[i] = -1
	}
	if err := d.Run(context.Background(), in, &out, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for i, v := range out.Data {
		if v < 0 || v > 1 {
			t.Fatalf("pixel (%d, %d) = %v, want a value in [0, 1]", i%21, i/21, v)
		}
	}
}

func TestDispatcher_Cancelled(t *testing.T) {
	in := testInputs(64, 64, synth.Plane(10))

	d := NewDispatcher(2, nil)
	defer d.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := kernel.NewField(64, 64)
	err := d.Run(ctx, in, &out, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestDispatcher_ConcurrentRuns(t *testing.T) {
	in := testInputs(40, 24, synth.Sphere(0.3, 15, 4))

	want := kernel.NewField(40, 24)
	kernel.Run(in, nil, &want, nil)

	d := NewDispatcher(4, nil)
	defer d.Close()

	var wg sync.WaitGroup
	outs := make([]kernel.Field, 4)
	for i := range outs {
		outs[i] = kernel.NewField(40, 24)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = d.Run(context.Background(), in, &outs[i], nil)
		}()
	}
	wg.Wait()

	for _, out := range outs {
		sameBits(t, out, want)
	}
}

// =============================================================================
// ScratchPool Tests
// =============================================================================

func TestScratchPool_GetPut(t *testing.T) {
	p := NewScratchPool(nil)

	w := p.Get()
	if w == nil {
		t.Fatal("Get() returned nil")
	}
	p.Put(w)
	p.Put(nil) // ignored

	if w2 := p.Get(); w2 == nil {
		t.Error("Get() after Put returned nil")
	}
}

func TestScratchPool_ReuseIsClean(t *testing.T) {
	p := NewScratchPool(nil)
	w := p.Get()

	noisy := testInputs(16, 16, synth.Noise(7, 1, 50))
	scratch := kernel.NewField(16, 16)
	w.Dispatch(noisy, 0, 0, &scratch, nil)

	flat := testInputs(16, 16, synth.Plane(10))
	got := kernel.NewField(16, 16)
	w.Dispatch(flat, 0, 0, &got, nil)
	p.Put(w)

	want := kernel.NewField(16, 16)
	kernel.NewWorkgroup(nil).Dispatch(flat, 0, 0, &want, nil)
	sameBits(t, got, want)
}

// =============================================================================
// Scaling Benchmarks
// =============================================================================
//
// Run with: go test -bench=BenchmarkDispatcher -benchmem ./internal/parallel/...

// setMaxProcs sets GOMAXPROCS and returns a cleanup function to restore it.
func setMaxProcs(n int) func() {
	old := runtime.GOMAXPROCS(n)
	return func() {
		runtime.GOMAXPROCS(old)
	}
}

func benchmarkDispatcher(b *testing.B, procs int) {
	cleanup := setMaxProcs(procs)
	defer cleanup()

	in := testInputs(640, 360, synth.Sphere(0.35, 20, 6))
	out := kernel.NewField(640, 360)

	d := NewDispatcher(procs, nil)
	defer d.Close()

	b.ReportAllocs()
	for b.Loop() {
		_ = d.Run(context.Background(), in, &out, nil)
	}
}

func BenchmarkDispatcher_1Core(b *testing.B)  { benchmarkDispatcher(b, 1) }
func BenchmarkDispatcher_2Cores(b *testing.B) { benchmarkDispatcher(b, 2) }
func BenchmarkDispatcher_4Cores(b *testing.B) { benchmarkDispatcher(b, 4) }
