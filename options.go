package ssao

import (
	"fmt"
	"runtime"
)

// LaneExecution selects how the 256 lanes of a workgroup are scheduled on
// the CPU path.
type LaneExecution uint8

const (
	// LaneSerial runs each kernel step for all lanes before the next step.
	// Barriers hold by construction. This is the default.
	LaneSerial LaneExecution = iota

	// LaneGoroutines runs every lane on its own goroutine, synchronized by
	// explicit group and sub-group barriers. Output is bit-identical to
	// LaneSerial; it is slower and exists to exercise the barrier model.
	LaneGoroutines
)

// String returns the mode name accepted by ParseLaneExecution.
func (m LaneExecution) String() string {
	switch m {
	case LaneSerial:
		return "serial"
	case LaneGoroutines:
		return "goroutines"
	default:
		return fmt.Sprintf("LaneExecution(%d)", uint8(m))
	}
}

// ParseLaneExecution parses "serial" or "goroutines".
func ParseLaneExecution(s string) (LaneExecution, error) {
	switch s {
	case "serial":
		return LaneSerial, nil
	case "goroutines":
		return LaneGoroutines, nil
	default:
		return 0, fmt.Errorf("ssao: unknown lane execution %q", s)
	}
}

// Option configures a Renderer during creation.
//
// Example:
//
//	// Defaults: GOMAXPROCS tile workers, serial lanes, GPU when registered
//	r := ssao.NewRenderer()
//
//	// Four workers, CPU only, custom projection
//	r := ssao.NewRenderer(
//	    ssao.WithWorkers(4),
//	    ssao.WithAccelerator(false),
//	    ssao.WithReconstructor(ssao.NewPerspective(fov, aspect)),
//	)
type Option func(*options)

// options holds optional configuration for Renderer creation.
type options struct {
	workers       int
	reconstructor Reconstructor
	lanes         LaneExecution
	accelerate    bool
}

// defaultOptions returns the default renderer options.
func defaultOptions() options {
	return options{
		workers:       runtime.GOMAXPROCS(0),
		reconstructor: nil, // perspective matching the output aspect, chosen per call
		lanes:         LaneSerial,
		accelerate:    true,
	}
}

// WithWorkers sets the number of tile workers. n <= 0 selects GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n <= 0 {
			n = runtime.GOMAXPROCS(0)
		}
		o.workers = n
	}
}

// WithReconstructor sets the UV+depth to view-space conversion.
//
// The GPU path only implements Perspective; any other reconstructor keeps
// the computation on the CPU.
func WithReconstructor(r Reconstructor) Option {
	return func(o *options) {
		o.reconstructor = r
	}
}

// WithLaneExecution selects the CPU lane scheduling mode.
func WithLaneExecution(m LaneExecution) Option {
	return func(o *options) {
		o.lanes = m
	}
}

// WithAccelerator enables or disables the registered GPU accelerator.
func WithAccelerator(enabled bool) Option {
	return func(o *options) {
		o.accelerate = enabled
	}
}
