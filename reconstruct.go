package ssao

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/ssao/internal/kernel"
)

// Reconstructor converts a screen UV and linear depth into a view-space
// position. It is called from many goroutines at once and must not keep
// mutable state.
type Reconstructor interface {
	ViewPosition(uv Vec2, depth float32) Vec3
}

// ReconstructFunc adapts a function to the Reconstructor interface.
type ReconstructFunc func(uv Vec2, depth float32) Vec3

// ViewPosition calls f(uv, depth).
func (f ReconstructFunc) ViewPosition(uv Vec2, depth float32) Vec3 {
	return f(uv, depth)
}

// Perspective reconstructs positions for a symmetric perspective projection.
//
// View space has x to the right, y up and z into the screen, so a surface
// facing the camera gets the normal (0, 0, -1).
type Perspective struct {
	TanHalfFovX float32
	TanHalfFovY float32
}

// NewPerspective builds a projection from a vertical field of view in
// radians and an aspect ratio (width / height).
func NewPerspective(fovY, aspect float32) Perspective {
	ty := math32.Tan(fovY / 2)
	return Perspective{TanHalfFovX: ty * aspect, TanHalfFovY: ty}
}

// ViewPosition implements Reconstructor.
func (p Perspective) ViewPosition(uv Vec2, depth float32) Vec3 {
	return Vec3{
		X: (2*uv.X - 1) * p.TanHalfFovX * depth,
		Y: (1 - 2*uv.Y) * p.TanHalfFovY * depth,
		Z: depth,
	}
}

// DefaultFovY is the vertical field of view used when no reconstructor is
// configured: 60 degrees.
const DefaultFovY = math32.Pi / 3

var _ kernel.Reconstructor = Perspective{}
var _ kernel.Reconstructor = ReconstructFunc(nil)
