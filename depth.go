package ssao

import (
	"errors"
	"fmt"

	"github.com/gogpu/ssao/internal/kernel"
)

// ErrSizeMismatch is returned when a buffer does not match the output size.
var ErrSizeMismatch = errors.New("ssao: buffer size mismatch")

// DepthBuffer is a row-major field of linear eye depth, one value per pixel.
//
// Depth 0 marks background: no geometry was rendered there.
type DepthBuffer struct {
	Width, Height int
	Data          []float32
}

// NewDepthBuffer allocates a zeroed depth buffer.
func NewDepthBuffer(width, height int) *DepthBuffer {
	return &DepthBuffer{
		Width:  width,
		Height: height,
		Data:   make([]float32, max(width, 0)*max(height, 0)),
	}
}

// DepthBufferFrom wraps existing row-major depth data without copying.
func DepthBufferFrom(width, height int, data []float32) (*DepthBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: depth size %dx%d", ErrSizeMismatch, width, height)
	}
	if len(data) != width*height {
		return nil, fmt.Errorf("%w: %d depth values for %dx%d", ErrSizeMismatch, len(data), width, height)
	}
	return &DepthBuffer{Width: width, Height: height, Data: data}, nil
}

// At returns the depth at (x, y). Coordinates outside the buffer read the
// nearest edge pixel.
func (d *DepthBuffer) At(x, y int) float32 {
	return d.field().Load(x, y)
}

// Set writes the depth at (x, y). Coordinates outside the buffer are ignored.
func (d *DepthBuffer) Set(x, y int, v float32) {
	f := d.field()
	f.Store(x, y, v)
}

// Gather returns the 2×2 footprint around UV (u, v) in hardware gather
// order: x=(0,1), y=(1,1), z=(1,0), w=(0,0) relative to the upper-left
// texel of the footprint. Addressing clamps to the edge.
func (d *DepthBuffer) Gather(u, v float32) [4]float32 {
	return d.field().Gather(Vec2{X: u, Y: v})
}

func (d *DepthBuffer) field() kernel.Field {
	return kernel.Field{Width: d.Width, Height: d.Height, Data: d.Data}
}
