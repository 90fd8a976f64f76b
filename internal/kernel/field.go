// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package kernel

import "github.com/chewxy/math32"

// Field is a row-major single-channel float32 image.
// It backs both the depth input and the occlusion output of the kernel.
type Field struct {
	Width, Height int
	Data          []float32
}

// NewField allocates a zeroed field.
func NewField(width, height int) Field {
	return Field{Width: width, Height: height, Data: make([]float32, width*height)}
}

// Load returns the texel at (x, y) with clamp-to-edge addressing.
func (f Field) Load(x, y int) float32 {
	x = clampInt(x, 0, f.Width-1)
	y = clampInt(y, 0, f.Height-1)
	return f.Data[y*f.Width+x]
}

// Store writes v at (x, y). Out-of-range coordinates are ignored.
func (f Field) Store(x, y int, v float32) {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return
	}
	f.Data[y*f.Width+x] = v
}

// Gather fetches the 2×2 texel footprint that bilinear filtering would use at
// normalized coordinate uv, in hardware gather order:
//
//	[0] = (x0, y0+1)  [1] = (x0+1, y0+1)  [2] = (x0+1, y0)  [3] = (x0, y0)
//
// where (x0, y0) is the upper-left texel. Addressing is clamp-to-edge.
func (f Field) Gather(uv Vec2) [4]float32 {
	x0 := int(math32.Floor(uv.X*float32(f.Width) - 0.5))
	y0 := int(math32.Floor(uv.Y*float32(f.Height) - 0.5))
	return [4]float32{
		f.Load(x0, y0+1),
		f.Load(x0+1, y0+1),
		f.Load(x0+1, y0),
		f.Load(x0, y0),
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
