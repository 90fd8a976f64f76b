package ssao

import (
	"image"
	"image/color"

	"github.com/gogpu/ssao/internal/kernel"
)

// AOBuffer holds one ambient visibility factor per output pixel in [0, 1].
// 1 means unoccluded.
type AOBuffer struct {
	Width, Height int
	Data          []float32
}

// NewAOBuffer allocates a zeroed output buffer.
func NewAOBuffer(width, height int) *AOBuffer {
	return &AOBuffer{
		Width:  width,
		Height: height,
		Data:   make([]float32, max(width, 0)*max(height, 0)),
	}
}

// At returns the value at (x, y), or 0 outside the buffer.
func (b *AOBuffer) At(x, y int) float32 {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return 0
	}
	return b.Data[y*b.Width+x]
}

// Gray converts the buffer to a 16-bit grayscale image.
// Values are clamped to [0, 1] first.
func (b *AOBuffer) Gray() *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, b.Width, b.Height))
	for y := range b.Height {
		row := b.Data[y*b.Width : (y+1)*b.Width]
		for x, v := range row {
			v = min(max(v, 0), 1)
			img.SetGray16(x, y, color.Gray16{Y: uint16(v*0xffff + 0.5)})
		}
	}
	return img
}

// Stats returns the minimum, maximum and mean value.
// An empty buffer yields zeros.
func (b *AOBuffer) Stats() (lo, hi, mean float32) {
	if len(b.Data) == 0 {
		return 0, 0, 0
	}
	lo, hi = b.Data[0], b.Data[0]
	var sum float64
	for _, v := range b.Data {
		lo = min(lo, v)
		hi = max(hi, v)
		sum += float64(v)
	}
	return lo, hi, float32(sum / float64(len(b.Data)))
}

func (b *AOBuffer) field() kernel.Field {
	return kernel.Field{Width: b.Width, Height: b.Height, Data: b.Data}
}
