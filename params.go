package ssao

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"

	"github.com/gogpu/ssao/internal/kernel"
)

// ErrInvalidParams is returned when a constant block fails validation.
var ErrInvalidParams = errors.New("ssao: invalid parameters")

// Default constant block values.
const (
	// DefaultStrength applies the full occlusion estimate.
	DefaultStrength = 1.0

	// DefaultSamplingRadius is the outer ring radius as a fraction of the
	// output height.
	DefaultSamplingRadius = 0.02
)

// Params is the per-dispatch constant block.
//
// PixelSize is the reciprocal of the output size and HalfPixelSize half of
// it. Use NewParams to derive them.
type Params struct {
	OutputWidth, OutputHeight uint32
	PixelSize, HalfPixelSize  [2]float32
	Strength                  float32
	SamplingRadius            float32
}

// ParamOption configures a constant block during NewParams.
type ParamOption func(*Params)

// WithStrength sets the occlusion strength in [0, 1].
// 0 disables darkening, 1 applies the full estimate.
func WithStrength(s float32) ParamOption {
	return func(p *Params) {
		p.Strength = s
	}
}

// WithSamplingRadius sets the outer ring radius as a fraction of the output
// height. 0.02 on a 1080-line target reaches about 21 pixels.
func WithSamplingRadius(r float32) ParamOption {
	return func(p *Params) {
		p.SamplingRadius = r
	}
}

// NewParams builds and validates the constant block for an output size.
func NewParams(width, height int, opts ...ParamOption) (Params, error) {
	if width <= 0 || height <= 0 {
		return Params{}, fmt.Errorf("%w: output size %dx%d", ErrInvalidParams, width, height)
	}

	px := [2]float32{1 / float32(width), 1 / float32(height)}
	p := Params{
		OutputWidth:    uint32(width),
		OutputHeight:   uint32(height),
		PixelSize:      px,
		HalfPixelSize:  [2]float32{px[0] / 2, px[1] / 2},
		Strength:       DefaultStrength,
		SamplingRadius: DefaultSamplingRadius,
	}
	for _, opt := range opts {
		opt(&p)
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Validate checks every field of the constant block.
// The returned error wraps ErrInvalidParams.
func (p Params) Validate() error {
	switch {
	case p.OutputWidth == 0 || p.OutputHeight == 0:
		return fmt.Errorf("%w: output size %dx%d", ErrInvalidParams, p.OutputWidth, p.OutputHeight)
	case !positive(p.PixelSize[0]) || !positive(p.PixelSize[1]):
		return fmt.Errorf("%w: pixel size %v", ErrInvalidParams, p.PixelSize)
	case !positive(p.HalfPixelSize[0]) || !positive(p.HalfPixelSize[1]):
		return fmt.Errorf("%w: half pixel size %v", ErrInvalidParams, p.HalfPixelSize)
	case !finite(p.Strength) || p.Strength < 0 || p.Strength > 1:
		return fmt.Errorf("%w: strength %v outside [0, 1]", ErrInvalidParams, p.Strength)
	case !finite(p.SamplingRadius) || p.SamplingRadius < 0:
		return fmt.Errorf("%w: sampling radius %v", ErrInvalidParams, p.SamplingRadius)
	}
	return nil
}

// TileCount returns the number of 16×16 workgroups along each axis.
func (p Params) TileCount() (x, y int) {
	return kernel.TileCount(int(p.OutputWidth), int(p.OutputHeight))
}

// Size returns the output size in pixels.
func (p Params) Size() (width, height int) {
	return int(p.OutputWidth), int(p.OutputHeight)
}

func (p Params) constants() kernel.Constants {
	return kernel.Constants{
		OutputWidth:    p.OutputWidth,
		OutputHeight:   p.OutputHeight,
		PixelSize:      Vec2{X: p.PixelSize[0], Y: p.PixelSize[1]},
		HalfPixelSize:  Vec2{X: p.HalfPixelSize[0], Y: p.HalfPixelSize[1]},
		Strength:       p.Strength,
		SamplingRadius: p.SamplingRadius,
	}
}

func finite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}

func positive(f float32) bool {
	return finite(f) && f > 0
}
