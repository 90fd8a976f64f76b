package depthio

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"golang.org/x/image/tiff"

	"github.com/gogpu/ssao"
)

var (
	// ErrUnsupportedFormat is returned for file extensions depthio cannot read.
	ErrUnsupportedFormat = errors.New("depthio: unsupported format")

	// ErrInvalidRange is returned when the depth range is empty or not positive.
	ErrInvalidRange = errors.New("depthio: invalid depth range")
)

// Range maps normalized image values onto view depth.
type Range struct {
	Near, Far float32
}

// DefaultRange is used by the CLI when no range is given.
var DefaultRange = Range{Near: 0.1, Far: 100}

// Validate reports whether the range can map image values to depth.
func (r Range) Validate() error {
	if !(r.Near > 0) || !(r.Far > r.Near) || math32.IsInf(r.Far, 0) {
		return fmt.Errorf("%w: [%v, %v]", ErrInvalidRange, r.Near, r.Far)
	}
	return nil
}

// depth returns the view depth for a 16-bit sample. A zero sample marks
// background and maps to depth 0.
func (r Range) depth(v uint16) float32 {
	if v == 0 {
		return 0
	}
	return r.Near + (r.Far-r.Near)*float32(v)/0xffff
}

// DepthFromImage converts a grayscale image to a depth buffer.
// Colour images are reduced to luminance through color.Gray16Model.
func DepthFromImage(img image.Image, r Range) (*ssao.DepthBuffer, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	b := img.Bounds()
	d := ssao.NewDepthBuffer(b.Dx(), b.Dy())
	if gray, ok := img.(*image.Gray16); ok {
		for y := range b.Dy() {
			for x := range b.Dx() {
				d.Set(x, y, r.depth(gray.Gray16At(b.Min.X+x, b.Min.Y+y).Y))
			}
		}
		return d, nil
	}
	for y := range b.Dy() {
		for x := range b.Dx() {
			g := color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16)
			d.Set(x, y, r.depth(g.Y))
		}
	}
	return d, nil
}

// DecodePNG reads a PNG depth image.
func DecodePNG(rd io.Reader, r Range) (*ssao.DepthBuffer, error) {
	img, err := png.Decode(rd)
	if err != nil {
		return nil, fmt.Errorf("depthio: decode png: %w", err)
	}
	return DepthFromImage(img, r)
}

// DecodeTIFF reads a TIFF depth image.
func DecodeTIFF(rd io.Reader, r Range) (*ssao.DepthBuffer, error) {
	img, err := tiff.Decode(rd)
	if err != nil {
		return nil, fmt.Errorf("depthio: decode tiff: %w", err)
	}
	return DepthFromImage(img, r)
}

// Load reads a depth buffer from path, choosing the decoder by extension.
// r is ignored for .ssdz captures, which store view depth directly.
func Load(path string, r Range) (*ssao.DepthBuffer, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the caller
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	var d *ssao.DepthBuffer
	switch ext {
	case ".png":
		d, err = DecodePNG(f, r)
	case ".tif", ".tiff":
		d, err = DecodeTIFF(f, r)
	case CaptureExt:
		d, err = ReadCapture(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}
	ssao.Logger().Debug("depthio: loaded depth", "path", path, "width", d.Width, "height", d.Height)
	return d, nil
}
