package depthio

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/draw"

	"github.com/gogpu/ssao"
)

// AOImage returns ao as a 16-bit grayscale image, upscaled by scale with a
// Catmull-Rom filter when scale > 1.
func AOImage(ao *ssao.AOBuffer, scale int) *image.Gray16 {
	src := ao.Gray()
	if scale <= 1 {
		return src
	}
	b := src.Bounds()
	dst := image.NewGray16(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// EncodeAO writes ao as a 16-bit grayscale PNG.
func EncodeAO(w io.Writer, ao *ssao.AOBuffer, scale int) error {
	if err := png.Encode(w, AOImage(ao, scale)); err != nil {
		return fmt.Errorf("depthio: encode png: %w", err)
	}
	return nil
}

// SaveAO writes ao to a PNG file at path.
func SaveAO(path string, ao *ssao.AOBuffer, scale int) error {
	f, err := os.Create(path) //nolint:gosec // path comes from the caller
	if err != nil {
		return err
	}
	if err := EncodeAO(f, ao, scale); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	ssao.Logger().Debug("depthio: saved ao", "path", path, "scale", scale)
	return nil
}
