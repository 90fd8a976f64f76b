package depthio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chewxy/math32"
	"github.com/klauspost/compress/zlib"

	"github.com/gogpu/ssao"
)

// CaptureExt is the file extension of depth captures.
const CaptureExt = ".ssdz"

// Capture header layout.
const (
	captureMagic   = "SSDZ"
	captureVersion = 1
	headerSize     = 16 // magic(4) + version(2) + flags(2) + width(4) + height(4)
	maxCaptureSide = 1 << 15
)

// ErrCorruptCapture is returned when a capture cannot be decoded.
var ErrCorruptCapture = errors.New("depthio: corrupt capture")

// WriteCapture writes d to w as a .ssdz capture.
//
// The float32 samples are split into four byte planes before compression so
// the slowly varying exponent bytes sit next to each other.
func WriteCapture(w io.Writer, d *ssao.DepthBuffer) error {
	if d == nil || d.Width <= 0 || d.Height <= 0 || len(d.Data) != d.Width*d.Height {
		return fmt.Errorf("%w: bad depth buffer", ssao.ErrSizeMismatch)
	}

	var header [headerSize]byte
	copy(header[:4], captureMagic)
	binary.LittleEndian.PutUint16(header[4:], captureVersion)
	binary.LittleEndian.PutUint32(header[8:], uint32(d.Width))   //nolint:gosec // validated positive
	binary.LittleEndian.PutUint32(header[12:], uint32(d.Height)) //nolint:gosec // validated positive
	if _, err := w.Write(header[:]); err != nil {
		return err
	}

	zw, err := zlib.NewWriterLevel(w, zlib.BestCompression)
	if err != nil {
		return err
	}
	if _, err := zw.Write(splitPlanes(d.Data)); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// ReadCapture decodes a .ssdz capture.
func ReadCapture(r io.Reader) (*ssao.DepthBuffer, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrCorruptCapture, err)
	}
	if string(header[:4]) != captureMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorruptCapture, header[:4])
	}
	if v := binary.LittleEndian.Uint16(header[4:]); v != captureVersion {
		return nil, fmt.Errorf("%w: version %d", ErrUnsupportedFormat, v)
	}
	w := binary.LittleEndian.Uint32(header[8:])
	h := binary.LittleEndian.Uint32(header[12:])
	if w == 0 || h == 0 || w > maxCaptureSide || h > maxCaptureSide {
		return nil, fmt.Errorf("%w: size %dx%d", ErrCorruptCapture, w, h)
	}

	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCapture, err)
	}
	defer zr.Close()

	n := int(w) * int(h)
	planes := make([]byte, n*4)
	if _, err := io.ReadFull(zr, planes); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrCorruptCapture, err)
	}
	return ssao.DepthBufferFrom(int(w), int(h), joinPlanes(planes, n))
}

// SaveCapture writes d to a .ssdz file at path.
func SaveCapture(path string, d *ssao.DepthBuffer) error {
	var buf bytes.Buffer
	if err := WriteCapture(&buf, d); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil { //nolint:gosec // capture files are not secret
		return err
	}
	ssao.Logger().Debug("depthio: saved capture", "path", path, "bytes", buf.Len())
	return nil
}

// splitPlanes stores byte i of every little-endian sample in plane i.
func splitPlanes(data []float32) []byte {
	n := len(data)
	out := make([]byte, n*4)
	for i, v := range data {
		bits := math32.Float32bits(v)
		out[i] = byte(bits)
		out[n+i] = byte(bits >> 8)
		out[2*n+i] = byte(bits >> 16)
		out[3*n+i] = byte(bits >> 24)
	}
	return out
}

func joinPlanes(planes []byte, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		bits := uint32(planes[i]) |
			uint32(planes[n+i])<<8 |
			uint32(planes[2*n+i])<<16 |
			uint32(planes[3*n+i])<<24
		out[i] = math32.Float32frombits(bits)
	}
	return out
}
