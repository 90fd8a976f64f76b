// Package depthio reads and writes the buffers consumed and produced by
// the ssao kernel.
//
// Supported depth sources:
//
//   - 16-bit grayscale PNG and TIFF, mapped linearly onto [near, far]
//   - .ssdz captures: raw float32 view depth, zlib compressed
//
// AO results are written as 16-bit grayscale PNG, optionally upscaled with
// a Catmull-Rom filter for inspection.
package depthio
