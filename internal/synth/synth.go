// Package synth generates synthetic linear-depth fields for tests and demos.
//
// Every generator returns a row-major slice of width*height eye depths.
package synth

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/chewxy/math32"
)

// Generator builds a depth field of the given size.
type Generator func(width, height int) []float32

// Plane returns a constant depth field: a plane facing the camera.
func Plane(depth float32) Generator {
	return func(width, height int) []float32 {
		d := make([]float32, width*height)
		for i := range d {
			d[i] = depth
		}
		return d
	}
}

// Background returns an all-zero field, the degenerate "nothing rendered" case.
func Background() Generator {
	return Plane(0)
}

// Step returns a field that is near left of column edge and far from it on.
func Step(edge int, near, far float32) Generator {
	return func(width, height int) []float32 {
		d := make([]float32, width*height)
		for y := range height {
			for x := range width {
				v := far
				if x < edge {
					v = near
				}
				d[y*width+x] = v
			}
		}
		return d
	}
}

// Valley returns a vertical V-shaped trench whose crease at column center
// lies at depth base; depth decreases by slope per pixel away from it.
func Valley(center int, base, slope float32) Generator {
	return func(width, height int) []float32 {
		d := make([]float32, width*height)
		for y := range height {
			for x := range width {
				dx := math32.Abs(float32(x - center))
				d[y*width+x] = max(base-slope*dx, 0.1)
			}
		}
		return d
	}
}

// Sphere returns a sphere in front of a back plane at depth back. The sphere
// is centred in the image, its silhouette radius is a fraction of the
// smaller image side, and its front bulges by bulge depth units.
func Sphere(radius, back, bulge float32) Generator {
	return func(width, height int) []float32 {
		d := make([]float32, width*height)
		cx := float32(width) / 2
		cy := float32(height) / 2
		r := radius * float32(min(width, height))
		for y := range height {
			for x := range width {
				dx := (float32(x) + 0.5 - cx) / r
				dy := (float32(y) + 0.5 - cy) / r
				rr := dx*dx + dy*dy
				v := back
				if rr < 1 {
					v -= bulge * math32.Sqrt(1-rr)
				}
				d[y*width+x] = v
			}
		}
		return d
	}
}

// Waves returns a smooth undulating surface around depth mean.
func Waves(mean, amplitude float32) Generator {
	return func(width, height int) []float32 {
		d := make([]float32, width*height)
		for y := range height {
			for x := range width {
				v := math32.Sin(float32(x)/9) * math32.Cos(float32(y)/7)
				d[y*width+x] = mean + amplitude*v
			}
		}
		return d
	}
}

// Noise returns uniformly random depths in [lo, hi) from a fixed seed.
func Noise(seed int64, lo, hi float32) Generator {
	return func(width, height int) []float32 {
		rng := rand.New(rand.NewSource(seed)) //nolint:gosec // test data, not security sensitive
		d := make([]float32, width*height)
		for i := range d {
			d[i] = lo + (hi-lo)*rng.Float32()
		}
		return d
	}
}

var scenes = map[string]Generator{
	"plane":      Plane(10),
	"background": Background(),
	"step":       nil, // size dependent, built in Scene
	"valley":     nil,
	"sphere":     Sphere(0.35, 20, 6),
	"waves":      Waves(12, 1.5),
	"noise":      Noise(1, 8, 12),
}

// Names returns the scene names accepted by Scene.
func Names() []string {
	names := make([]string, 0, len(scenes))
	for name := range scenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Scene builds a named demo scene at the given size.
func Scene(name string, width, height int) ([]float32, error) {
	g, ok := scenes[name]
	if !ok {
		return nil, fmt.Errorf("synth: unknown scene %q (have %v)", name, Names())
	}
	switch name {
	case "step":
		g = Step(width/2, 5, 40)
	case "valley":
		g = Valley(width/2, 20, 16/float32(max(width, 1)))
	}
	return g(width, height), nil
}
