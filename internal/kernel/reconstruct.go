// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package kernel

import "github.com/chewxy/math32"

// pixelUV returns the UV of the centre of pixel (x, y).
func (c *Constants) pixelUV(x, y int) Vec2 {
	return Vec2{
		X: (float32(x) + 0.5) * c.PixelSize.X,
		Y: (float32(y) + 0.5) * c.PixelSize.Y,
	}
}

// gridPosition reconstructs the view-space position of depth-grid cell (gx, gy).
func (w *Workgroup) gridPosition(grid DepthGrid, gx, gy int) Vec3 {
	px := w.originX - TilePadding + gx
	py := w.originY - TilePadding + gy
	return w.in.Reconstructor.ViewPosition(w.in.Constants.pixelUV(px, py), grid.At(gx, gy))
}

// gridNormal estimates the surface normal at (gx, gy) from its four axis
// neighbours. Per axis, the one-sided difference with the smaller depth step
// is kept, so a difference that crosses a silhouette is rejected.
func (w *Workgroup) gridNormal(grid DepthGrid, gx, gy int, center Vec3) Vec3 {
	left := w.gridPosition(grid, gx-1, gy)
	right := w.gridPosition(grid, gx+1, gy)
	up := w.gridPosition(grid, gx, gy-1)
	down := w.gridPosition(grid, gx, gy+1)

	h := minZDiff(center.Sub(left), right.Sub(center))
	v := minZDiff(center.Sub(up), down.Sub(center))
	return h.Cross(v).Normalize()
}

// minZDiff returns whichever difference has the smaller |z|.
// Ties keep the backward difference.
func minZDiff(backward, forward Vec3) Vec3 {
	if math32.Abs(forward.Z) < math32.Abs(backward.Z) {
		return forward
	}
	return backward
}
