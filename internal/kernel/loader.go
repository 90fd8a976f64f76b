// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package kernel

// loadLane fills the lane's 2×2 block of the padded depth grid with a single
// gather and initializes the lane registers.
//
// The gather is aimed at the texel centre plus half a pixel, i.e. at the
// shared corner of the 2×2 footprint, so rounding cannot pick a neighbouring
// footprint.
func (w *Workgroup) loadLane(lane int) {
	c := &w.in.Constants
	bx, by := LoaderBlock(lane)
	sx := w.originX - TilePadding + bx
	sy := w.originY - TilePadding + by

	uv := Vec2{
		X: (float32(sx)+0.5)*c.PixelSize.X + c.HalfPixelSize.X,
		Y: (float32(sy)+0.5)*c.PixelSize.Y + c.HalfPixelSize.Y,
	}
	g := w.in.Depth.Gather(uv)

	grid := w.shared.Depth()
	grid.Set(bx, by+1, g[0])
	grid.Set(bx+1, by+1, g[1])
	grid.Set(bx+1, by, g[2])
	grid.Set(bx, by, g[3])

	ls := &w.lanes[lane]
	lx, ly := LanePixel(lane)
	ls.px = w.originX + lx
	ls.py = w.originY + ly
	ls.gx = TilePadding + lx
	ls.gy = TilePadding + ly
	ls.angle = float32(Subgroup(lane)) * OuterStep / Subgroups
}
