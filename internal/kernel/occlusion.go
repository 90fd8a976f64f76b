// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package kernel

import "github.com/chewxy/math32"

// Sampling budget per pixel: LocalSamples + RingLoops*(1+SharedReads) = 52.
const (
	// LocalSamples is the number of Phase I offsets.
	LocalSamples = 12

	// RingLoops is the number of Phase II outer iterations.
	RingLoops = 10

	// SharedReads is the number of sub-group peers read per Phase II iteration.
	SharedReads = 3

	// SamplesPerPixel is the total number of occluder evaluations per lane.
	SamplesPerPixel = LocalSamples + RingLoops*(1+SharedReads)
)

const (
	// SharedStride rotates the peer index; j*5 mod 16 is never 0 for j <= 3.
	SharedStride = 5

	// spiralTurns is the number of revolutions the 16 lanes of a sub-group
	// wind through; 7 is coprime with 16, so every lane gets its own direction.
	spiralTurns = 7

	// AngleStep spreads the lanes of a sub-group along the spiral.
	AngleStep = 2 * math32.Pi * spiralTurns

	// OuterStep rotates a sub-group between iterations. Ten iterations sweep
	// the gap between two neighbouring lane directions.
	OuterStep = 2 * math32.Pi / (SubgroupLanes * RingLoops)

	// minDistanceSq keeps the inverse-square weight finite at zero distance.
	minDistanceSq = 0.01

	// minWeight floors the normalization denominator.
	minWeight = 1e-5

	// gamma pre-compensates the display curve.
	gamma = 2.2
)

// weigh returns the occlusion and weight contributed by occluder o to a
// surface point p with normal n. Occluders behind the surface add weight but
// no occlusion, and so does an occluder coincident with p.
func weigh(p, n, o Vec3) (occlusion, weight float32) {
	d := o.Sub(p)
	distSq := d.Dot(d)
	var cosFalloff float32
	if distSq > 0 {
		cosFalloff = d.Mul(1 / math32.Sqrt(distSq)).Dot(n)
	}

	weight = 1 / (distSq + minDistanceSq)
	weight *= weight
	return saturate(cosFalloff) * weight, weight
}

// add accumulates one occluder. Samples with a non-finite weight (NaN depth)
// are dropped so they cannot poison the pair.
func (a *accum) add(p, n, o Vec3) {
	occ, w := weigh(p, n, o)
	if !finite(w) {
		return
	}
	a.occlusion += occ
	a.weight += w
}

// composite turns an accumulator into the final output value.
func composite(a accum, strength float32) float32 {
	ao := a.occlusion / max(a.weight, minWeight)
	if !finite(ao) {
		ao = 0
	}
	base := max(1-ao*strength, 0)
	return math32.Pow(base, gamma)
}

// localLane reconstructs the lane's position and normal from shared depth and
// runs Phase I over the fixed offset table.
func (w *Workgroup) localLane(lane int) {
	ls := &w.lanes[lane]
	grid := w.shared.Depth()

	ls.pos = w.gridPosition(grid, ls.gx, ls.gy)
	ls.normal = w.gridNormal(grid, ls.gx, ls.gy, ls.pos)

	for _, off := range localOffsets {
		o := w.gridPosition(grid, ls.gx+off[0], ls.gy+off[1])
		ls.local.add(ls.pos, ls.normal, o)
	}
}

// ringSampleLane takes one direct depth sample on the lane's spiral, scores
// it and publishes the occluder to the sub-group.
func (w *Workgroup) ringSampleLane(lane int) {
	c := &w.in.Constants
	ls := &w.lanes[lane]

	f := float32(SubgroupLane(lane)+1) / SubgroupLanes
	radius := math32.Sqrt(f) * float32(c.OutputHeight) * c.SamplingRadius
	sin, cos := math32.Sincos(f*AngleStep + ls.angle)

	sx := int(math32.Floor(float32(ls.px) + 0.5 + radius*cos))
	sy := int(math32.Floor(float32(ls.py) + 0.5 + radius*sin))
	depth := w.in.Depth.Load(sx, sy)
	ls.occluder = w.in.Reconstructor.ViewPosition(c.pixelUV(sx, sy), depth)

	ls.ring.add(ls.pos, ls.normal, ls.occluder)
	w.shared.Positions().Store(lane, ls.occluder)
}

// ringShareLane scores occluders published by three other lanes of the
// sub-group, then advances the lane's angular offset.
func (w *Workgroup) ringShareLane(lane int) {
	ls := &w.lanes[lane]
	planes := w.shared.Positions()
	base := Subgroup(lane) * SubgroupLanes
	k := SubgroupLane(lane)

	for j := 1; j <= SharedReads; j++ {
		o := planes.Load(base + sharedPeer(k, j))
		ls.ring.add(ls.pos, ls.normal, o)
	}
	ls.angle += OuterStep
}

// compositeLane writes the lane's output pixel if it lies inside the image.
// Only the Phase II accumulator reaches the output; the Phase I estimate
// goes to the optional diagnostic field.
func (w *Workgroup) compositeLane(lane int) {
	c := &w.in.Constants
	ls := &w.lanes[lane]
	if ls.px >= int(c.OutputWidth) || ls.py >= int(c.OutputHeight) {
		return
	}
	w.out.Store(ls.px, ls.py, composite(ls.ring, c.Strength))
	if w.local != nil {
		w.local.Store(ls.px, ls.py, composite(ls.local, c.Strength))
	}
}
