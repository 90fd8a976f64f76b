// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package kernel

// Workgroup geometry. One workgroup covers one output tile.
const (
	// TileSize is the side of the square output tile in pixels.
	TileSize = 16

	// GroupLanes is the number of lanes (threads) in one workgroup.
	GroupLanes = TileSize * TileSize

	// SubgroupLanes is the number of lanes that share occluders in the
	// expanding-ring phase.
	SubgroupLanes = 16

	// Subgroups is the number of sub-groups per workgroup.
	Subgroups = GroupLanes / SubgroupLanes

	// TilePadding is the depth border loaded around the tile on each side.
	TilePadding = 8

	// GridSize is the side of the padded depth grid held in shared memory.
	GridSize = TileSize + 2*TilePadding

	// SharedSlots is the capacity of the workgroup shared buffer.
	SharedSlots = GridSize * GridSize
)

// Position planes of the expanding-ring layout.
const (
	PlaneX = iota
	PlaneY
	PlaneZ
	planeCount
)

// planeSlots is the size of one position plane.
const planeSlots = GroupLanes

// The three position planes must fit in the buffer the depth grid occupies.
var _ [SharedSlots - planeCount*planeSlots]struct{}

// SharedTile is the scratch memory owned by one workgroup for one dispatch.
//
// The same storage is viewed two ways: as a 32×32 depth grid while the tile
// is loaded and Phase I runs, then as three position planes during Phase II.
// The views alias; a group barrier must separate the last depth read from the
// first position write.
type SharedTile struct {
	slots [SharedSlots]float32
}

// Reset clears the buffer for reuse by another dispatch.
func (s *SharedTile) Reset() {
	clear(s.slots[:])
}

// Depth returns the depth-grid view.
func (s *SharedTile) Depth() DepthGrid {
	return DepthGrid{s: &s.slots}
}

// Positions returns the position-plane view.
func (s *SharedTile) Positions() PositionPlanes {
	return PositionPlanes{s: &s.slots}
}

// DepthGrid views the shared buffer as a GridSize×GridSize row-major grid.
type DepthGrid struct {
	s *[SharedSlots]float32
}

// Index returns the slot of grid cell (x, y).
func (DepthGrid) Index(x, y int) int {
	return y*GridSize + x
}

// At returns the depth at grid cell (x, y).
func (g DepthGrid) At(x, y int) float32 {
	return g.s[y*GridSize+x]
}

// Set stores depth d at grid cell (x, y).
func (g DepthGrid) Set(x, y int, d float32) {
	g.s[y*GridSize+x] = d
}

// PositionPlanes views the shared buffer as three planes of 256 floats.
//
// Inside a plane, lanes are spread over four 64-slot quarter sections
// (lane&3 selects the section) so that the 16 lanes of a sub-group touch
// four sections instead of one contiguous run.
type PositionPlanes struct {
	s *[SharedSlots]float32
}

// Slot returns the shared-buffer slot of one component for the given lane.
func (PositionPlanes) Slot(plane, lane int) int {
	return plane*planeSlots + (lane&3)*(planeSlots/4) + lane>>2
}

// Store writes p into the lane's slots.
func (pp PositionPlanes) Store(lane int, p Vec3) {
	pp.s[pp.Slot(PlaneX, lane)] = p.X
	pp.s[pp.Slot(PlaneY, lane)] = p.Y
	pp.s[pp.Slot(PlaneZ, lane)] = p.Z
}

// Load reads the position stored by lane.
func (pp PositionPlanes) Load(lane int) Vec3 {
	return Vec3{
		X: pp.s[pp.Slot(PlaneX, lane)],
		Y: pp.s[pp.Slot(PlaneY, lane)],
		Z: pp.s[pp.Slot(PlaneZ, lane)],
	}
}
