// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package kernel

// subgroupBlock is the side of the pixel block covered by one sub-group.
const subgroupBlock = 4

// Subgroup returns the sub-group a lane belongs to.
func Subgroup(lane int) int {
	return lane / SubgroupLanes
}

// SubgroupLane returns the lane's position inside its sub-group.
func SubgroupLane(lane int) int {
	return lane % SubgroupLanes
}

// LanePixel maps a linear lane index to the tile-local pixel it owns.
//
// Sixteen consecutive lanes cover a 4×4 pixel block rather than a 16×1 row,
// so a sub-group shares occluders between spatially adjacent pixels. The
// mapping is a bijection over the 256 pixels of the tile.
func LanePixel(lane int) (x, y int) {
	s := Subgroup(lane)
	k := SubgroupLane(lane)
	blocksPerRow := TileSize / subgroupBlock
	x = (s%blocksPerRow)*subgroupBlock + k%subgroupBlock
	y = (s/blocksPerRow)*subgroupBlock + k/subgroupBlock
	return x, y
}

// LoaderBlock returns the upper-left grid cell of the 2×2 block a lane loads.
func LoaderBlock(lane int) (x, y int) {
	return 2 * (lane % TileSize), 2 * (lane / TileSize)
}

// localOffsets are the Phase I occluder offsets in depth-grid cells:
// an inner ring at radius 4 and an outer ring at radius 8. The rings take
// opposite diagonals, so together they cover all four diagonal directions.
var localOffsets = [LocalSamples][2]int{
	{4, 0}, {0, 4}, {-4, 0}, {0, -4}, {4, 4}, {-4, -4},
	{8, 0}, {0, 8}, {-8, 0}, {0, -8}, {8, -8}, {-8, 8},
}

// LocalOffsets returns a copy of the Phase I offset table.
func LocalOffsets() [LocalSamples][2]int {
	return localOffsets
}

// sharedPeer returns the sub-group lane read on the j-th shared read
// (j in 1..SharedReads). The stride is odd, so no read returns the caller.
func sharedPeer(k, j int) int {
	return (k + j*SharedStride) % SubgroupLanes
}
