// Package parallel schedules SSAO tile dispatches across goroutines.
//
// The output image is divided into 16x16 tiles, one kernel workgroup each.
// Tiles write disjoint output pixels and only read shared inputs, so they can
// be dispatched in any order on any worker:
//
//   - TileGrid enumerates the dispatch grid, including partial edge tiles
//   - WorkerPool runs dispatches with work stealing
//   - ScratchPool recycles workgroup scratch state between dispatches
//   - Dispatcher ties the three together for one output size
//
// Thread safety: TileGrid is NOT safe for concurrent mutation. WorkerPool,
// ScratchPool and Dispatcher.Run are safe for concurrent use.
package parallel

import "github.com/gogpu/ssao/internal/kernel"

// Tile size constants. They mirror the kernel workgroup footprint.
const (
	// TileWidth is the width of a tile in output pixels.
	TileWidth = kernel.TileSize

	// TileHeight is the height of a tile in output pixels.
	TileHeight = kernel.TileSize

	// TilePixels is the number of output pixels in a full tile.
	TilePixels = TileWidth * TileHeight
)

// Tile is one workgroup dispatch in the grid.
//
// Edge tiles may cover fewer pixels than TilePixels when the output size is
// not a multiple of the tile size. The kernel still runs all 256 lanes for
// them; lanes outside the output skip their write.
type Tile struct {
	// X is the tile column index (0-based).
	X int

	// Y is the tile row index (0-based).
	Y int

	// Width is the number of covered output columns (1..TileWidth).
	Width int

	// Height is the number of covered output rows (1..TileHeight).
	Height int
}

// Bounds returns the covered pixel rectangle in output space.
// Returns (x, y, width, height) where x,y is the top-left corner.
func (t Tile) Bounds() (x, y, w, h int) {
	return t.X * TileWidth, t.Y * TileHeight, t.Width, t.Height
}

// Contains reports whether the output pixel (px, py) is covered by this tile.
func (t Tile) Contains(px, py int) bool {
	x0 := t.X * TileWidth
	y0 := t.Y * TileHeight
	return px >= x0 && px < x0+t.Width &&
		py >= y0 && py < y0+t.Height
}

// Partial reports whether the tile is clipped by the output edge.
func (t Tile) Partial() bool {
	return t.Width < TileWidth || t.Height < TileHeight
}

// Pixels returns the number of covered output pixels.
func (t Tile) Pixels() int {
	return t.Width * t.Height
}
