package parallel

// TileGrid enumerates the workgroup dispatches that cover an output image.
//
// Tiles are stored in a flat slice in row-major order:
// index = ty * tilesX + tx. Edge tiles are clipped to the output size.
//
// Thread safety: TileGrid is NOT thread-safe. Resize must not run while
// another goroutine reads the grid.
type TileGrid struct {
	// tiles is a flat slice of all tiles (row-major order).
	tiles []Tile

	tilesX int
	tilesY int

	// width and height are the output size in pixels.
	width  int
	height int
}

// NewTileGrid creates the dispatch grid for an output of the given size.
// A non-positive size yields an empty grid.
func NewTileGrid(width, height int) *TileGrid {
	g := &TileGrid{}
	g.Resize(width, height)
	return g
}

// Resize rebuilds the grid for a new output size.
// If the size is unchanged this is a no-op.
func (g *TileGrid) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		g.tiles = nil
		g.tilesX, g.tilesY = 0, 0
		g.width, g.height = 0, 0
		return
	}
	if g.width == width && g.height == height {
		return
	}

	g.width = width
	g.height = height
	g.tilesX = (width + TileWidth - 1) / TileWidth
	g.tilesY = (height + TileHeight - 1) / TileHeight
	g.tiles = make([]Tile, g.tilesX*g.tilesY)

	for ty := range g.tilesY {
		for tx := range g.tilesX {
			g.tiles[ty*g.tilesX+tx] = Tile{
				X:      tx,
				Y:      ty,
				Width:  min(TileWidth, width-tx*TileWidth),
				Height: min(TileHeight, height-ty*TileHeight),
			}
		}
	}
}

// TileAt returns the tile at tile coordinates (tx, ty).
// The second result is false if the coordinates are out of bounds.
func (g *TileGrid) TileAt(tx, ty int) (Tile, bool) {
	if tx < 0 || tx >= g.tilesX || ty < 0 || ty >= g.tilesY {
		return Tile{}, false
	}
	return g.tiles[ty*g.tilesX+tx], true
}

// TileAtPixel returns the tile that covers output pixel (px, py).
// The second result is false if the pixel is outside the output.
func (g *TileGrid) TileAtPixel(px, py int) (Tile, bool) {
	if px < 0 || px >= g.width || py < 0 || py >= g.height {
		return Tile{}, false
	}
	return g.tiles[(py/TileHeight)*g.tilesX+px/TileWidth], true
}

// TileCount returns the total number of tiles in the grid.
func (g *TileGrid) TileCount() int {
	return len(g.tiles)
}

// TilesX returns the number of tiles horizontally.
func (g *TileGrid) TilesX() int {
	return g.tilesX
}

// TilesY returns the number of tiles vertically.
func (g *TileGrid) TilesY() int {
	return g.tilesY
}

// Width returns the output width in pixels.
func (g *TileGrid) Width() int {
	return g.width
}

// Height returns the output height in pixels.
func (g *TileGrid) Height() int {
	return g.height
}

// Tiles returns all tiles in row-major order.
// The returned slice should not be modified.
func (g *TileGrid) Tiles() []Tile {
	return g.tiles
}

// ForEach calls fn for each tile in row-major order.
func (g *TileGrid) ForEach(fn func(tile Tile)) {
	for _, tile := range g.tiles {
		fn(tile)
	}
}
