package parallel

import (
	"context"

	"github.com/gogpu/ssao/internal/kernel"
)

// Dispatcher runs one kernel workgroup per tile on a WorkerPool.
//
// Thread safety: Run is safe for concurrent use. Each call borrows its own
// workgroups from the ScratchPool; calls that share an output field must
// not overlap.
type Dispatcher struct {
	pool    *WorkerPool
	scratch *ScratchPool
}

// NewDispatcher creates a dispatcher with the given worker count.
// If workers <= 0, GOMAXPROCS is used. newExec builds the lane executor of
// each workgroup; nil selects the serial executor.
func NewDispatcher(workers int, newExec func() kernel.Executor) *Dispatcher {
	return &Dispatcher{
		pool:    NewWorkerPool(workers),
		scratch: NewScratchPool(newExec),
	}
}

// Workers returns the number of tile workers.
func (d *Dispatcher) Workers() int {
	return d.pool.Workers()
}

// Run dispatches every tile covering out and waits for them.
//
// Each tile writes only its own output pixels, so tiles run in any order.
// When ctx is cancelled, tiles not yet started are skipped and ctx.Err() is
// returned; out is then partially written.
func (d *Dispatcher) Run(ctx context.Context, in *kernel.Inputs, out, local *kernel.Field) error {
	grid := NewTileGrid(out.Width, out.Height)
	return d.RunTiles(ctx, in, grid.Tiles(), out, local)
}

// RunTiles dispatches the given tiles and waits for them.
func (d *Dispatcher) RunTiles(ctx context.Context, in *kernel.Inputs, tiles []Tile, out, local *kernel.Field) error {
	if len(tiles) == 0 {
		return ctx.Err()
	}

	work := make([]func(), len(tiles))
	for i, tile := range tiles {
		work[i] = func() {
			w := d.scratch.Get()
			w.Dispatch(in, tile.X, tile.Y, out, local)
			d.scratch.Put(w)
		}
	}
	return d.pool.ExecuteAll(ctx, work)
}

// Close stops the tile workers. Close is safe to call multiple times.
func (d *Dispatcher) Close() {
	d.pool.Close()
}
