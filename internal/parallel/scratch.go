package parallel

import (
	"sync"

	"github.com/gogpu/ssao/internal/kernel"
)

// ScratchPool recycles kernel workgroups between tile dispatches.
//
// A workgroup carries the 1024-slot shared buffer and the registers of 256
// lanes. Dispatch resets both, so nothing a tile leaves behind is visible to
// the next tile that borrows the same workgroup.
//
// Thread safety: ScratchPool is safe for concurrent use.
type ScratchPool struct {
	pool sync.Pool
}

// NewScratchPool creates a pool whose workgroups run on executors built by
// newExec. A nil newExec selects the serial executor.
func NewScratchPool(newExec func() kernel.Executor) *ScratchPool {
	p := &ScratchPool{}
	p.pool.New = func() any {
		var exec kernel.Executor
		if newExec != nil {
			exec = newExec()
		}
		return kernel.NewWorkgroup(exec)
	}
	return p
}

// Get borrows a workgroup.
func (p *ScratchPool) Get() *kernel.Workgroup {
	return p.pool.Get().(*kernel.Workgroup)
}

// Put returns a workgroup. Nil is ignored.
func (p *ScratchPool) Put(w *kernel.Workgroup) {
	if w == nil {
		return
	}
	p.pool.Put(w)
}
