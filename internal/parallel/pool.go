package parallel

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrPoolClosed is returned when work is submitted to a closed pool.
var ErrPoolClosed = errors.New("parallel: worker pool closed")

// WorkerPool runs tile dispatches on a fixed set of goroutines.
//
// Each worker owns a queue and steals from the others when its own queue is
// empty, which evens out tiles whose cost differs (partial edge tiles,
// cheap background regions).
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers    int
	workQueues []chan func()
	done       chan struct{}
	wg         sync.WaitGroup
	running    atomic.Bool
}

// NewWorkerPool creates a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// 4x workers of buffering hides submission latency.
	queueSize := max(workers*4, 8)

	p := &WorkerPool{
		workers:    workers,
		workQueues: make([]chan func(), workers),
		done:       make(chan struct{}),
	}
	for i := range workers {
		p.workQueues[i] = make(chan func(), queueSize)
	}

	p.running.Store(true)
	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	own := p.workQueues[id]

	for {
		select {
		case <-p.done:
			p.drainQueue(own)
			return
		case work := <-own:
			work()
		default:
			if stolen := p.steal(id); stolen != nil {
				stolen()
				continue
			}
			select {
			case <-p.done:
				p.drainQueue(own)
				return
			case work := <-own:
				work()
			}
		}
	}
}

func (p *WorkerPool) drainQueue(queue chan func()) {
	for {
		select {
		case work := <-queue:
			work()
		default:
			return
		}
	}
}

// steal takes one job from another worker's queue, or returns nil.
func (p *WorkerPool) steal(myID int) func() {
	for i := range p.workers {
		if i == myID {
			continue
		}
		select {
		case work := <-p.workQueues[i]:
			return work
		default:
		}
	}
	return nil
}

// ExecuteAll distributes jobs round-robin and waits until every job has
// either run or been skipped.
//
// Once ctx is done, jobs that have not started yet are skipped and ctx.Err()
// is returned. Jobs already running are not interrupted.
func (p *WorkerPool) ExecuteAll(ctx context.Context, jobs []func()) error {
	if len(jobs) == 0 {
		return ctx.Err()
	}
	if !p.running.Load() {
		return ErrPoolClosed
	}

	var pending sync.WaitGroup
	pending.Add(len(jobs))

	for i, job := range jobs {
		wrapped := func() {
			defer pending.Done()
			if ctx.Err() != nil {
				return
			}
			job()
		}

		select {
		case p.workQueues[i%p.workers] <- wrapped:
		case <-p.done:
			for range len(jobs) - i {
				pending.Done()
			}
			pending.Wait()
			return ErrPoolClosed
		case <-ctx.Done():
			// Nothing else will be queued; account for the rest.
			for range len(jobs) - i {
				pending.Done()
			}
			pending.Wait()
			return ctx.Err()
		}
	}

	pending.Wait()
	return ctx.Err()
}

// Close stops the workers after the queued jobs have run.
// Close is safe to call multiple times but must not race ExecuteAll.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of worker goroutines.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool still accepts jobs.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}
