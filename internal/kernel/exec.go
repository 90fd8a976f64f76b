// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package kernel

import "sync"

// Sync is the synchronization scope that follows a program step.
type Sync uint8

const (
	// SyncNone lets each lane continue immediately.
	SyncNone Sync = iota

	// SyncSubgroup waits for the other 15 lanes of the sub-group.
	SyncSubgroup

	// SyncGroup waits for all 256 lanes of the workgroup.
	SyncGroup
)

// String returns the scope name.
func (s Sync) String() string {
	switch s {
	case SyncNone:
		return "none"
	case SyncSubgroup:
		return "subgroup"
	case SyncGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Step is one lane-parallel stretch of the kernel followed by a barrier.
type Step struct {
	Name string
	Run  func(lane int)
	Sync Sync
}

// Executor runs a program of steps for every lane of a workgroup.
//
// Whatever the scheduling, an executor must guarantee that no lane starts
// step i+1 before every lane in the step's sync scope finished step i.
type Executor interface {
	Execute(program []Step)
}

// SerialExecutor runs each step for all lanes before moving to the next.
// Every barrier holds by construction, so it is the default on the host.
type SerialExecutor struct{}

// Execute runs the program lane by lane, step by step.
func (SerialExecutor) Execute(program []Step) {
	for _, step := range program {
		for lane := range GroupLanes {
			step.Run(lane)
		}
	}
}

// GoroutineExecutor runs every lane on its own goroutine and synchronizes
// them with explicit group and sub-group barriers. It does not depend on any
// lock-step scheduling between lanes.
//
// A GoroutineExecutor must not run two programs at the same time.
type GoroutineExecutor struct {
	group     *Barrier
	subgroups [Subgroups]*Barrier
}

// NewGoroutineExecutor creates an executor with its barriers.
func NewGoroutineExecutor() *GoroutineExecutor {
	e := &GoroutineExecutor{group: NewBarrier(GroupLanes)}
	for i := range e.subgroups {
		e.subgroups[i] = NewBarrier(SubgroupLanes)
	}
	return e
}

// Execute launches 256 lanes and waits for all of them to finish.
func (e *GoroutineExecutor) Execute(program []Step) {
	var wg sync.WaitGroup
	wg.Add(GroupLanes)
	for lane := range GroupLanes {
		go func() {
			defer wg.Done()
			sub := e.subgroups[Subgroup(lane)]
			for _, step := range program {
				step.Run(lane)
				switch step.Sync {
				case SyncSubgroup:
					sub.Wait()
				case SyncGroup:
					e.group.Wait()
				}
			}
		}()
	}
	wg.Wait()
}
