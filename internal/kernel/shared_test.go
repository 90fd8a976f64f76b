// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package kernel

import (
	"sync"
	"sync/atomic"
	"testing"
)

// =============================================================================
// SharedTile Tests
// =============================================================================

func TestPositionPlanes_SlotsAreDistinct(t *testing.T) {
	var pp PositionPlanes
	seen := make(map[int]bool)
	for plane := range planeCount {
		for lane := range GroupLanes {
			slot := pp.Slot(plane, lane)
			if slot < 0 || slot >= planeCount*planeSlots {
				t.Fatalf("Slot(%d, %d) = %d, outside the position planes", plane, lane, slot)
			}
			if seen[slot] {
				t.Fatalf("Slot(%d, %d) = %d, already used", plane, lane, slot)
			}
			seen[slot] = true
		}
	}
}

func TestPositionPlanes_SubgroupSpansQuarters(t *testing.T) {
	var pp PositionPlanes
	quarters := make(map[int]int)
	for k := range SubgroupLanes {
		quarters[pp.Slot(PlaneX, k)/(planeSlots/4)]++
	}
	if len(quarters) != 4 {
		t.Errorf("sub-group touches %d quarter sections, want 4", len(quarters))
	}
}

func TestPositionPlanes_StoreLoad(t *testing.T) {
	var s SharedTile
	pp := s.Positions()
	for lane := range GroupLanes {
		pp.Store(lane, Vec3{X: float32(lane), Y: float32(-lane), Z: float32(lane) * 0.5})
	}
	for lane := range GroupLanes {
		want := Vec3{X: float32(lane), Y: float32(-lane), Z: float32(lane) * 0.5}
		if got := pp.Load(lane); got != want {
			t.Errorf("Load(%d) = %v, want %v", lane, got, want)
		}
	}
}

func TestSharedTile_ViewsAlias(t *testing.T) {
	var s SharedTile
	s.Depth().Set(0, 0, 42)
	if got := s.Positions().Load(0).X; got != 42 {
		t.Errorf("position view sees %v at slot 0, want 42 written through the depth view", got)
	}
	s.Reset()
	if got := s.Depth().At(0, 0); got != 0 {
		t.Errorf("Depth().At(0, 0) = %v after Reset, want 0", got)
	}
}

// =============================================================================
// Barrier Tests
// =============================================================================

func TestBarrier_PhasesDoNotOverlap(t *testing.T) {
	const parties = 32
	const phases = 50

	b := NewBarrier(parties)
	var arrived [phases]atomic.Int32
	var violations atomic.Int32
	var wg sync.WaitGroup
	wg.Add(parties)
	for range parties {
		go func() {
			defer wg.Done()
			for p := range phases {
				arrived[p].Add(1)
				b.Wait()
				if arrived[p].Load() != parties {
					violations.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	if v := violations.Load(); v != 0 {
		t.Errorf("%d goroutines left a phase before all parties arrived", v)
	}
}

func TestBarrier_SingleParty(t *testing.T) {
	b := NewBarrier(1)
	for range 3 {
		b.Wait()
	}
	if b.Parties() != 1 {
		t.Errorf("Parties() = %d, want 1", b.Parties())
	}
}

func TestBarrier_PanicsOnZeroParties(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewBarrier(0) did not panic")
		}
	}()
	NewBarrier(0)
}

// =============================================================================
// Field Tests
// =============================================================================

func TestField_LoadClamps(t *testing.T) {
	f := NewField(3, 2)
	for i := range f.Data {
		f.Data[i] = float32(i)
	}
	tests := []struct {
		x, y int
		want float32
	}{
		{0, 0, 0},
		{-5, 0, 0},
		{7, 0, 2},
		{1, 1, 4},
		{1, -3, 1},
		{10, 10, 5},
	}
	for _, tt := range tests {
		if got := f.Load(tt.x, tt.y); got != tt.want {
			t.Errorf("Load(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestField_GatherOrder(t *testing.T) {
	f := NewField(4, 4)
	for y := range 4 {
		for x := range 4 {
			f.Data[y*4+x] = float32(10*y + x)
		}
	}
	// The shared corner of texels (1,1)..(2,2) sits at pixel coordinate (2, 2).
	g := f.Gather(Vec2{X: 2.0 / 4, Y: 2.0 / 4})
	want := [4]float32{21, 22, 12, 11}
	if g != want {
		t.Errorf("Gather = %v, want %v", g, want)
	}
}

func TestField_GatherClampsAtEdges(t *testing.T) {
	f := NewField(2, 2)
	copy(f.Data, []float32{1, 2, 3, 4})
	g := f.Gather(Vec2{X: -1, Y: -1})
	want := [4]float32{1, 1, 1, 1}
	if g != want {
		t.Errorf("Gather outside = %v, want %v", g, want)
	}
}

func TestField_StoreIgnoresOutOfRange(t *testing.T) {
	f := NewField(2, 2)
	f.Store(2, 0, 1)
	f.Store(0, -1, 1)
	for i, v := range f.Data {
		if v != 0 {
			t.Errorf("Data[%d] = %v, want 0", i, v)
		}
	}
}
