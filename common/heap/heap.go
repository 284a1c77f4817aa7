// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package heap is the allocator backing boxed error values of outcomes.
//
// Every allocation is a Cell registered under its own address. The registry
// keeps cells reachable for the garbage collector even while the only other
// reference to them is a plain integer word, which is what allows a compact
// outcome to store an error pointer in a uintptr. Cells are never moved by
// the Go runtime, so their address is a stable key until they are freed.
//
// Cells always start with a uint64 serial number, so their addresses are at
// least 8-byte aligned on 64-bit targets and at least 4-byte aligned on
// 32-bit targets. In particular, the lowest bit of a cell address is always 0.
//
// Allocations and frees are counted. Stats may be used to check that the
// number of frees matches the number of allocations at any quiescent point.
package heap

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"
)

// ErrUnknownCell is returned when an address does not refer to a live cell.
var ErrUnknownCell = errors.New("address does not refer to a live cell")

// ErrCellType is returned when a live cell is resolved with the wrong type.
var ErrCellType = errors.New("cell holds a value of a different type")

// Cell is a heap slot holding a single value. Cells are created by Alloc and
// must be released exactly once by Free.
type Cell[E any] struct {
	serial uint64 // < first field, fixes the alignment of the cell address
	Value  E
}

// Serial returns the allocation number of this cell. Serial numbers start
// with 1 and are unique within a process.
func (c *Cell[E]) Serial() uint64 {
	return c.serial
}

// Addr returns the address of the given cell. A nil cell has address 0.
func Addr[E any](c *Cell[E]) uintptr {
	return uintptr(unsafe.Pointer(c))
}

// Stats summarizes the allocation activity of the heap.
type Stats struct {
	Allocations uint64 // < number of cells allocated so far
	Frees       uint64 // < number of cells freed so far
}

// Live returns the number of cells allocated but not yet freed.
func (s Stats) Live() uint64 {
	return s.Allocations - s.Frees
}

func (s Stats) String() string {
	return fmt.Sprintf("allocations: %d, frees: %d, live: %d", s.Allocations, s.Frees, s.Live())
}

type registry struct {
	mutex   sync.Mutex
	live    map[uintptr]any
	stats   Stats
	tracker Tracker
}

var global = &registry{live: map[uintptr]any{}}

// Alloc places a copy of the given value in a fresh cell.
func Alloc[E any](value E) *Cell[E] {
	cell := &Cell[E]{Value: value}
	addr := Addr(cell)

	global.mutex.Lock()
	global.stats.Allocations++
	cell.serial = global.stats.Allocations
	global.live[addr] = cell
	tracker := global.tracker
	global.mutex.Unlock()

	if tracker != nil {
		tracker.Allocated(addr, unsafe.Sizeof(*cell))
	}
	return cell
}

// Resolve returns the live cell located at the given address.
func Resolve[E any](addr uintptr) (*Cell[E], error) {
	global.mutex.Lock()
	entry, found := global.live[addr]
	global.mutex.Unlock()
	if !found {
		return nil, fmt.Errorf("resolving %#x: %w", addr, ErrUnknownCell)
	}
	cell, ok := entry.(*Cell[E])
	if !ok {
		return nil, fmt.Errorf("resolving %#x as %T: %w", addr, cell, ErrCellType)
	}
	return cell, nil
}

// Free releases the cell at the given address. Freeing an address twice, or
// an address never returned by Alloc, fails with ErrUnknownCell.
func Free(addr uintptr) error {
	global.mutex.Lock()
	if _, found := global.live[addr]; !found {
		global.mutex.Unlock()
		return fmt.Errorf("freeing %#x: %w", addr, ErrUnknownCell)
	}
	delete(global.live, addr)
	global.stats.Frees++
	tracker := global.tracker
	global.mutex.Unlock()

	if tracker != nil {
		tracker.Freed(addr)
	}
	return nil
}

// ReadStats returns a snapshot of the allocation counters.
func ReadStats() Stats {
	global.mutex.Lock()
	defer global.mutex.Unlock()
	return global.stats
}

// SetTracker installs a tracker receiving every subsequent allocation and
// free. A nil tracker disables tracking. The returned function restores the
// previously installed tracker.
func SetTracker(tracker Tracker) (restore func()) {
	global.mutex.Lock()
	previous := global.tracker
	global.tracker = tracker
	global.mutex.Unlock()
	return func() {
		global.mutex.Lock()
		global.tracker = previous
		global.mutex.Unlock()
	}
}
