// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package heap

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestHeap_Alloc_AddressesHaveLowestBitCleared(t *testing.T) {
	require := require.New(t)

	// Odd-sized values would be placed at unaligned addresses by the tiny
	// allocator if they were allocated on their own.
	var addrs []uintptr
	for range 100 {
		a := Alloc(byte(1))
		b := Alloc([3]byte{1, 2, 3})
		c := Alloc(struct{}{})
		for _, addr := range []uintptr{Addr(a), Addr(b), Addr(c)} {
			require.Zero(addr&1, "address %#x is odd", addr)
			addrs = append(addrs, addr)
		}
	}
	for _, addr := range addrs {
		require.NoError(Free(addr))
	}
}

func TestHeap_Resolve_ReturnsAllocatedCell(t *testing.T) {
	require := require.New(t)
	cell := Alloc("hello")
	defer func() { require.NoError(Free(Addr(cell))) }()

	got, err := Resolve[string](Addr(cell))
	require.NoError(err)
	require.Same(cell, got)
	require.Equal("hello", got.Value)
}

func TestHeap_Resolve_DetectsWrongType(t *testing.T) {
	cell := Alloc(12)
	defer Free(Addr(cell))

	_, err := Resolve[string](Addr(cell))
	require.ErrorIs(t, err, ErrCellType)
}

func TestHeap_Resolve_FailsForFreedCell(t *testing.T) {
	cell := Alloc(12)
	addr := Addr(cell)
	require.NoError(t, Free(addr))

	_, err := Resolve[int](addr)
	require.ErrorIs(t, err, ErrUnknownCell)
}

func TestHeap_Free_DetectsDoubleFree(t *testing.T) {
	cell := Alloc(12)
	addr := Addr(cell)
	require.NoError(t, Free(addr))
	require.ErrorIs(t, Free(addr), ErrUnknownCell)
}

func TestHeap_Free_DetectsForeignAddress(t *testing.T) {
	value := 12
	require.ErrorIs(t, Free(uintptr(unsafe.Pointer(&value))), ErrUnknownCell)
	require.ErrorIs(t, Free(0), ErrUnknownCell)
}

func TestHeap_Serial_IsUniquePerAllocation(t *testing.T) {
	require := require.New(t)
	a := Alloc(1)
	b := Alloc(2)
	defer Free(Addr(a))
	defer Free(Addr(b))
	require.NotZero(a.Serial())
	require.Less(a.Serial(), b.Serial())
}

func TestHeap_ReadStats_CountsAllocationsAndFrees(t *testing.T) {
	require := require.New(t)
	before := ReadStats()

	cells := make([]*Cell[int], 10)
	for i := range cells {
		cells[i] = Alloc(i)
	}
	middle := ReadStats()
	require.Equal(before.Allocations+10, middle.Allocations)
	require.Equal(before.Frees, middle.Frees)
	require.Equal(before.Live()+10, middle.Live())

	for _, cell := range cells {
		require.NoError(Free(Addr(cell)))
	}
	after := ReadStats()
	require.Equal(before.Frees+10, after.Frees)
	require.Equal(before.Live(), after.Live())
}

func TestHeap_Stats_String(t *testing.T) {
	stats := Stats{Allocations: 5, Frees: 3}
	require.Equal(t, "allocations: 5, frees: 3, live: 2", stats.String())
}

func TestHeap_SetTracker_ReceivesAllocationsAndFrees(t *testing.T) {
	ctrl := gomock.NewController(t)
	tracker := NewMockTracker(ctrl)
	restore := SetTracker(tracker)
	defer restore()

	var addr uintptr
	gomock.InOrder(
		tracker.EXPECT().Allocated(gomock.Any(), unsafe.Sizeof(Cell[int64]{})).Do(func(a, _ uintptr) {
			addr = a
		}),
		tracker.EXPECT().Freed(gomock.Any()).Do(func(a uintptr) {
			require.Equal(t, addr, a)
		}),
	)

	cell := Alloc(int64(7))
	require.NoError(t, Free(Addr(cell)))
}

func TestHeap_SetTracker_RestoreReinstallsPreviousTracker(t *testing.T) {
	ctrl := gomock.NewController(t)
	first := NewMockTracker(ctrl)
	second := NewMockTracker(ctrl)

	restoreFirst := SetTracker(first)
	defer restoreFirst()

	restoreSecond := SetTracker(second)
	second.EXPECT().Allocated(gomock.Any(), gomock.Any())
	cell := Alloc(1)
	restoreSecond()

	first.EXPECT().Freed(Addr(cell))
	require.NoError(t, Free(Addr(cell)))
}

func TestHeap_ConcurrentUse_KeepsCountersConsistent(t *testing.T) {
	before := ReadStats()
	const workers = 8
	const perWorker = 1000

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWorker {
				cell := Alloc(i)
				if err := Free(Addr(cell)); err != nil {
					t.Errorf("failed to free cell: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	after := ReadStats()
	require.Equal(t, before.Allocations+workers*perWorker, after.Allocations)
	require.Equal(t, before.Live(), after.Live())
}
