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

//go:generate mockgen -source tracker.go -destination tracker_mocks.go -package heap

// Tracker is notified about every allocation and free performed by the heap.
// Notifications are delivered after the heap's internal lock is released, in
// the goroutine performing the operation.
type Tracker interface {
	// Allocated is called once a cell of the given size has been allocated
	// at the given address.
	Allocated(addr uintptr, size uintptr)
	// Freed is called once the cell at the given address has been released.
	Freed(addr uintptr)
}
