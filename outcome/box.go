// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package outcome

import (
	"unsafe"

	"github.com/0xsoniclabs/outcome/common/heap"
)

// poisonAnchor provides the address used to mark moved-from boxes. It is
// never read or written through a box.
var poisonAnchor uint64

var poison = unsafe.Pointer(&poisonAnchor)

// Box exclusively owns a single heap-allocated error value. A box is in one of
// three states:
//   - live: it owns a heap cell holding the error,
//   - poisoned: it has been moved from or released and owns nothing,
//   - empty: the zero Box, owning nothing; used by the general layout to
//     denote a successful outcome.
//
// Copying a Box by assignment duplicates the ownership claim. Use Move to
// transfer ownership and Clone to obtain an independent copy of the error.
// Boxes are never released implicitly; the owning outcome (or the last owner
// of a stand-alone box) has to call Release.
type Box[E any] struct {
	cell unsafe.Pointer // < nil, poison, or a *heap.Cell[E]
}

// NewBox allocates a new heap cell holding a copy of the given error value.
func NewBox[E any](err E) Box[E] {
	return Box[E]{cell: unsafe.Pointer(heap.Alloc(err))}
}

// NewBoxWith allocates a new heap cell holding a zero error value and lets
// init populate it in place.
func NewBoxWith[E any](init func(*E)) Box[E] {
	var zero E
	cell := heap.Alloc(zero)
	init(&cell.Value)
	return Box[E]{cell: unsafe.Pointer(cell)}
}

func (b Box[E]) live() bool {
	return b.cell != nil && b.cell != poison
}

// Poisoned reports whether the box has been moved from or released.
func (b Box[E]) Poisoned() bool {
	return b.cell == poison
}

// Ptr returns a pointer to the boxed error. The box must be live.
func (b Box[E]) Ptr() *E {
	if !b.live() {
		if contractChecks {
			violate("Box.Ptr", b.deadReason())
		}
		return nil
	}
	return &(*heap.Cell[E])(b.cell).Value
}

func (b Box[E]) deadReason() error {
	if b.cell == nil {
		return ErrEmpty
	}
	return ErrPoisoned
}

// Move transfers the ownership of the boxed error to the returned box. The
// receiver is poisoned.
func (b *Box[E]) Move() Box[E] {
	if contractChecks && !b.live() {
		violate("Box.Move", b.deadReason())
	}
	moved := *b
	b.cell = poison
	return moved
}

// Clone returns a box owning an independent deep copy of the boxed error. If
// the error type implements Cloner, its Clone method is used to produce the
// copy.
func (b Box[E]) Clone() Box[E] {
	ptr := b.Ptr()
	if ptr == nil {
		return Box[E]{cell: poison}
	}
	return NewBox(cloneValue(ptr))
}

// Release frees the boxed error and poisons the box. Releasing an empty or
// poisoned box has no effect.
func (b *Box[E]) Release() {
	cell := b.cell
	b.cell = poison
	if cell == nil || cell == poison {
		return
	}
	if err := heap.Free(uintptr(cell)); err != nil && contractChecks {
		violate("Box.Release", err)
	}
}

// detach hands the address of the owned cell over to a compact outcome. The
// heap keeps the cell reachable while only the address is retained.
func (b *Box[E]) detach(op string) uintptr {
	if !b.live() {
		if contractChecks {
			violate(op, b.deadReason())
		}
		return movedWord
	}
	addr := uintptr(b.cell)
	b.cell = poison
	return addr
}

// Cloner may be implemented by error types requiring more than a shallow copy
// to be duplicated, for instance because they hold slices or maps.
type Cloner[E any] interface {
	Clone() E
}

func cloneValue[E any](value *E) E {
	if cloner, ok := any(*value).(Cloner[E]); ok {
		return cloner.Clone()
	}
	if cloner, ok := any(value).(Cloner[E]); ok {
		return cloner.Clone()
	}
	return *value
}
