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
	"fmt"
	"unsafe"

	"github.com/0xsoniclabs/outcome/common/heap"
)

const (
	// tagBit is set in the word of a successful compact outcome. Heap cells
	// are at least 2-byte aligned, so it is never set in an error address.
	tagBit uintptr = 1 << 0
	// poisonBit is only ever set together with tagBit, in moved-from words.
	// It lives in the tag byte, which payloads never occupy, so no success
	// word carries it.
	poisonBit uintptr = 1 << 1
	// movedWord is left behind by Move and Release. It is success-shaped, so
	// releasing it never frees anything.
	movedWord = tagBit | poisonBit
)

// Compact is an outcome occupying a single machine word. It can only be
// instantiated for value types strictly smaller than a pointer.
//
// In the failure state the word is the address of the heap cell holding the
// error, which is always even. In the success state the word holds the bytes
// of the value at Native.PayloadOffset and has its lowest bit set. The zero
// Compact is empty; it is neither a success nor owns an error.
type Compact[T any, E any] struct {
	word uintptr
}

// NewCompact creates a successful compact outcome holding the given value.
func NewCompact[T any, E any](value T) Compact[T, E] {
	size := checkCompact[T]("NewCompact")
	var res Compact[T, E]
	*(*T)(unsafe.Add(unsafe.Pointer(&res.word), Native.PayloadOffset(size))) = value
	res.word |= tagBit
	return res
}

// CompactFailure creates a failed compact outcome owning a copy of the given
// error.
func CompactFailure[T any, E any](err E) Compact[T, E] {
	checkCompact[T]("CompactFailure")
	box := NewBox(err)
	return Compact[T, E]{word: box.detach("CompactFailure")}
}

// CompactFromBox creates a failed compact outcome taking over the ownership
// of the error held by the given box. The box is poisoned.
func CompactFromBox[T any, E any](b *Box[E]) Compact[T, E] {
	checkCompact[T]("CompactFromBox")
	return Compact[T, E]{word: b.detach("CompactFromBox")}
}

func checkCompact[T any](op string) uintptr {
	var zero T
	size := unsafe.Sizeof(zero)
	if !Native.Fits(size) {
		violate(op, fmt.Errorf("%w: %d-byte %T in %d-byte word", ErrLayoutPrecondition, size, zero, Native.WordSize))
	}
	return size
}

// IsSuccess reports whether the outcome holds a value. Moved-from outcomes
// are success-shaped and report true as well.
func (c Compact[T, E]) IsSuccess() bool {
	return c.word&tagBit != 0
}

// Poisoned reports whether the outcome has been moved or released.
func (c Compact[T, E]) Poisoned() bool {
	return c.word == movedWord
}

// Layout returns LayoutCompact.
func (c Compact[T, E]) Layout() LayoutKind {
	return LayoutCompact
}

// Bits returns the raw word of the outcome.
func (c Compact[T, E]) Bits() uintptr {
	return c.word
}

// Value returns the value of a successful outcome.
func (c Compact[T, E]) Value() T {
	if contractChecks {
		switch {
		case c.word == movedWord:
			violate("Compact.Value", ErrPoisoned)
		case c.word == 0:
			violate("Compact.Value", ErrEmpty)
		case !c.IsSuccess():
			violate("Compact.Value", ErrWrongBranch)
		}
	}
	return c.payload()
}

func (c Compact[T, E]) payload() T {
	var zero T
	word := c.word
	return *(*T)(unsafe.Add(unsafe.Pointer(&word), Native.PayloadOffset(unsafe.Sizeof(zero))))
}

// Err returns the error of a failed outcome.
func (c Compact[T, E]) Err() E {
	ptr := c.errorPtr("Compact.Err")
	if ptr == nil {
		var zero E
		return zero
	}
	return *ptr
}

func (c Compact[T, E]) errorPtr(op string) *E {
	if c.word&tagBit != 0 || c.word == 0 {
		if contractChecks {
			violate(op, c.wrongBranchReason())
		}
		return nil
	}
	cell, err := heap.Resolve[E](c.word)
	if err != nil {
		if contractChecks {
			violate(op, err)
		}
		return nil
	}
	return &cell.Value
}

func (c Compact[T, E]) wrongBranchReason() error {
	switch c.word {
	case movedWord:
		return ErrPoisoned
	case 0:
		return ErrEmpty
	}
	return ErrWrongBranch
}

// Get destructures the outcome into its value and a handle to its error.
// The value is meaningful only if the handle has not failed.
func (c Compact[T, E]) Get() (T, Handle[E]) {
	if c.IsSuccess() {
		if contractChecks && c.word == movedWord {
			violate("Compact.Get", ErrPoisoned)
		}
		return c.payload(), Handle[E]{}
	}
	var zero T
	return zero, Handle[E]{err: c.errorPtr("Compact.Get")}
}

// Unwrap destructures the outcome following Go's (value, error) convention.
func (c Compact[T, E]) Unwrap() (T, error) {
	value, err := c.Get()
	return value, err.AsError()
}

// Move transfers the outcome, including the ownership of its error, to the
// returned outcome. The receiver is poisoned.
func (c *Compact[T, E]) Move() Compact[T, E] {
	if contractChecks && c.word == movedWord {
		violate("Compact.Move", ErrPoisoned)
	}
	moved := *c
	c.word = movedWord
	return moved
}

// Clone returns an independent copy of the outcome. The error of a failed
// outcome is deep-copied into a new heap cell.
func (c *Compact[T, E]) Clone() Compact[T, E] {
	if c.IsSuccess() {
		if contractChecks && c.word == movedWord {
			violate("Compact.Clone", ErrPoisoned)
		}
		return *c
	}
	ptr := c.errorPtr("Compact.Clone")
	if ptr == nil {
		return Compact[T, E]{word: movedWord}
	}
	box := NewBox(cloneValue(ptr))
	return Compact[T, E]{word: box.detach("Compact.Clone")}
}

// Release frees the error of a failed outcome and poisons the outcome.
// Releasing a successful, empty, or poisoned outcome frees nothing.
func (c *Compact[T, E]) Release() {
	word := c.word
	c.word = movedWord
	if word&tagBit != 0 || word == 0 {
		return
	}
	if err := heap.Free(word); err != nil && contractChecks {
		violate("Compact.Release", err)
	}
}
