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

	"github.com/0xsoniclabs/outcome/common/result"
)

// Outcome is the operation surface shared by both physical layouts. Code
// written against Outcome does not need to know which layout backs a given
// outcome. The constructors Success, Failure, and FailureFromBox pick the
// layout using SelectLayout.
type Outcome[T any, E any] interface {
	// IsSuccess reports whether the outcome holds a value.
	IsSuccess() bool
	// Value returns the value of a successful outcome.
	Value() T
	// Err returns the error of a failed outcome.
	Err() E
	// Get destructures the outcome into a value and an error handle.
	Get() (T, Handle[E])
	// Unwrap destructures the outcome into a value and a Go error.
	Unwrap() (T, error)
	// Poisoned reports whether the outcome has been moved or released.
	Poisoned() bool
	// Layout returns the physical layout backing the outcome.
	Layout() LayoutKind
	// Release frees the owned error, if any, and poisons the outcome.
	Release()
}

var (
	_ Outcome[int32, string] = (*Compact[int32, string])(nil)
	_ Outcome[int32, string] = (*General[int32, string])(nil)
)

// Success creates a successful outcome using the layout selected for T.
func Success[T any, E any](value T) Outcome[T, E] {
	if SelectLayout[T]() == LayoutCompact {
		res := NewCompact[T, E](value)
		return &res
	}
	res := NewGeneral[T, E](value)
	return &res
}

// Failure creates a failed outcome owning a copy of the given error, using
// the layout selected for T.
func Failure[T any, E any](err E) Outcome[T, E] {
	box := NewBox(err)
	return FailureFromBox[T](&box)
}

// FailureFromBox creates a failed outcome taking over the error owned by the
// given box, using the layout selected for T. The box is poisoned.
func FailureFromBox[T any, E any](b *Box[E]) Outcome[T, E] {
	if SelectLayout[T]() == LayoutCompact {
		res := CompactFromBox[T](b)
		return &res
	}
	res := GeneralFromBox[T](b)
	return &res
}

// Move transfers the given outcome, including the ownership of its error, to
// the returned outcome. The given outcome is poisoned.
func Move[T any, E any](o Outcome[T, E]) Outcome[T, E] {
	switch o := o.(type) {
	case *Compact[T, E]:
		res := o.Move()
		return &res
	case *General[T, E]:
		res := o.Move()
		return &res
	}
	panic(fmt.Sprintf("outcome: unsupported outcome implementation %T", o))
}

// Clone returns an independent copy of the given outcome. The error of a
// failed outcome is deep-copied.
func Clone[T any, E any](o Outcome[T, E]) Outcome[T, E] {
	switch o := o.(type) {
	case *Compact[T, E]:
		res := o.Clone()
		return &res
	case *General[T, E]:
		res := o.Clone()
		return &res
	}
	panic(fmt.Sprintf("outcome: unsupported outcome implementation %T", o))
}

// ToResult converts the given outcome into a result.Result. The error is
// converted as by Handle.AsError and does not alias the outcome. The outcome
// keeps the ownership of its error and still has to be released.
func ToResult[T any, E any](o Outcome[T, E]) result.Result[T] {
	value, err := o.Unwrap()
	return result.Of(value, err)
}
