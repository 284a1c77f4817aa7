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

import "reflect"

// Handle is the second slot of a destructured outcome. It tells whether the
// outcome failed and, if so, grants read access to the error:
//
//	value, err := o.Get()
//	if err.Failed() {
//	    return fmt.Errorf("lookup failed: %v", err.Deref())
//	}
//	use(value)
//
// A handle aliases the error owned by the outcome it was obtained from. It is
// valid only while that outcome is neither moved nor released.
type Handle[E any] struct {
	err *E
}

// Failed reports whether the handle refers to an error.
func (h Handle[E]) Failed() bool {
	return h.err != nil
}

// Deref returns the error the handle refers to. The handle must have failed.
func (h Handle[E]) Deref() E {
	if h.err == nil {
		if contractChecks {
			violate("Handle.Deref", ErrWrongBranch)
		}
		var zero E
		return zero
	}
	return *h.err
}

// Ptr provides access to the fields and methods of the error. It is nil if
// the handle has not failed.
func (h Handle[E]) Ptr() *E {
	return h.err
}

// AsError presents the error as a Go error. The result is nil if the handle
// has not failed. Error values implementing the error interface are returned
// as they are, others are wrapped in a FailureError.
func (h Handle[E]) AsError() error {
	if h.err == nil {
		return nil
	}
	return asError(h.err)
}

// View is a non-owning, read-only view of a boxed error through one of the
// interfaces implemented by the error type. The view aliases the boxed error:
// it observes later modifications and must not outlive the owning box or
// outcome.
type View[Base any] struct {
	base   Base
	failed bool
}

// Failed reports whether the view refers to an error.
func (v View[Base]) Failed() bool {
	return v.failed
}

// Deref returns the error seen through the Base interface. The view must have
// failed.
func (v View[Base]) Deref() Base {
	if contractChecks && !v.failed {
		violate("View.Deref", ErrWrongBranch)
	}
	return v.base
}

// Upcast views the error owned by the given live box through the interface
// Base. It reports false if the error type does not implement Base.
func Upcast[Base any, E any](b *Box[E]) (View[Base], bool) {
	return upcast[Base](b.Ptr())
}

// UpcastHandle views the error referenced by the given handle through the
// interface Base. A handle that has not failed yields a view that has not
// failed either. It reports false if the error type does not implement Base.
func UpcastHandle[Base any, E any](h Handle[E]) (View[Base], bool) {
	if !h.Failed() {
		return View[Base]{}, implements[Base, E]()
	}
	return upcast[Base](h.err)
}

func upcast[Base any, E any](err *E) (View[Base], bool) {
	if err == nil {
		return View[Base]{}, false
	}
	// Dispatch through the pointer so that reads alias the boxed storage.
	// Interface typed errors carry their own reference semantics.
	if base, ok := any(err).(Base); ok {
		return View[Base]{base: base, failed: true}, true
	}
	if base, ok := any(*err).(Base); ok {
		return View[Base]{base: base, failed: true}, true
	}
	return View[Base]{}, false
}

func implements[Base any, E any]() bool {
	base := reflect.TypeFor[Base]()
	if base.Kind() != reflect.Interface {
		return false
	}
	err := reflect.TypeFor[E]()
	return err.Implements(base) || reflect.PointerTo(err).Implements(base)
}
