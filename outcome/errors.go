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
	"errors"
	"fmt"
)

var (
	// ErrLayoutPrecondition is reported when a compact outcome is requested
	// for a payload that is not strictly smaller than a pointer.
	ErrLayoutPrecondition = errors.New("payload does not fit next to the tag bit")
	// ErrPoisoned is reported when a moved-from or released outcome or box is
	// accessed.
	ErrPoisoned = errors.New("outcome has been moved or released")
	// ErrWrongBranch is reported when the value of a failed outcome or the
	// error of a successful outcome is read.
	ErrWrongBranch = errors.New("accessed branch is not live")
	// ErrEmpty is reported when a zero compact outcome, which owns neither a
	// value nor an error, is read.
	ErrEmpty = errors.New("outcome is empty")
)

// ContractViolation is the panic value raised on misuse of an outcome. Misuse
// is a programming error and not meant to be recovered from in production
// code.
type ContractViolation struct {
	Op  string // < the operation that detected the violation
	Err error  // < the reason
}

func (v *ContractViolation) Error() string {
	return fmt.Sprintf("outcome: %s: %v", v.Op, v.Err)
}

func (v *ContractViolation) Unwrap() error {
	return v.Err
}

func violate(op string, err error) {
	panic(&ContractViolation{Op: op, Err: err})
}

// FailureError adapts an error value of an arbitrary type to Go's error
// interface. It is produced for error types not implementing error.
type FailureError[E any] struct {
	Value E
}

func (e *FailureError[E]) Error() string {
	return fmt.Sprint(e.Value)
}

// asError presents the given error value as a Go error.
func asError[E any](value *E) error {
	if err, ok := any(*value).(error); ok && err != nil {
		return err
	}
	return &FailureError[E]{Value: *value}
}

// ChecksEnabled reports whether contract violations are detected. Checks are
// compiled out by the outcome_nochecks build tag.
func ChecksEnabled() bool {
	return contractChecks
}
