// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package outcome provides value-or-error types that are as small as
// possible. An outcome holds either a value of type T or an error of type E.
//
// Errors are boxed: a failed outcome owns a single heap cell holding its
// error. This keeps the failure branch pointer-sized independently of E and
// allows two physical layouts:
//
//   - Compact, for values strictly smaller than a pointer, is exactly one word.
//     The lowest bit of the word tells the branches apart: heap cells are
//     always even, so a set bit marks a word holding value bytes instead of an
//     error address.
//   - General, for all other values, stores the value next to the box.
//
// Success, Failure, and FailureFromBox select the layout from the size of T
// and return it behind the Outcome interface. Code that wants to avoid the
// interface uses the concrete types directly.
//
// Outcomes are destructured into a value and an error handle:
//
//	o := outcome.NewCompact[int32, string](5)
//	defer o.Release()
//	value, err := o.Get()
//	if err.Failed() {
//	    log.Printf("failed: %s", err.Deref())
//	    return
//	}
//	use(value)
//
// Outcomes follow single-owner semantics. Errors are never freed implicitly:
// the last owner calls Release. Ownership is transferred with Move, which
// poisons the source so that releasing it again frees nothing. Clone
// deep-copies the error into an independent cell. Outcomes are not safe for
// concurrent use.
//
// Misuse, such as reading the value of a failed outcome or touching a
// moved-from one, panics with a *ContractViolation. Building with the
// outcome_nochecks tag removes these checks.
package outcome
