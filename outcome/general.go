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

// General is an outcome supporting value types of any size. It stores the
// value next to the error box. The box slot doubles as the discriminant: an
// empty box denotes success, a live box failure, and a poisoned box a
// moved-from or released outcome. For pointer-sized values, a General
// outcome occupies two words.
type General[T any, E any] struct {
	value T
	box   Box[E]
}

// NewGeneral creates a successful general outcome holding the given value.
func NewGeneral[T any, E any](value T) General[T, E] {
	return General[T, E]{value: value}
}

// GeneralFailure creates a failed general outcome owning a copy of the given
// error.
func GeneralFailure[T any, E any](err E) General[T, E] {
	return General[T, E]{box: NewBox(err)}
}

// GeneralFromBox creates a failed general outcome taking over the ownership
// of the error held by the given box. The box is poisoned.
func GeneralFromBox[T any, E any](b *Box[E]) General[T, E] {
	return General[T, E]{box: b.Move()}
}

// IsSuccess reports whether the outcome holds a value. Moved-from outcomes
// report true, like moved-from compact outcomes.
func (g General[T, E]) IsSuccess() bool {
	return !g.box.live()
}

// Poisoned reports whether the outcome has been moved or released.
func (g General[T, E]) Poisoned() bool {
	return g.box.Poisoned()
}

// Layout returns LayoutGeneral.
func (g General[T, E]) Layout() LayoutKind {
	return LayoutGeneral
}

// Value returns the value of a successful outcome.
func (g General[T, E]) Value() T {
	if contractChecks {
		if g.box.Poisoned() {
			violate("General.Value", ErrPoisoned)
		}
		if g.box.live() {
			violate("General.Value", ErrWrongBranch)
		}
	}
	return g.value
}

// Err returns the error of a failed outcome.
func (g General[T, E]) Err() E {
	if !g.box.live() {
		if contractChecks {
			violate("General.Err", g.wrongBranchReason())
		}
		var zero E
		return zero
	}
	return *g.box.Ptr()
}

func (g General[T, E]) wrongBranchReason() error {
	if g.box.Poisoned() {
		return ErrPoisoned
	}
	return ErrWrongBranch
}

// Get destructures the outcome into its value and a handle to its error.
// The value is meaningful only if the handle has not failed.
func (g General[T, E]) Get() (T, Handle[E]) {
	if contractChecks && g.box.Poisoned() {
		violate("General.Get", ErrPoisoned)
	}
	if g.box.live() {
		var zero T
		return zero, Handle[E]{err: g.box.Ptr()}
	}
	return g.value, Handle[E]{}
}

// Unwrap destructures the outcome following Go's (value, error) convention.
func (g General[T, E]) Unwrap() (T, error) {
	value, err := g.Get()
	return value, err.AsError()
}

// Move transfers the outcome, including the ownership of its error, to the
// returned outcome. The receiver is poisoned.
func (g *General[T, E]) Move() General[T, E] {
	if contractChecks && g.box.Poisoned() {
		violate("General.Move", ErrPoisoned)
	}
	moved := General[T, E]{value: g.value, box: g.box}
	var zero T
	g.value = zero
	g.box.cell = poison
	return moved
}

// Clone returns an independent copy of the outcome. The error of a failed
// outcome is deep-copied into a new heap cell.
func (g *General[T, E]) Clone() General[T, E] {
	if g.box.live() {
		return General[T, E]{box: g.box.Clone()}
	}
	if contractChecks && g.box.Poisoned() {
		violate("General.Clone", ErrPoisoned)
	}
	return General[T, E]{value: g.value}
}

// Release frees the error of a failed outcome and poisons the outcome.
// Releasing a successful or poisoned outcome frees nothing.
func (g *General[T, E]) Release() {
	var zero T
	g.value = zero
	g.box.Release()
}
