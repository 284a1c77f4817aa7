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
	"slices"
	"testing"

	"github.com/0xsoniclabs/outcome/common/heap"
	"github.com/stretchr/testify/require"
)

// codedError is implemented by ioError and used as an upcast target.
type codedError interface {
	Code() int
	Error() string
}

type ioError struct {
	code int
	path string
}

func (e ioError) Code() int {
	return e.code
}

func (e ioError) Error() string {
	return fmt.Sprintf("io error %d at %s", e.code, e.path)
}

// labels needs a deep copy to be duplicated.
type labels struct {
	names []string
}

func (l labels) Clone() labels {
	return labels{names: slices.Clone(l.names)}
}

func recoverViolation(action func()) (violation *ContractViolation) {
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok {
				errors.As(err, &violation)
			}
		}
	}()
	action()
	return nil
}

func requireViolation(t *testing.T, target error, action func()) {
	t.Helper()
	violation := recoverViolation(action)
	require.NotNil(t, violation, "expected a contract violation")
	require.ErrorIs(t, violation, target)
}

func skipWithoutChecks(t *testing.T) {
	t.Helper()
	if !contractChecks {
		t.Skip("contract checks are disabled")
	}
}

// requireAllocations checks the number of cells allocated and freed since
// the given snapshot was taken.
func requireAllocations(t *testing.T, before heap.Stats, allocations, frees uint64) {
	t.Helper()
	after := heap.ReadStats()
	require.Equal(t, allocations, after.Allocations-before.Allocations, "allocations")
	require.Equal(t, frees, after.Frees-before.Frees, "frees")
}
