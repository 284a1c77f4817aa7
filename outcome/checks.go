// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

//go:build !outcome_nochecks

package outcome

// contractChecks enables the detection of misuse faults such as reading the
// value of a failed outcome or touching a moved-from outcome. Build with the
// outcome_nochecks tag to remove the checks.
const contractChecks = true
