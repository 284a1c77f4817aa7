// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"
	"unsafe"

	"github.com/0xsoniclabs/outcome/common/heap"
	"github.com/0xsoniclabs/outcome/outcome"
	"github.com/pbnjay/memory"
	"github.com/urfave/cli/v2"
)

var InfoCmd = cli.Command{
	Action: addPerformanceDiagnostics(info),
	Name:   "info",
	Usage:  "prints the outcome configuration of this platform",
}

func info(context *cli.Context) error {
	out := context.App.Writer
	fmt.Fprintf(out, "native layout:   %v\n", outcome.Native)
	fmt.Fprintf(out, "pointer size:    %d bytes\n", unsafe.Sizeof(uintptr(0)))
	fmt.Fprintf(out, "contract checks: %t\n", outcome.ChecksEnabled())
	fmt.Fprintf(out, "total memory:    %d MiB\n", memory.TotalMemory()>>20)
	fmt.Fprintf(out, "sizes:\n")
	fmt.Fprintf(out, "  Compact[int16, error]: %d bytes (%v)\n", unsafe.Sizeof(outcome.Compact[int16, error]{}), outcome.SelectLayout[int16]())
	fmt.Fprintf(out, "  General[int64, error]: %d bytes (%v)\n", unsafe.Sizeof(outcome.General[int64, error]{}), outcome.SelectLayout[int64]())
	fmt.Fprintf(out, "  Box[error]:            %d bytes\n", unsafe.Sizeof(outcome.Box[error]{}))
	fmt.Fprintf(out, "heap: %v\n", heap.ReadStats())
	return nil
}
