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
	_ "net/http/pprof"
	"os"

	"github.com/0xsoniclabs/outcome/common/diagnostics"
	"github.com/urfave/cli/v2"
)

// Run using
//  go run ./tool <command> <flags>

var (
	diagnosticsFlag = cli.IntFlag{
		Name:  "diagnostic-port",
		Usage: "enable hosting of a realtime diagnostic server by providing a port",
		Value: 0,
	}
	cpuProfileFlag = cli.StringFlag{
		Name:  "cpuprofile",
		Usage: "sets the target file for storing CPU profiles to, disabled if empty",
		Value: "",
	}
	traceFlag = cli.StringFlag{
		Name:  "tracefile",
		Usage: "sets the target file for traces to, disabled if empty",
		Value: "",
	}
	logLevelFlag = cli.StringFlag{
		Name:  "log-level",
		Usage: "sets the minimum level of log messages (debug, info, warn, error)",
		Value: "info",
	}
)

var diagnosticFlags = diagnostics.Flags{
	Port:       &diagnosticsFlag,
	CpuProfile: &cpuProfileFlag,
	Trace:      &traceFlag,
}

var commands = []*cli.Command{
	&LayoutCmd,
	&StressCmd,
	&InfoCmd,
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "tool",
		Usage:     "outcome layout and allocation toolbox",
		Copyright: "(c) 2025 Sonic Operations Ltd",
		Flags:     append(diagnosticFlags.List(), &logLevelFlag),
		Before:    setupLogger,
		After: func(*cli.Context) error {
			_ = Logger().Sync()
			return nil
		},
		Commands: commands,
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// addPerformanceDiagnostics enables the diagnostics configured by the global
// flags for the given action.
func addPerformanceDiagnostics(action cli.ActionFunc) cli.ActionFunc {
	return func(context *cli.Context) error {
		return diagnostics.AddPerformanceDiagnosticsAction(action, Logger(), diagnosticFlags)(context)
	}
}
