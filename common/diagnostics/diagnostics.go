// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package diagnostics

import (
	"fmt"
	"net/http"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// Flags names the command line flags controlling performance diagnostics.
type Flags struct {
	Port       *cli.IntFlag    // < port of the diagnostic server, disabled if 0
	CpuProfile *cli.StringFlag // < CPU profile target file, disabled if empty
	Trace      *cli.StringFlag // < execution trace target file, disabled if empty
}

// List returns the flags for registration with a cli.App or cli.Command.
func (f Flags) List() []cli.Flag {
	return []cli.Flag{f.Port, f.CpuProfile, f.Trace}
}

// AddPerformanceDiagnosticsAction wraps an action such that, depending on the
// given flags, a diagnostic server is started, and a CPU profile and an
// execution trace are recorded while the action runs.
func AddPerformanceDiagnosticsAction(action cli.ActionFunc, log *zap.Logger, flags Flags) cli.ActionFunc {
	return func(context *cli.Context) error {
		startDiagnosticServer(log, context.Int(flags.Port.Name))

		cpuProfileFileName := context.String(flags.CpuProfile.Name)
		if strings.TrimSpace(cpuProfileFileName) != "" {
			if err := startCpuProfiler(cpuProfileFileName); err != nil {
				return err
			}
			log.Info("recording CPU profile", zap.String("file", cpuProfileFileName))
			defer stopCpuProfiler()
		}

		traceFileName := context.String(flags.Trace.Name)
		if strings.TrimSpace(traceFileName) != "" {
			if err := startTracer(traceFileName); err != nil {
				return err
			}
			log.Info("recording trace", zap.String("file", traceFileName))
			defer stopTracer()
		}

		return action(context)
	}
}

func startDiagnosticServer(log *zap.Logger, port int) {
	if port <= 0 || port >= (1<<16) {
		return
	}
	addr := fmt.Sprintf("localhost:%d", port)
	log.Info("starting diagnostic server",
		zap.String("url", "http://"+addr),
		zap.String("usage", "https://pkg.go.dev/net/http/pprof#hdr-Usage_examples"),
	)
	log.Warn("block and mutex sampling rate set to 100% for diagnostics")
	go func() {
		if err := http.ListenAndServe(addr, nil); err != nil {
			log.Error("diagnostic server stopped", zap.Error(err))
		}
	}()
	runtime.SetBlockProfileRate(1)
	runtime.SetMutexProfileFraction(1)
}

func startCpuProfiler(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		return fmt.Errorf("could not start CPU profile: %w", err)
	}
	return nil
}

func stopCpuProfiler() {
	pprof.StopCPUProfile()
}

func startTracer(filename string) error {
	traceFile, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create trace file: %w", err)
	}
	if err := trace.Start(traceFile); err != nil {
		return fmt.Errorf("failed to start trace: %w", err)
	}
	return nil
}

func stopTracer() {
	trace.Stop()
}
