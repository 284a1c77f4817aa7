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
	"net/http"
	_ "net/http/pprof"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func testFlags() Flags {
	return Flags{
		Port:       &cli.IntFlag{Name: "diagnostics"},
		CpuProfile: &cli.StringFlag{Name: "cpu-profile"},
		Trace:      &cli.StringFlag{Name: "trace"},
	}
}

func TestAddPerformanceDiagnosticsAction(t *testing.T) {
	dir := t.TempDir()
	called := false
	action := func(ctx *cli.Context) error {
		// profile file created
		require.FileExists(t, path.Join(dir, "cpu.profile"))
		require.FileExists(t, path.Join(dir, "tracer.out"))

		// server started
		var statusCode int
		var counter int
		const loops = 10
		var lastHttpGetErr error
		wait := 100 * time.Millisecond
		for statusCode != http.StatusOK && counter < loops {
			resp, err := http.Get("http://localhost:6060/debug/pprof/")
			lastHttpGetErr = err
			if resp != nil {
				statusCode = resp.StatusCode
				resp.Body.Close()
			}
			counter++
			time.Sleep(wait)
			wait *= 2
		}

		require.NoError(t, lastHttpGetErr)
		require.Equal(t, http.StatusOK, statusCode)

		called = true
		return nil
	}

	core, logs := observer.New(zap.InfoLevel)
	flags := testFlags()
	app := &cli.App{
		Action: AddPerformanceDiagnosticsAction(action, zap.New(core), flags),
		Flags:  flags.List(),
	}

	set := []string{"cmd", "--diagnostics", "6060", "--cpu-profile", path.Join(dir, "cpu.profile"), "--trace", path.Join(dir, "tracer.out")}
	require.NoError(t, app.Run(set))
	require.True(t, called, "action should be called")

	require.Equal(t, 1, logs.FilterMessage("starting diagnostic server").Len())
	require.Equal(t, 1, logs.FilterMessage("recording CPU profile").Len())
	require.Equal(t, 1, logs.FilterMessage("recording trace").Len())
}

func TestAddPerformanceDiagnosticsAction_WithoutFlagsOnlyRunsAction(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	called := false
	flags := testFlags()
	app := &cli.App{
		Action: AddPerformanceDiagnosticsAction(func(*cli.Context) error {
			called = true
			return nil
		}, zap.New(core), flags),
		Flags: flags.List(),
	}
	require.NoError(t, app.Run([]string{"cmd"}))
	require.True(t, called)
	require.Zero(t, logs.Len())
}

func TestAddPerformanceDiagnosticsAction_ReportsUnwritableProfile(t *testing.T) {
	flags := testFlags()
	app := &cli.App{
		Action: AddPerformanceDiagnosticsAction(func(*cli.Context) error {
			t.Fatal("action must not be called")
			return nil
		}, zap.NewNop(), flags),
		Flags: flags.List(),
	}
	missing := path.Join(t.TempDir(), "missing", "cpu.profile")
	require.ErrorContains(t, app.Run([]string{"cmd", "--cpu-profile", missing}), "could not create CPU profile")
}
