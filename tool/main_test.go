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
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/0xsoniclabs/outcome/outcome"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"tool"}, args...))
	return out.String(), err
}

func TestAllCommands_Run(t *testing.T) {
	for _, cmd := range commands {
		t.Run(cmd.Name, func(t *testing.T) {
			os.Args = []string{"tool", cmd.Name, "--help"}
			main() // ensure commands can be invoked without error
		})
	}
}

func TestApp_UnknownFlagFails(t *testing.T) {
	_, err := run(t, "--nonexistent-flag")
	require.Error(t, err)
}

func TestApp_InvalidLogLevelIsRejected(t *testing.T) {
	_, err := run(t, "--log-level", "loud", "info")
	require.ErrorContains(t, err, "invalid log level")
}

func TestApp_LogLevelInstallsLogger(t *testing.T) {
	_, err := run(t, "--log-level", "debug", "info")
	require.NoError(t, err)
	require.NotNil(t, Logger().Check(zapcore.DebugLevel, "debug"))
}

func TestLayout_PrintsNativeLayout(t *testing.T) {
	out, err := run(t, "layout")
	require.NoError(t, err)
	require.Contains(t, out, outcome.Native.String())
	require.Equal(t, 1, strings.Count(out, "tag in byte"))
}

func TestLayout_AllPrintsEverySupportedLayout(t *testing.T) {
	out, err := run(t, "layout", "--all")
	require.NoError(t, err)

	for _, want := range []string{
		"little-endian/32-bit (tag in byte 0)",
		"little-endian/64-bit (tag in byte 0)",
		"big-endian/32-bit (tag in byte 3)",
		"big-endian/64-bit (tag in byte 7)",
		"size 2: offset 2, word 0100ffff",
		"size 3: offset 1, word 01ffffff",
		"size 3: offset 0, word ffffff01",
		"size 4: offset 4, word 01000000ffffffff",
		"size 1: offset 0, word ff00000000000001",
		"size 7: offset 1, word 01ffffffffffffff",
	} {
		require.Contains(t, out, want)
	}
}

func TestPrintLayout_RejectsUnsupportedLayout(t *testing.T) {
	var out bytes.Buffer
	err := printLayout(&out, outcome.Layout{Order: outcome.LittleEndian, WordSize: 2})
	require.ErrorContains(t, err, "unsupported word size")
}

func TestInfo_PrintsConfiguration(t *testing.T) {
	out, err := run(t, "info")
	require.NoError(t, err)
	require.Contains(t, out, "native layout:   "+outcome.Native.String())
	require.Contains(t, out, "contract checks: ")
	require.Contains(t, out, "total memory:")
	require.Contains(t, out, "heap: allocations:")
}

func TestStress_ReleasesEveryCell(t *testing.T) {
	out, err := run(t, "stress", "--count", "1000", "--moves", "3", "--workers", "4", "--batch", "10")
	require.NoError(t, err)
	require.Contains(t, out, "successes: 2000, failures: 2000, allocations: 2000, frees: 2000")
}

func TestStress_HandlesPartialBatches(t *testing.T) {
	out, err := run(t, "stress", "--count", "7", "--moves", "0", "--workers", "1", "--batch", "3")
	require.NoError(t, err)
	require.Contains(t, out, "successes: 4, failures: 3, allocations: 3, frees: 3")
}

func TestStress_RejectsInvalidConfiguration(t *testing.T) {
	_, err := run(t, "stress", "--workers", "0")
	require.ErrorContains(t, err, "invalid stress configuration")
}

func TestStressConfig_Check_RespectsMemoryBudget(t *testing.T) {
	config := stressConfig{count: 1, workers: 2, batch: 1000}
	require.ErrorContains(t, config.check(1000), "exceeding half")
	require.NoError(t, config.check(0))
	require.NoError(t, config.check(1<<40))
}
