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
	"errors"
	"fmt"
	"time"
	"unsafe"

	"github.com/0xsoniclabs/outcome/common/future"
	"github.com/0xsoniclabs/outcome/common/heap"
	"github.com/0xsoniclabs/outcome/common/result"
	"github.com/0xsoniclabs/outcome/outcome"
	"github.com/pbnjay/memory"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var StressCmd = cli.Command{
	Action: addPerformanceDiagnostics(stress),
	Name:   "stress",
	Usage:  "creates, moves and releases outcomes concurrently and checks that every error cell is freed",
	Flags: []cli.Flag{
		&stressCountFlag,
		&stressMovesFlag,
		&stressWorkersFlag,
		&stressBatchFlag,
	},
}

var (
	stressCountFlag = cli.IntFlag{
		Name:  "count",
		Usage: "number of outcomes created by each worker",
		Value: 100_000,
	}
	stressMovesFlag = cli.IntFlag{
		Name:  "moves",
		Usage: "number of times each outcome is moved before it is released",
		Value: 10,
	}
	stressWorkersFlag = cli.IntFlag{
		Name:  "workers",
		Usage: "number of concurrent workers",
		Value: 4,
	}
	stressBatchFlag = cli.IntFlag{
		Name:  "batch",
		Usage: "number of outcomes each worker keeps alive before releasing them",
		Value: 1000,
	}
)

type stressConfig struct {
	count   int
	moves   int
	workers int
	batch   int
}

type stressReport struct {
	successes int
	failures  int
}

func stress(context *cli.Context) error {
	config := stressConfig{
		count:   context.Int(stressCountFlag.Name),
		moves:   context.Int(stressMovesFlag.Name),
		workers: context.Int(stressWorkersFlag.Name),
		batch:   context.Int(stressBatchFlag.Name),
	}
	if err := config.check(memory.TotalMemory()); err != nil {
		return err
	}

	log := Logger()
	log.Info("starting stress test",
		zap.Int("workers", config.workers),
		zap.Int("count", config.count),
		zap.Int("moves", config.moves),
	)
	start := time.Now()
	before := heap.ReadStats()

	report, err := runStress(config)
	if err != nil {
		return err
	}

	after := heap.ReadStats()
	allocated := after.Allocations - before.Allocations
	freed := after.Frees - before.Frees
	log.Info("stress test finished",
		zap.Duration("duration", time.Since(start)),
		zap.Int("successes", report.successes),
		zap.Int("failures", report.failures),
		zap.Uint64("allocations", allocated),
		zap.Uint64("frees", freed),
	)
	fmt.Fprintf(context.App.Writer, "successes: %d, failures: %d, allocations: %d, frees: %d\n",
		report.successes, report.failures, allocated, freed)
	if allocated != freed {
		return fmt.Errorf("leaked %d error cells", allocated-freed)
	}
	if allocated != uint64(report.failures) {
		return fmt.Errorf("expected %d allocations, got %d", report.failures, allocated)
	}
	return nil
}

// check verifies the configuration and that the cells kept alive by all
// workers at the same time fit into half of the given amount of memory. A
// total of 0 means the amount of memory is unknown.
func (c stressConfig) check(total uint64) error {
	if c.count < 0 || c.moves < 0 || c.workers <= 0 || c.batch <= 0 {
		return fmt.Errorf("invalid stress configuration: count %d, moves %d, workers %d, batch %d",
			c.count, c.moves, c.workers, c.batch)
	}
	cellSize := uint64(unsafe.Sizeof(heap.Cell[string]{}))
	required := uint64(c.workers) * uint64(c.batch) * cellSize
	if total > 0 && required > total/2 {
		return fmt.Errorf("batches require %d bytes, exceeding half of the %d bytes of memory", required, total)
	}
	return nil
}

func runStress(config stressConfig) (stressReport, error) {
	futures := make([]future.Future[result.Result[stressReport]], config.workers)
	for i := range futures {
		futures[i] = future.Go(func() result.Result[stressReport] {
			report, err := stressWorker(i, config)
			return result.Of(report, err)
		})
	}

	var total stressReport
	var errs []error
	for _, res := range future.AwaitAll(futures) {
		report, err := res.Get()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		total.successes += report.successes
		total.failures += report.failures
	}
	return total, errors.Join(errs...)
}

// stressWorker alternates between successful and failed compact outcomes.
// Each outcome is moved the configured number of times, verified, and
// released once its batch is complete.
func stressWorker(worker int, config stressConfig) (stressReport, error) {
	var report stressReport
	batch := make([]outcome.Compact[int16, string], 0, config.batch)
	release := func() {
		for i := range batch {
			batch[i].Release()
		}
		batch = batch[:0]
	}
	defer release()

	for i := range config.count {
		var current outcome.Compact[int16, string]
		if i%2 == 0 {
			current = outcome.NewCompact[int16, string](int16(i))
		} else {
			current = outcome.CompactFailure[int16](fmt.Sprintf("worker %d failure %d", worker, i))
		}
		for range config.moves {
			next := current.Move()
			if !current.Poisoned() {
				return report, fmt.Errorf("worker %d: moved-from outcome %d is not poisoned", worker, i)
			}
			current = next
		}

		value, handle := current.Get()
		switch {
		case i%2 == 0 && (handle.Failed() || value != int16(i)):
			return report, fmt.Errorf("worker %d: outcome %d lost its value", worker, i)
		case i%2 == 1 && !handle.Failed():
			return report, fmt.Errorf("worker %d: outcome %d lost its error", worker, i)
		case handle.Failed():
			report.failures++
		default:
			report.successes++
		}

		batch = append(batch, current.Move())
		if len(batch) == config.batch {
			release()
		}
	}
	return report, nil
}
