// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package diagnostics provides the profiling facilities shared by the
// command line tools: a pprof and metrics HTTP server, CPU profiles and
// execution traces.
package diagnostics

import (
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"strings"
	"sync"

	"github.com/pepyakin/rusty-cannon/metrics"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// Options selects the diagnostics to run. Zero values disable the
// respective facility.
type Options struct {
	// Port of the diagnostic server on localhost.
	Port int
	// CpuProfile is the file receiving the CPU profile.
	CpuProfile string
	// Trace is the file receiving the execution trace.
	Trace string
}

// AddPerformanceDiagnosticsAction runs the action with the diagnostics
// selected by the given flags.
func AddPerformanceDiagnosticsAction(action cli.ActionFunc, diagnosticsFlag *cli.IntFlag, cpuProfileFlag, traceFlag *cli.StringFlag) cli.ActionFunc {
	return func(context *cli.Context) (err error) {
		stop, err := Start(Options{
			Port:       context.Int(diagnosticsFlag.Names()[0]),
			CpuProfile: strings.TrimSpace(context.String(cpuProfileFlag.Names()[0])),
			Trace:      strings.TrimSpace(context.String(traceFlag.Names()[0])),
		})
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, stop())
		}()
		return action(context)
	}
}

// Start enables the selected diagnostics. The returned function ends
// profiling and tracing and closes their files; the server keeps running
// until the process exits.
func Start(options Options) (func() error, error) {
	startDiagnosticServer(options.Port)

	var stops []func() error
	stop := func() error {
		var errs []error
		for i := len(stops) - 1; i >= 0; i-- {
			errs = append(errs, stops[i]())
		}
		return errors.Join(errs...)
	}

	if options.CpuProfile != "" {
		file, err := startCpuProfiler(options.CpuProfile)
		if err != nil {
			return nil, err
		}
		stops = append(stops, func() error {
			pprof.StopCPUProfile()
			return file.Close()
		})
	}
	if options.Trace != "" {
		file, err := startTracer(options.Trace)
		if err != nil {
			return nil, errors.Join(err, stop())
		}
		stops = append(stops, func() error {
			trace.Stop()
			return file.Close()
		})
	}
	return stop, nil
}

var registerMetrics sync.Once

func startDiagnosticServer(port int) {
	if port <= 0 || port >= (1<<16) {
		return
	}
	addr := fmt.Sprintf("localhost:%d", port)
	logrus.WithField("addr", "http://"+addr).Info("Starting diagnostic server, see /debug/pprof/ and /metrics")
	logrus.Info("Block and mutex sampling rate is set to 100%, which may impact overall performance")
	registerMetrics.Do(func() {
		http.Handle("/metrics", metrics.Handler())
	})
	go func() {
		logrus.WithError(http.ListenAndServe(addr, nil)).Warn("Diagnostic server stopped")
	}()
	runtime.SetBlockProfileRate(1)
	runtime.SetMutexProfileFraction(1)
}

func startCpuProfiler(filename string) (*os.File, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(file); err != nil {
		return nil, errors.Join(fmt.Errorf("could not start CPU profile: %w", err), file.Close())
	}
	return file, nil
}

func startTracer(filename string) (*os.File, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace file: %w", err)
	}
	if err := trace.Start(file); err != nil {
		return nil, errors.Join(fmt.Errorf("failed to start trace: %w", err), file.Close())
	}
	return file, nil
}
