// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package host runs the verifier guest in-process against an emulated
// memory-mapped interface and answers its preimage requests.
package host

import (
	"errors"
	"fmt"

	"github.com/pepyakin/rusty-cannon/backend"
	"github.com/pepyakin/rusty-cannon/common"
	"github.com/pepyakin/rusty-cannon/common/future"
	"github.com/pepyakin/rusty-cannon/guest"
	"github.com/pepyakin/rusty-cannon/iommu"
	"github.com/pepyakin/rusty-cannon/metrics"
	"github.com/pepyakin/rusty-cannon/witness"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNotCompleted is returned by Verify if the guest halted without
	// publishing an output.
	ErrNotCompleted = errors.New("guest did not complete")
	// ErrOutputMismatch is returned by Verify if the guest's output differs
	// from the expected root.
	ErrOutputMismatch = errors.New("output mismatch")
)

var preimageRequests = metrics.Auto().NewCounter(prometheus.CounterOpts{
	Name: "rusty_cannon_host_preimage_requests_total",
	Help: "Number of preimage requests received from guests",
})

var preimageMisses = metrics.Auto().NewCounter(prometheus.CounterOpts{
	Name: "rusty_cannon_host_preimage_misses_total",
	Help: "Number of preimage requests that could not be answered",
})

var preimageBytes = metrics.Auto().NewCounter(prometheus.CounterOpts{
	Name: "rusty_cannon_host_preimage_bytes_total",
	Help: "Number of preimage bytes served to guests",
})

// PreimageSource answers preimage requests. *witness.Bundle is one.
type PreimageSource interface {
	Preimage(hash common.Hash) ([]byte, bool)
}

// Outcome summarizes a guest run.
type Outcome struct {
	// Root is the published output, valid if Completed.
	Root common.Hash
	// Completed is true if the guest wrote the completion marker.
	Completed bool
	// Halt describes why the guest stopped without completing.
	Halt     error
	Requests int
	Misses   int
}

// Emulator runs guests.
type Emulator struct {
	logger *logrus.Logger
}

// NewEmulator creates an emulator logging to the given logger.
func NewEmulator(logger *logrus.Logger) *Emulator {
	return &Emulator{logger: logger}
}

// Run executes the guest for the given input hash to completion. The guest
// runs on its own goroutine; its requests are served synchronously from
// the source.
func (e *Emulator) Run(input common.Hash, source PreimageSource) Outcome {
	mem := iommu.NewMemory()
	mem.SetInput(input)

	var outcome Outcome
	logger := e.logger.WithField("input", input)
	trap := func() {
		hash := mem.PendingRequest()
		outcome.Requests++
		preimageRequests.Inc()
		data, found := source.Preimage(hash)
		if !found {
			outcome.Misses++
			preimageMisses.Inc()
			logger.WithField("hash", hash).Debug("Preimage not available")
			mem.Answer(nil)
			return
		}
		preimageBytes.Add(float64(len(data)))
		mem.Answer(data)
	}
	channel := iommu.NewMemoryChannel(mem, trap)

	done := future.Spawn(func() (struct{}, error) {
		guest.Main(channel)
		return struct{}{}, nil
	})
	_, outcome.Halt = done.Await().Get()

	outcome.Root, outcome.Completed = mem.Result()
	if !outcome.Completed && outcome.Halt == nil {
		outcome.Halt = iommu.ErrAbnormalHalt
	}
	logger.WithFields(logrus.Fields{
		"completed": outcome.Completed,
		"root":      outcome.Root,
		"requests":  outcome.Requests,
		"misses":    outcome.Misses,
	}).Debug("Guest finished")
	return outcome
}

// Verify runs the guest on the bundle and checks that it reproduces the
// bundle's output.
func (e *Emulator) Verify(bundle *witness.Bundle) error {
	outcome := e.Run(bundle.Input, bundle)
	if !outcome.Completed {
		return fmt.Errorf("%w: %w", ErrNotCompleted, outcome.Halt)
	}
	if outcome.Root != bundle.Output {
		return fmt.Errorf("%w: got %v, expected %v", ErrOutputMismatch, outcome.Root, bundle.Output)
	}
	return nil
}

// FromBackend serves preimages from a content store. Read failures are
// logged and answered as unknown.
func FromBackend(b backend.Backend, logger *logrus.Logger) PreimageSource {
	return backendSource{backend: b, logger: logger}
}

type backendSource struct {
	backend backend.Backend
	logger  *logrus.Logger
}

func (s backendSource) Preimage(hash common.Hash) ([]byte, bool) {
	data, err := s.backend.Get(hash)
	if err != nil {
		s.logger.WithError(err).WithField("hash", hash).Warn("Failed to read preimage")
		return nil, false
	}
	return data, len(data) > 0
}
