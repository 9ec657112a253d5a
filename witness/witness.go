// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package witness extracts the minimal set of preimages needed to re-execute
// a single block without access to the full chain state.
package witness

import (
	"errors"
	"fmt"

	"github.com/pepyakin/rusty-cannon/backend"
	"github.com/pepyakin/rusty-cannon/backend/recording"
	"github.com/pepyakin/rusty-cannon/common"
	"github.com/pepyakin/rusty-cannon/ledger"
	"github.com/pepyakin/rusty-cannon/metrics"
	"github.com/pepyakin/rusty-cannon/state"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrGenesis is returned when a witness for the genesis block is requested.
// Genesis has no parent transition to dispute.
var ErrGenesis = errors.New("genesis block can not be challenged")

// Source provides the blocks and the state stores of a chain.
type Source interface {
	Block(number uint64) (*ledger.Block, error)
	// Backend returns a store serving the given root that the caller may
	// modify without affecting the source.
	Backend(root common.Hash) (backend.Backend, error)
}

var nodesRecorded = metrics.Auto().NewCounter(prometheus.CounterOpts{
	Name: "rusty_cannon_witness_nodes_recorded_total",
	Help: "Number of trie nodes recorded while replaying challenged blocks",
})

var bundlesCreated = metrics.Auto().NewCounter(prometheus.CounterOpts{
	Name: "rusty_cannon_witness_bundles_total",
	Help: "Number of witness bundles created",
})

// Recording lists the trie nodes read while replaying a block.
type Recording struct {
	// Preimages maps every node read to its content. Missing nodes are
	// reported with an empty value.
	Preimages common.Preimages
	// Order lists the hashes of Preimages by their first read. Re-executing
	// the block resolves the nodes in this order.
	Order []common.Hash
}

// Record replays the given block on top of its parent's state and returns
// every trie node read while doing so.
//
// The chain is trusted: a failing replay or a root differing from the one
// committed to by the block is a bug in the chain and causes a panic.
func Record(src Source, number uint64) (*Recording, error) {
	if number == 0 {
		return nil, ErrGenesis
	}
	block, err := src.Block(number)
	if err != nil {
		return nil, err
	}
	parent, err := src.Block(number - 1)
	if err != nil {
		return nil, err
	}
	store, err := src.Backend(parent.StateRoot)
	if err != nil {
		return nil, err
	}

	recorder := recording.NewBackend(store)
	s := state.WithRoot(recorder, parent.StateRoot)
	if err := ledger.Execute(s, block); err != nil {
		panic(fmt.Sprintf("replay of block %d failed: %v", number, err))
	}
	if got, want := s.Root(), block.StateRoot; got != want {
		panic(fmt.Sprintf("replay of block %d produced root %v, block commits to %v", number, got, want))
	}
	order := recorder.Reads()
	_, log := recorder.IntoInner()
	nodesRecorded.Add(float64(len(log)))
	return &Recording{Preimages: log, Order: order}, nil
}

// Bundle is the complete input for an independent re-execution of a block:
// the hash identifying the block, the expected resulting state root and
// every preimage the re-execution is going to request.
type Bundle struct {
	Input     common.Hash
	Output    common.Hash
	Block     []byte
	Preimages common.Preimages
}

// NewBundle creates the witness bundle for re-executing the given block. The
// preimages consist of the recorded trie nodes and the encodings of the block
// and its parent.
func NewBundle(src Source, number uint64) (*Bundle, error) {
	bundle, _, err := newBundle(src, number)
	return bundle, err
}

// newBundle creates the bundle of the given block together with the order in
// which a verifier requests its preimages: the block, its parent and then
// the trie nodes.
func newBundle(src Source, number uint64) (*Bundle, []common.Hash, error) {
	recorded, err := Record(src, number)
	if err != nil {
		return nil, nil, err
	}
	block, err := src.Block(number)
	if err != nil {
		return nil, nil, err
	}
	parent, err := src.Block(number - 1)
	if err != nil {
		return nil, nil, err
	}
	encoded := block.Encode()
	preimages := recorded.Preimages
	preimages.Merge(common.Preimages{
		block.Hash():  encoded,
		parent.Hash(): parent.Encode(),
	})
	order := append([]common.Hash{block.Hash(), parent.Hash()}, recorded.Order...)

	bundlesCreated.Inc()
	return &Bundle{
		Input:     block.Hash(),
		Output:    block.StateRoot,
		Block:     encoded,
		Preimages: preimages,
	}, order, nil
}

// Preimage returns the preimage of the given hash. Hashes recorded as
// missing are reported as not found.
func (b *Bundle) Preimage(hash common.Hash) ([]byte, bool) {
	data, found := b.Preimages[hash]
	return data, found && len(data) > 0
}

// Nodes returns the number of preimages with content.
func (b *Bundle) Nodes() int {
	count := 0
	for _, data := range b.Preimages {
		if len(data) > 0 {
			count++
		}
	}
	return count
}

// ErrCorruptBundle is returned by Validate for inconsistent bundles.
var ErrCorruptBundle = errors.New("corrupt bundle")

// Validate checks that the block matches the input hash, that the block is
// part of the preimages and that all preimages hash to their keys.
func (b *Bundle) Validate() error {
	if got := common.Keccak256(b.Block); got != b.Input {
		return fmt.Errorf("%w: block hashes to %v, input is %v", ErrCorruptBundle, got, b.Input)
	}
	if _, found := b.Preimage(b.Input); !found {
		return fmt.Errorf("%w: block is not among the preimages", ErrCorruptBundle)
	}
	if _, err := ledger.DecodeBlock(b.Block); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptBundle, err)
	}
	var errs []error
	for _, hash := range b.Preimages.Keys() {
		data := b.Preimages[hash]
		if len(data) == 0 {
			continue
		}
		if got := common.Keccak256(data); got != hash {
			errs = append(errs, fmt.Errorf("%w: preimage of %v hashes to %v", ErrCorruptBundle, hash, got))
		}
	}
	return errors.Join(errs...)
}
