// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package chain maintains a simulated chain of blocks together with the
// stores serving every state root it ever produced, so that any block can
// be re-executed later on.
package chain

import (
	"errors"
	"fmt"
	"slices"

	"github.com/pepyakin/rusty-cannon/backend"
	"github.com/pepyakin/rusty-cannon/backend/memory"
	"github.com/pepyakin/rusty-cannon/common"
	"github.com/pepyakin/rusty-cannon/ledger"
	"github.com/pepyakin/rusty-cannon/state"
)

var (
	// ErrUnknownBlock is returned for block numbers beyond the chain head.
	ErrUnknownBlock = errors.New("unknown block")
	// ErrUnknownState is returned for roots not produced by the chain.
	ErrUnknownState = errors.New("unknown state")
)

// Chain is an append-only sequence of blocks starting with the genesis
// block. Each state root is served by its own in-memory store, so later
// blocks never disturb earlier states. A Chain is not safe for concurrent
// use.
type Chain struct {
	blocks []*ledger.Block
	states map[common.Hash]*memory.Backend
}

// New creates a chain containing only the genesis block.
func New() (*Chain, error) {
	store := memory.NewBackend()
	genesis, s, err := ledger.BuildGenesis(store)
	if err != nil {
		return nil, err
	}
	return &Chain{
		blocks: []*ledger.Block{genesis},
		states: map[common.Hash]*memory.Backend{s.Root(): store},
	}, nil
}

// NewBlock applies the given transactions on top of the best block and
// appends the resulting block. If any transaction fails, the block is
// rejected and the chain is left unchanged.
func (c *Chain) NewBlock(txns []ledger.Txn) (uint64, error) {
	parent := c.BestBlock()
	store := c.states[parent.StateRoot].Clone()
	block := &ledger.Block{
		Number: parent.Number + 1,
		Parent: parent.Hash(),
		Txns:   slices.Clone(txns),
	}
	if len(block.Txns) == 0 {
		block.Txns = nil
	}
	s := state.WithRoot(store, parent.StateRoot)
	if err := ledger.Execute(s, block); err != nil {
		return 0, fmt.Errorf("block %d rejected: %w", block.Number, err)
	}
	block.StateRoot = s.Root()

	c.blocks = append(c.blocks, block)
	if _, found := c.states[block.StateRoot]; !found {
		c.states[block.StateRoot] = store
	}
	return block.Number, nil
}

// Len returns the number of blocks including genesis.
func (c *Chain) Len() int {
	return len(c.blocks)
}

// Block returns the block with the given number.
func (c *Chain) Block(number uint64) (*ledger.Block, error) {
	if number >= uint64(len(c.blocks)) {
		return nil, fmt.Errorf("%w: %d, best is %d", ErrUnknownBlock, number, c.BestBlockNumber())
	}
	return c.blocks[number], nil
}

// BestBlock returns the head of the chain.
func (c *Chain) BestBlock() *ledger.Block {
	return c.blocks[len(c.blocks)-1]
}

// BestBlockNumber returns the number of the head of the chain.
func (c *Chain) BestBlockNumber() uint64 {
	return c.BestBlock().Number
}

// Backend returns an independent copy of the store serving the given root.
func (c *Chain) Backend(root common.Hash) (backend.Backend, error) {
	store, found := c.states[root]
	if !found {
		return nil, fmt.Errorf("%w: %v", ErrUnknownState, root)
	}
	return store.Clone(), nil
}

// StateAt returns a state at the given root on top of an independent copy
// of its store.
func (c *Chain) StateAt(root common.Hash) (*state.State, error) {
	store, err := c.Backend(root)
	if err != nil {
		return nil, err
	}
	return state.WithRoot(store, root), nil
}

// Preimages returns the encoding of every block keyed by its hash.
func (c *Chain) Preimages() common.Preimages {
	res := make(common.Preimages, len(c.blocks))
	for _, block := range c.blocks {
		res[block.Hash()] = block.Encode()
	}
	return res
}
