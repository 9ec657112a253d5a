// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package guest implements the verifier program. It re-executes a single
// block using only preimages supplied by the host and publishes the
// resulting state root.
package guest

import (
	"errors"
	"fmt"

	"github.com/pepyakin/rusty-cannon/backend/oracle"
	"github.com/pepyakin/rusty-cannon/common"
	"github.com/pepyakin/rusty-cannon/iommu"
	"github.com/pepyakin/rusty-cannon/ledger"
	"github.com/pepyakin/rusty-cannon/state"
)

// ErrInvalidParent is returned if the parent resolved for a block is not its
// immediate predecessor.
var ErrInvalidParent = errors.New("invalid parent block")

// Run resolves the block identified by the channel's input hash and its
// parent, executes the block on top of the parent's state and returns the
// resulting root.
func Run(channel iommu.Channel) (common.Hash, error) {
	store := oracle.NewBackend(channel)

	block, err := lookupBlock(store, channel.InputHash())
	if err != nil {
		return common.Hash{}, err
	}
	parent, err := lookupBlock(store, block.Parent)
	if err != nil {
		return common.Hash{}, fmt.Errorf("parent of block %d: %w", block.Number, err)
	}
	if parent.Number+1 != block.Number {
		return common.Hash{}, fmt.Errorf("%w: block %d refers to block %d", ErrInvalidParent, block.Number, parent.Number)
	}

	s := state.WithRoot(store, parent.StateRoot)
	if err := ledger.Execute(s, block); err != nil {
		return common.Hash{}, err
	}
	return s.Root(), nil
}

func lookupBlock(store *oracle.Backend, hash common.Hash) (*ledger.Block, error) {
	data, err := store.Preimage(hash)
	if err != nil {
		return nil, err
	}
	return ledger.DecodeBlock(data)
}

// Main is the entrypoint of the verifier. Any failure halts the guest
// without publishing an output.
func Main(channel iommu.Channel) {
	root, err := Run(channel)
	if err != nil {
		channel.Halt()
		return
	}
	channel.Output(root)
}
