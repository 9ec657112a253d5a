// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package ledger defines the transactions and blocks of the balance-transfer
// state machine, their canonical encoding and the state-transition function
// applying them.
package ledger

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pepyakin/rusty-cannon/common"
)

// ErrMalformedBlock is returned if a byte sequence is not a canonically
// encoded block.
var ErrMalformedBlock = errors.New("malformed block")

// Txn transfers Value from one account to another.
type Txn struct {
	From  common.Hash
	To    common.Hash
	Value uint64
}

// NewTxn creates a transfer of value from one account to another.
func NewTxn(from, to common.Hash, value uint64) Txn {
	return Txn{From: from, To: to, Value: value}
}

func (t Txn) String() string {
	return fmt.Sprintf("%v -> %v: %d", t.From, t.To, t.Value)
}

// Block is an ordered list of transactions linked to its parent by hash. The
// StateRoot is the root of the state after applying all transactions to the
// parent's state.
type Block struct {
	Number    uint64
	Parent    common.Hash
	StateRoot common.Hash
	Txns      []Txn
}

// Encode returns the canonical RLP encoding of the block, a list of the form
// [number, parent, state_root, [[from, to, value], ...]].
func (b *Block) Encode() []byte {
	data, err := rlp.EncodeToBytes(b)
	if err != nil {
		panic(fmt.Sprintf("failed to encode block %d: %v", b.Number, err))
	}
	return data
}

// Hash returns the Keccak-256 hash of the canonical encoding, identifying the
// block in the content store.
func (b *Block) Hash() common.Hash {
	return common.Keccak256(b.Encode())
}

// DecodeBlock parses a canonically encoded block. Trailing data is rejected.
func DecodeBlock(data []byte) (*Block, error) {
	block := new(Block)
	if err := rlp.DecodeBytes(data, block); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedBlock, err)
	}
	if len(block.Txns) == 0 {
		block.Txns = nil
	}
	return block, nil
}
