// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ledger

import (
	"errors"
	"fmt"
	"math"

	"github.com/pepyakin/rusty-cannon/state"
)

var (
	// ErrInsufficientFunds is returned if the sender of a transfer holds
	// less than the transferred value.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrBalanceOverflow is returned if a transfer would credit a balance
	// beyond the range of uint64.
	ErrBalanceOverflow = errors.New("balance overflow")
)

// Apply performs a single transfer. Accounts without a balance hold 0. The
// transfer is checked before anything is written, so a failing transfer
// leaves the state unchanged. A transfer to the sender itself does not change
// any balance.
func Apply(s *state.State, txn Txn) error {
	source, _, err := s.Get(txn.From)
	if err != nil {
		return err
	}
	if source < txn.Value {
		return fmt.Errorf("%w: %v holds %d, needs %d", ErrInsufficientFunds, txn.From, source, txn.Value)
	}
	dest, _, err := s.Get(txn.To)
	if err != nil {
		return err
	}
	if txn.From == txn.To {
		dest = source - txn.Value
	}
	if dest > math.MaxUint64-txn.Value {
		return fmt.Errorf("%w: %v holds %d, receives %d", ErrBalanceOverflow, txn.To, dest, txn.Value)
	}
	if err := s.Set(txn.From, source-txn.Value); err != nil {
		return err
	}
	return s.Set(txn.To, dest+txn.Value)
}

// Execute applies all transactions of the block in order. The first failing
// transaction aborts the execution; transactions applied before it remain in
// effect.
func Execute(s *state.State, block *Block) error {
	for i, txn := range block.Txns {
		if err := Apply(s, txn); err != nil {
			return fmt.Errorf("block %d, transaction %d: %w", block.Number, i, err)
		}
	}
	return nil
}
