// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package chain

import (
	"fmt"

	"github.com/pepyakin/rusty-cannon/ledger"
)

// DemoBlocks lists the transactions of the blocks following genesis in the
// demo chain.
func DemoBlocks() [][]ledger.Txn {
	return [][]ledger.Txn{
		{
			ledger.NewTxn(ledger.Alice, ledger.Bob, 13),
			ledger.NewTxn(ledger.Bob, ledger.Alice, 37),
		},
		{
			ledger.NewTxn(ledger.Alice, ledger.Alice, 2),
			ledger.NewTxn(ledger.Bob, ledger.Alice, 2),
			ledger.NewTxn(ledger.Eve, ledger.Alice, 8),
		},
		{
			ledger.NewTxn(ledger.Dave, ledger.Alice, 1),
			ledger.NewTxn(ledger.Dave, ledger.Alice, 1),
			ledger.NewTxn(ledger.Dave, ledger.Alice, 1),
			ledger.NewTxn(ledger.Bob, ledger.Dave, 2),
		},
		{
			ledger.NewTxn(ledger.Charlie, ledger.Alice, 1),
		},
	}
}

// Demo builds the demo chain: genesis followed by DemoBlocks.
func Demo() (*Chain, error) {
	c, err := New()
	if err != nil {
		return nil, err
	}
	for i, txns := range DemoBlocks() {
		if _, err := c.NewBlock(txns); err != nil {
			return nil, fmt.Errorf("failed to build demo block %d: %w", i+1, err)
		}
	}
	return c, nil
}
