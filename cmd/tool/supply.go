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
	"fmt"

	"github.com/pepyakin/rusty-cannon/chain"
	"github.com/pepyakin/rusty-cannon/common"
	"github.com/pepyakin/rusty-cannon/ledger"
	"github.com/urfave/cli/v2"
)

var SupplyCmd = cli.Command{
	Action: withDiagnostics(doSupply),
	Name:   "supply",
	Usage:  "prints the total supply of the genesis accounts after every block of the demo chain",
}

func doSupply(context *cli.Context) error {
	c, err := chain.Demo()
	if err != nil {
		return err
	}
	var accounts []common.Hash
	for _, account := range ledger.GenesisAccounts() {
		accounts = append(accounts, account.Address)
	}

	out := context.App.Writer
	for number := uint64(0); number <= c.BestBlockNumber(); number++ {
		block, err := c.Block(number)
		if err != nil {
			return err
		}
		s, err := c.StateAt(block.StateRoot)
		if err != nil {
			return err
		}
		total, err := ledger.TotalSupply(s, accounts)
		if err != nil {
			return fmt.Errorf("failed to compute supply of block %d: %w", number, err)
		}
		fmt.Fprintf(out, "Block %d: root %v, total supply %s\n", number, block.StateRoot, total.Dec())
	}
	return nil
}
