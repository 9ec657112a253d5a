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

	"github.com/pepyakin/rusty-cannon/ledger"
	"github.com/urfave/cli/v2"
)

var InspectCmd = cli.Command{
	Action:    withDiagnostics(doInspect),
	Name:      "inspect",
	Usage:     "validates a bundle and prints its content",
	ArgsUsage: "<bundle directory or archive>",
}

func doInspect(context *cli.Context) error {
	if context.Args().Len() != 1 {
		return fmt.Errorf("%w: bundle", errMissingArgument)
	}
	bundle, err := loadBundle(context.Args().Get(0))
	if err != nil {
		return err
	}
	if err := bundle.Validate(); err != nil {
		return err
	}
	block, err := ledger.DecodeBlock(bundle.Block)
	if err != nil {
		return err
	}

	out := context.App.Writer
	fmt.Fprintf(out, "Input:      %v\n", bundle.Input)
	fmt.Fprintf(out, "Output:     %v\n", bundle.Output)
	fmt.Fprintf(out, "Block:      %d\n", block.Number)
	fmt.Fprintf(out, "Parent:     %v\n", block.Parent)
	fmt.Fprintf(out, "Preimages:  %d (%d missing)\n", len(bundle.Preimages), len(bundle.Preimages)-bundle.Nodes())
	for i, txn := range block.Txns {
		fmt.Fprintf(out, "  %d: %s -> %s: %d\n", i, ledger.AccountName(txn.From), ledger.AccountName(txn.To), txn.Value)
	}
	return nil
}
