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

	"github.com/pepyakin/rusty-cannon/host"
	"github.com/urfave/cli/v2"
)

var (
	inputFlag = cli.StringFlag{
		Name:  "input",
		Usage: "hash of the block to re-execute from a content store",
	}
	expectFlag = cli.StringFlag{
		Name:  "expect",
		Usage: "state root the re-execution is expected to produce, unchecked if empty",
	}
)

var ReplayCmd = cli.Command{
	Action:    withDiagnostics(doReplay),
	Name:      "replay",
	Usage:     "re-executes a block in the emulated verifier",
	ArgsUsage: "[<bundle directory or archive>]",
	Flags: append([]cli.Flag{
		&inputFlag,
		&expectFlag,
		&verboseFlag,
	}, storeFlags...),
}

func doReplay(context *cli.Context) error {
	logger := newLogger(context)
	emulator := host.NewEmulator(logger)

	if context.Args().Len() == 1 {
		bundle, err := loadBundle(context.Args().Get(0))
		if err != nil {
			return err
		}
		if err := emulator.Verify(bundle); err != nil {
			return err
		}
		fmt.Fprintf(context.App.Writer, "Verified %v: %v\n", bundle.Input, bundle.Output)
		return nil
	}
	if context.Args().Len() > 1 {
		return fmt.Errorf("expected at most one bundle, got %d", context.Args().Len())
	}

	store, err := openStore(context)
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("either a bundle or --%s is required", dbVariantFlag.Name)
	}
	defer store.Close()

	input, err := hashFlag(context, &inputFlag)
	if err != nil {
		return err
	}
	outcome := emulator.Run(input, host.FromBackend(store, logger))
	if !outcome.Completed {
		return fmt.Errorf("%w: %w", host.ErrNotCompleted, outcome.Halt)
	}
	if context.IsSet(expectFlag.Name) {
		expected, err := hashFlag(context, &expectFlag)
		if err != nil {
			return err
		}
		if outcome.Root != expected {
			return fmt.Errorf("%w: got %v, expected %v", host.ErrOutputMismatch, outcome.Root, expected)
		}
	}
	fmt.Fprintf(context.App.Writer, "Executed %v: %v (%d preimages requested)\n", input, outcome.Root, outcome.Requests)
	return nil
}
