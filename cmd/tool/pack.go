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

	"github.com/pepyakin/rusty-cannon/witness"
	"github.com/urfave/cli/v2"
)

var PackCmd = cli.Command{
	Action:    withDiagnostics(doPack),
	Name:      "pack",
	Usage:     "converts a bundle directory into an archive",
	ArgsUsage: "<bundle directory> <archive>",
}

var UnpackCmd = cli.Command{
	Action:    withDiagnostics(doUnpack),
	Name:      "unpack",
	Usage:     "converts an archive into a bundle directory",
	ArgsUsage: "<archive> <bundle directory>",
}

func doPack(context *cli.Context) error {
	if context.Args().Len() != 2 {
		return fmt.Errorf("%w: expected bundle directory and archive", errMissingArgument)
	}
	bundle, err := witness.ReadDir(context.Args().Get(0))
	if err != nil {
		return err
	}
	return writeArchive(context.Args().Get(1), bundle)
}

func doUnpack(context *cli.Context) error {
	if context.Args().Len() != 2 {
		return fmt.Errorf("%w: expected archive and bundle directory", errMissingArgument)
	}
	bundle, err := readArchive(context.Args().Get(0))
	if err != nil {
		return err
	}
	return bundle.WriteDir(context.Args().Get(1))
}
