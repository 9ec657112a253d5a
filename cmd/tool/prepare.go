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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pepyakin/rusty-cannon/backend"
	"github.com/pepyakin/rusty-cannon/chain"
	"github.com/pepyakin/rusty-cannon/witness"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var (
	outFlag = cli.StringFlag{
		Name:     "out",
		Usage:    "root directory receiving one bundle directory per block",
		Required: true,
	}
	archiveFlag = cli.BoolFlag{
		Name:  "archive",
		Usage: "additionally store each bundle as a single compressed archive",
	}
)

var PrepareCmd = cli.Command{
	Action: withDiagnostics(doPrepare),
	Name:   "prepare",
	Usage:  "builds the demo chain and writes the witness bundle of every block",
	Flags: append([]cli.Flag{
		&outFlag,
		&archiveFlag,
		&verboseFlag,
	}, storeFlags...),
}

func doPrepare(context *cli.Context) (err error) {
	logger := newLogger(context)
	out := context.String(outFlag.Name)

	c, err := chain.Demo()
	if err != nil {
		return err
	}
	if err := witness.Dump(out, c, logger); err != nil {
		return err
	}

	store, err := openStore(context)
	if err != nil {
		return err
	}
	if store != nil {
		defer func() {
			err = errors.Join(err, store.Close())
		}()
	}

	for lastGood := uint64(0); lastGood < c.BestBlockNumber(); lastGood++ {
		dir := witness.ChallengeDir(out, lastGood)
		bundle, err := witness.ReadDir(dir)
		if err != nil {
			return err
		}
		if context.Bool(archiveFlag.Name) {
			if err := writeArchive(filepath.Join(dir, witness.ArchiveFile), bundle); err != nil {
				return err
			}
		}
		if store != nil {
			if err := backend.CopyAll(store, bundle.Preimages); err != nil {
				return fmt.Errorf("failed to import bundle of block %d: %w", lastGood+1, err)
			}
			logger.WithFields(logrus.Fields{
				"block":     lastGood + 1,
				"preimages": bundle.Nodes(),
			}).Debug("Imported bundle")
		}
	}
	fmt.Fprintf(context.App.Writer, "Wrote %d bundles to %s\n", c.BestBlockNumber(), out)
	return nil
}

func writeArchive(path string, bundle *witness.Bundle) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()
	return bundle.WriteArchive(file)
}

func readArchive(path string) (*witness.Bundle, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return witness.ReadArchive(file)
}

// loadBundle reads a bundle from either a bundle directory or an archive.
func loadBundle(path string) (*witness.Bundle, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return witness.ReadDir(path)
	}
	return readArchive(path)
}
