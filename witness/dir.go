// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package witness

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pepyakin/rusty-cannon/common"
	"github.com/sirupsen/logrus"
)

// Names of the fixed files of a bundle directory. Every preimage is stored
// in a file named by the 0x-prefixed lowercase hex of its hash.
const (
	InputFile  = "input"
	OutputFile = "output"
	BlockFile  = "block"
)

// ChallengeDir returns the directory of the bundle disputing the transition
// from block lastGood to its successor.
func ChallengeDir(root string, lastGood uint64) string {
	return filepath.Join(root, fmt.Sprintf("0_%d", lastGood))
}

// WriteDir stores the bundle in the given directory, creating it if needed.
func (b *Bundle) WriteDir(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	files := map[string][]byte{
		InputFile:  b.Input[:],
		OutputFile: b.Output[:],
		BlockFile:  b.Block,
	}
	for _, hash := range b.Preimages.Keys() {
		files[hash.Hex()] = b.Preimages[hash]
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}

// ReadDir loads a bundle written by WriteDir. Files not belonging to the
// bundle layout are ignored.
func ReadDir(dir string) (*Bundle, error) {
	input, err := readHashFile(filepath.Join(dir, InputFile))
	if err != nil {
		return nil, err
	}
	output, err := readHashFile(filepath.Join(dir, OutputFile))
	if err != nil {
		return nil, err
	}
	block, err := os.ReadFile(filepath.Join(dir, BlockFile))
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	preimages := common.Preimages{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "0x") {
			continue
		}
		hash, err := common.HashFromHex(entry.Name())
		if err != nil {
			return nil, fmt.Errorf("%w: unexpected file %s", ErrCorruptBundle, entry.Name())
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			data = []byte{}
		}
		preimages[hash] = data
	}
	return &Bundle{Input: input, Output: output, Block: block, Preimages: preimages}, nil
}

func readHashFile(path string) (common.Hash, error) {
	var res common.Hash
	data, err := os.ReadFile(path)
	if err != nil {
		return res, err
	}
	if len(data) != common.HashSize {
		return res, fmt.Errorf("%w: %s holds %d bytes, expected %d", ErrCorruptBundle, path, len(data), common.HashSize)
	}
	copy(res[:], data)
	return res, nil
}

// Chain is a Source with a known head.
type Chain interface {
	Source
	BestBlockNumber() uint64
}

// Dump writes the bundles of all transitions of the chain below root, one
// directory per disputed block as named by ChallengeDir.
func Dump(root string, chain Chain, logger *logrus.Logger) error {
	best := chain.BestBlockNumber()
	for lastGood := uint64(0); lastGood < best; lastGood++ {
		bundle, order, err := newBundle(chain, lastGood+1)
		if err != nil {
			return err
		}
		dir := ChallengeDir(root, lastGood)
		if err := bundle.WriteDir(dir); err != nil {
			return fmt.Errorf("failed to write bundle for block %d: %w", lastGood+1, err)
		}
		entry := logger.WithFields(logrus.Fields{
			"block":     lastGood + 1,
			"input":     bundle.Input,
			"output":    bundle.Output,
			"preimages": len(bundle.Preimages),
			"dir":       dir,
		})
		entry.Info("Wrote witness bundle")
		for i, hash := range order {
			entry.WithFields(logrus.Fields{"request": i, "hash": hash}).Debug("Expected preimage request")
		}
	}
	return nil
}
