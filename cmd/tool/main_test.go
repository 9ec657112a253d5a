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
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pepyakin/rusty-cannon/backend/ldb"
	"github.com/pepyakin/rusty-cannon/backend/sqlite"
	"github.com/pepyakin/rusty-cannon/chain"
	"github.com/pepyakin/rusty-cannon/host"
	"github.com/pepyakin/rusty-cannon/witness"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	out := &bytes.Buffer{}
	app.Writer = out
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{"tool"}, args...))
	return out.String(), err
}

func prepare(t *testing.T, args ...string) string {
	t.Helper()
	dir := t.TempDir()
	_, err := run(t, append([]string{"prepare", "--out", dir}, args...)...)
	require.NoError(t, err)
	return dir
}

func TestAllCommands_Run(t *testing.T) {
	for _, cmd := range commands {
		t.Run(cmd.Name, func(t *testing.T) {
			os.Args = []string{"tool", cmd.Name, "--help"}
			main() // ensure commands can be invoked without error
		})
	}
}

func TestMain_UnknownFlagIsAnError(t *testing.T) {
	_, err := run(t, "--nonexistent-flag")
	require.Error(t, err)
}

func TestPrepare_WritesOneBundlePerBlock(t *testing.T) {
	dir := prepare(t, "--archive")
	c, err := chain.Demo()
	require.NoError(t, err)
	for lastGood := uint64(0); lastGood < c.BestBlockNumber(); lastGood++ {
		bundleDir := witness.ChallengeDir(dir, lastGood)
		bundle, err := witness.ReadDir(bundleDir)
		require.NoError(t, err)
		block, err := c.Block(lastGood + 1)
		require.NoError(t, err)
		require.Equal(t, block.Hash(), bundle.Input)
		require.Equal(t, block.StateRoot, bundle.Output)

		archived, err := readArchive(filepath.Join(bundleDir, witness.ArchiveFile))
		require.NoError(t, err)
		require.Equal(t, bundle, archived)
	}
	_, err = os.Stat(witness.ChallengeDir(dir, c.BestBlockNumber()))
	require.True(t, os.IsNotExist(err))
}

func TestPrepare_OutputDirectoryIsRequired(t *testing.T) {
	_, err := run(t, "prepare")
	require.Error(t, err)
}

func TestReplay_VerifiesBundleDirectoriesAndArchives(t *testing.T) {
	dir := prepare(t, "--archive")
	bundleDir := witness.ChallengeDir(dir, 2)

	out, err := run(t, "replay", bundleDir)
	require.NoError(t, err)
	require.Contains(t, out, "Verified")

	_, err = run(t, "replay", filepath.Join(bundleDir, witness.ArchiveFile))
	require.NoError(t, err)
}

func TestReplay_DetectsTamperedOutput(t *testing.T) {
	dir := prepare(t)
	bundleDir := witness.ChallengeDir(dir, 1)
	require.NoError(t, os.WriteFile(filepath.Join(bundleDir, witness.OutputFile), make([]byte, 32), 0600))

	_, err := run(t, "replay", bundleDir)
	require.ErrorIs(t, err, host.ErrOutputMismatch)
}

func TestReplay_ExecutesBlocksFromPersistentStores(t *testing.T) {
	c, err := chain.Demo()
	require.NoError(t, err)
	block := c.BestBlock()

	for _, variant := range []string{string(ldb.VariantLevelDb), string(sqlite.VariantSqlite)} {
		t.Run(variant, func(t *testing.T) {
			db := t.TempDir()
			prepare(t, "--db-variant", variant, "--db-dir", db)

			out, err := run(t, "replay",
				"--db-variant", variant, "--db-dir", db,
				"--input", block.Hash().Hex(),
				"--expect", block.StateRoot.Hex(),
			)
			require.NoError(t, err)
			require.Contains(t, out, block.StateRoot.Hex())

			_, err = run(t, "replay",
				"--db-variant", variant, "--db-dir", db,
				"--input", block.Hash().Hex(),
				"--expect", block.Parent.Hex(),
			)
			require.ErrorIs(t, err, host.ErrOutputMismatch)
		})
	}
}

func TestReplay_UnknownInputDoesNotComplete(t *testing.T) {
	db := t.TempDir()
	prepare(t, "--db-variant", string(ldb.VariantLevelDb), "--db-dir", db)

	_, err := run(t, "replay",
		"--db-variant", string(ldb.VariantLevelDb), "--db-dir", db,
		"--input", "0x0000000000000000000000000000000000000000000000000000000000000001",
	)
	require.ErrorIs(t, err, host.ErrNotCompleted)
}

func TestReplay_RequiresBundleOrStore(t *testing.T) {
	_, err := run(t, "replay")
	require.Error(t, err)

	_, err = run(t, "replay", "--db-variant", "unknown")
	require.Error(t, err)
}

func TestInspect_PrintsBundleContent(t *testing.T) {
	dir := prepare(t)
	out, err := run(t, "inspect", witness.ChallengeDir(dir, 0))
	require.NoError(t, err)
	require.Contains(t, out, "Block:      1")
	require.Contains(t, out, "alice -> bob: 13")
	require.Contains(t, out, "bob -> alice: 37")

	_, err = run(t, "inspect")
	require.ErrorIs(t, err, errMissingArgument)
}

func TestSupply_IsConservedAcrossBlocks(t *testing.T) {
	out, err := run(t, "supply")
	require.NoError(t, err)
	c, err := chain.Demo()
	require.NoError(t, err)
	require.Equal(t, int(c.BestBlockNumber())+1, bytes.Count([]byte(out), []byte("total supply 400\n")))
}

func TestPackAndUnpack_PreserveBundles(t *testing.T) {
	dir := prepare(t)
	packed := witness.ChallengeDir(dir, 3)
	archive := filepath.Join(t.TempDir(), witness.ArchiveFile)
	restored := filepath.Join(t.TempDir(), "restored")

	_, err := run(t, "pack", packed, archive)
	require.NoError(t, err)
	_, err = run(t, "unpack", archive, restored)
	require.NoError(t, err)

	want, err := witness.ReadDir(packed)
	require.NoError(t, err)
	got, err := witness.ReadDir(restored)
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = run(t, "pack", packed)
	require.ErrorIs(t, err, errMissingArgument)
}
