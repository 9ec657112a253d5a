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
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pepyakin/rusty-cannon/backend"
	"github.com/pepyakin/rusty-cannon/backend/memory"
	"github.com/pepyakin/rusty-cannon/chain"
	"github.com/pepyakin/rusty-cannon/common"
	"github.com/pepyakin/rusty-cannon/ledger"
	"github.com/pepyakin/rusty-cannon/state"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func demo(t *testing.T) *chain.Chain {
	t.Helper()
	c, err := chain.Demo()
	require.NoError(t, err)
	return c
}

// replay re-executes the bundle's block using nothing but its preimages.
func replay(t *testing.T, bundle *Bundle) common.Hash {
	t.Helper()
	store := memory.NewBackend()
	require.NoError(t, backend.CopyAll(store, bundle.Preimages))

	data, found := bundle.Preimage(bundle.Input)
	require.True(t, found)
	block, err := ledger.DecodeBlock(data)
	require.NoError(t, err)
	data, found = bundle.Preimage(block.Parent)
	require.True(t, found)
	parent, err := ledger.DecodeBlock(data)
	require.NoError(t, err)

	s := state.WithRoot(store, parent.StateRoot)
	require.NoError(t, ledger.Execute(s, block))
	return s.Root()
}

func TestNewBundle_IsSufficientForReplay(t *testing.T) {
	c := demo(t)
	for number := uint64(1); number <= c.BestBlockNumber(); number++ {
		bundle, err := NewBundle(c, number)
		require.NoError(t, err)
		require.NoError(t, bundle.Validate())

		block, err := c.Block(number)
		require.NoError(t, err)
		require.Equal(t, block.Hash(), bundle.Input)
		require.Equal(t, block.StateRoot, bundle.Output)
		require.Equal(t, block.Encode(), bundle.Block)
		require.Equal(t, block.StateRoot, replay(t, bundle))
	}
}

type countingBackend struct {
	backend.Backend
	reads map[common.Hash]struct{}
}

func (b *countingBackend) Get(key common.Hash) ([]byte, error) {
	b.reads[key] = struct{}{}
	return b.Backend.Get(key)
}

type instrumentedSource struct {
	*chain.Chain
	reads map[common.Hash]struct{}
}

func (s *instrumentedSource) Backend(root common.Hash) (backend.Backend, error) {
	inner, err := s.Chain.Backend(root)
	if err != nil {
		return nil, err
	}
	return &countingBackend{Backend: inner, reads: s.reads}, nil
}

func TestRecord_ContainsExactlyTheReadNodes(t *testing.T) {
	c := demo(t)
	for number := uint64(1); number <= c.BestBlockNumber(); number++ {
		src := &instrumentedSource{Chain: c, reads: map[common.Hash]struct{}{}}
		recorded, err := Record(src, number)
		require.NoError(t, err)
		require.NotEmpty(t, recorded.Preimages)

		require.Len(t, recorded.Preimages, len(src.reads))
		for hash := range src.reads {
			require.Contains(t, recorded.Preimages, hash)
		}
	}
}

func TestRecord_OrderListsEveryNodeOnce(t *testing.T) {
	c := demo(t)
	for number := uint64(1); number <= c.BestBlockNumber(); number++ {
		recorded, err := Record(c, number)
		require.NoError(t, err)
		require.Len(t, recorded.Order, len(recorded.Preimages))
		seen := map[common.Hash]bool{}
		for _, hash := range recorded.Order {
			require.Contains(t, recorded.Preimages, hash)
			require.False(t, seen[hash], "%v listed twice", hash)
			seen[hash] = true
		}

		parent, err := c.Block(number - 1)
		require.NoError(t, err)
		require.Equal(t, parent.StateRoot, recorded.Order[0])
	}
}

func TestNewBundle_RequestOrderStartsWithBlockAndParent(t *testing.T) {
	c := demo(t)
	bundle, order, err := newBundle(c, 3)
	require.NoError(t, err)
	parent, err := c.Block(2)
	require.NoError(t, err)

	require.Equal(t, bundle.Input, order[0])
	require.Equal(t, parent.Hash(), order[1])
	require.Len(t, order, len(bundle.Preimages))
	for _, hash := range order {
		_, found := bundle.Preimage(hash)
		require.True(t, found)
	}
}

func TestRecord_RecordedValuesAreThePreimages(t *testing.T) {
	recorded, err := Record(demo(t), 2)
	require.NoError(t, err)
	for hash, data := range recorded.Preimages {
		require.NotEmpty(t, data)
		require.Equal(t, hash, common.Keccak256(data))
	}
}

func TestRecord_GenesisCanNotBeChallenged(t *testing.T) {
	_, err := Record(demo(t), 0)
	require.ErrorIs(t, err, ErrGenesis)
	_, err = NewBundle(demo(t), 0)
	require.ErrorIs(t, err, ErrGenesis)
}

func TestRecord_UnknownBlocksAreReported(t *testing.T) {
	_, err := Record(demo(t), 5)
	require.ErrorIs(t, err, chain.ErrUnknownBlock)
}

type tamperedSource struct {
	*chain.Chain
	tamper func(*ledger.Block)
}

func (s *tamperedSource) Block(number uint64) (*ledger.Block, error) {
	block, err := s.Chain.Block(number)
	if err != nil || number != 2 {
		return block, err
	}
	tampered := *block
	tampered.Txns = append([]ledger.Txn(nil), block.Txns...)
	s.tamper(&tampered)
	return &tampered, nil
}

func TestRecord_RootMismatchPanics(t *testing.T) {
	src := &tamperedSource{Chain: demo(t), tamper: func(b *ledger.Block) { b.StateRoot[0]++ }}
	require.Panics(t, func() { _, _ = Record(src, 2) })
}

func TestRecord_InvalidTransactionPanics(t *testing.T) {
	src := &tamperedSource{Chain: demo(t), tamper: func(b *ledger.Block) {
		b.Txns[0].Value = 1_000_000
	}}
	require.Panics(t, func() { _, _ = Record(src, 2) })
}

func TestBundle_PreimageTreatsMissingMarkersAsUnknown(t *testing.T) {
	bundle := &Bundle{Preimages: common.Preimages{{1}: {1}, {2}: {}}}
	data, found := bundle.Preimage(common.Hash{1})
	require.True(t, found)
	require.Equal(t, []byte{1}, data)
	_, found = bundle.Preimage(common.Hash{2})
	require.False(t, found)
	_, found = bundle.Preimage(common.Hash{3})
	require.False(t, found)
	require.Equal(t, 1, bundle.Nodes())
}

func TestBundle_ValidateDetectsCorruption(t *testing.T) {
	bundle, err := NewBundle(demo(t), 1)
	require.NoError(t, err)

	bundle.Input[0]++
	require.ErrorIs(t, bundle.Validate(), ErrCorruptBundle)
	bundle.Input[0]--

	bundle.Preimages[common.Hash{1}] = []byte{1, 2, 3}
	require.ErrorIs(t, bundle.Validate(), ErrCorruptBundle)
	delete(bundle.Preimages, common.Hash{1})

	delete(bundle.Preimages, bundle.Input)
	require.ErrorIs(t, bundle.Validate(), ErrCorruptBundle)
}

func TestBundle_DirectoryLayout(t *testing.T) {
	bundle, err := NewBundle(demo(t), 3)
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, bundle.WriteDir(dir))

	input, err := os.ReadFile(filepath.Join(dir, InputFile))
	require.NoError(t, err)
	require.Equal(t, bundle.Input[:], input)
	output, err := os.ReadFile(filepath.Join(dir, OutputFile))
	require.NoError(t, err)
	require.Equal(t, bundle.Output[:], output)
	block, err := os.ReadFile(filepath.Join(dir, BlockFile))
	require.NoError(t, err)
	require.Equal(t, bundle.Block, block)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3+len(bundle.Preimages))
	for hash, data := range bundle.Preimages {
		stored, err := os.ReadFile(filepath.Join(dir, hash.Hex()))
		require.NoError(t, err)
		require.Equal(t, data, stored)
	}

	loaded, err := ReadDir(dir)
	require.NoError(t, err)
	require.Equal(t, bundle, loaded)
}

func TestReadDir_RejectsMalformedDirectories(t *testing.T) {
	_, err := ReadDir(t.TempDir())
	require.Error(t, err)

	bundle, err := NewBundle(demo(t), 1)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, bundle.WriteDir(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, InputFile), []byte{1, 2}, 0600))
	_, err = ReadDir(dir)
	require.ErrorIs(t, err, ErrCorruptBundle)

	dir = t.TempDir()
	require.NoError(t, bundle.WriteDir(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "0xnothex"), []byte{1}, 0600))
	_, err = ReadDir(dir)
	require.ErrorIs(t, err, ErrCorruptBundle)
}

func TestBundle_ArchivePreservesContent(t *testing.T) {
	bundle, err := NewBundle(demo(t), 2)
	require.NoError(t, err)
	bundle.Preimages[common.Hash{1}] = []byte{}

	var first, second bytes.Buffer
	require.NoError(t, bundle.WriteArchive(&first))
	require.NoError(t, bundle.WriteArchive(&second))
	require.Equal(t, first.Bytes(), second.Bytes())

	loaded, err := ReadArchive(&first)
	require.NoError(t, err)
	require.Equal(t, bundle, loaded)
}

func TestReadArchive_RejectsGarbage(t *testing.T) {
	_, err := ReadArchive(bytes.NewReader([]byte("definitely not an archive")))
	require.ErrorIs(t, err, ErrCorruptBundle)
}

func TestDump_WritesOneDirectoryPerTransition(t *testing.T) {
	c := demo(t)
	root := t.TempDir()
	require.NoError(t, Dump(root, c, logrus.New()))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, int(c.BestBlockNumber()))

	for lastGood := uint64(0); lastGood < c.BestBlockNumber(); lastGood++ {
		bundle, err := ReadDir(ChallengeDir(root, lastGood))
		require.NoError(t, err)
		require.NoError(t, bundle.Validate())

		disputed, err := c.Block(lastGood + 1)
		require.NoError(t, err)
		require.Equal(t, disputed.Hash(), bundle.Input)
		require.Equal(t, disputed.StateRoot, replay(t, bundle))
	}
}

func TestDump_LogsExpectedRequestOrderAtDebugLevel(t *testing.T) {
	c := demo(t)
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	require.NoError(t, Dump(t.TempDir(), c, logger))

	_, want, err := newBundle(c, 1)
	require.NoError(t, err)
	var got []common.Hash
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Expected preimage request" && entry.Data["block"] == uint64(1) {
			got = append(got, entry.Data["hash"].(common.Hash))
		}
	}
	require.Equal(t, want, got)

	hook.Reset()
	logger.SetLevel(logrus.InfoLevel)
	require.NoError(t, Dump(t.TempDir(), c, logger))
	require.Len(t, hook.AllEntries(), int(c.BestBlockNumber()))
}

func TestChallengeDir_NamesLastGoodBlock(t *testing.T) {
	require.Equal(t, filepath.Join("cannon", "0_3"), ChallengeDir("cannon", 3))
}
