// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package oracle

import (
	"testing"

	"github.com/pepyakin/rusty-cannon/backend"
	"github.com/pepyakin/rusty-cannon/common"
	"github.com/pepyakin/rusty-cannon/iommu"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestBackend_PreimagesAreRequestedOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	channel := iommu.NewMockChannel(ctrl)
	data := []byte("node")
	hash := common.Keccak256(data)
	gomock.InOrder(
		channel.EXPECT().RequestPreimage(hash),
		channel.EXPECT().ReceivePreimage().Return(data, true),
	)

	b := NewBackend(channel)
	for i := 0; i < 3; i++ {
		got, err := b.Get(hash)
		require.NoError(t, err)
		require.Equal(t, data, got)
	}
	require.Equal(t, 1, b.Requests())
}

func TestBackend_UnknownPreimagesAreErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	channel := iommu.NewMockChannel(ctrl)
	channel.EXPECT().RequestPreimage(common.Hash{1}).Times(2)
	channel.EXPECT().ReceivePreimage().Return(nil, false).Times(2)

	b := NewBackend(channel)
	_, err := b.Get(common.Hash{1})
	require.ErrorIs(t, err, ErrMissingPreimage)
	_, err = b.Preimage(common.Hash{1})
	require.ErrorIs(t, err, ErrMissingPreimage)
}

func TestBackend_MismatchingPreimagesAreRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	channel := iommu.NewMockChannel(ctrl)
	channel.EXPECT().RequestPreimage(common.Hash{1})
	channel.EXPECT().ReceivePreimage().Return([]byte("forged"), true)

	_, err := NewBackend(channel).Get(common.Hash{1})
	require.ErrorIs(t, err, ErrPreimageMismatch)
}

func TestBackend_WritesAreDropped(t *testing.T) {
	ctrl := gomock.NewController(t)
	channel := iommu.NewMockChannel(ctrl)
	b := NewBackend(channel)
	require.NoError(t, b.ApplyChanges(backend.ChangeSet{Adds: map[common.Hash][]byte{{1}: {1}}}))
	require.Zero(t, b.Requests())
}

func TestBackend_WorksOverEmulatedMemory(t *testing.T) {
	mem := iommu.NewMemory()
	data := []byte("a trie node")
	hash := common.Keccak256(data)
	channel := iommu.NewMemoryChannel(mem, func() {
		if mem.PendingRequest() == hash {
			mem.Answer(data)
		} else {
			mem.Answer(nil)
		}
	})

	b := NewBackend(channel)
	got, err := b.Get(hash)
	require.NoError(t, err)
	require.Equal(t, data, got)
	_, err = b.Get(common.Hash{2})
	require.ErrorIs(t, err, ErrMissingPreimage)
}
