// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package memory

import (
	"testing"

	"github.com/pepyakin/rusty-cannon/backend"
	"github.com/pepyakin/rusty-cannon/backend/cache"
	"github.com/pepyakin/rusty-cannon/common"
	"github.com/stretchr/testify/require"
)

func TestBackend_ValuesAreCopiedOnInsertAndRead(t *testing.T) {
	b := NewBackend()
	value := []byte{1, 2, 3}
	require.NoError(t, b.ApplyChanges(backend.ChangeSet{Adds: map[common.Hash][]byte{{1}: value}}))
	value[0] = 9

	got, err := b.Get(common.Hash{1})
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, got)

	got[1] = 9
	again, err := b.Get(common.Hash{1})
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, again)
}

func TestBackend_CloneIsIndependent(t *testing.T) {
	b := NewBackend()
	require.NoError(t, b.ApplyChanges(backend.ChangeSet{Adds: map[common.Hash][]byte{{1}: {1}}}))

	clone := b.Clone()
	require.NoError(t, clone.ApplyChanges(backend.ChangeSet{
		Adds:    map[common.Hash][]byte{{2}: {2}},
		Removes: []common.Hash{{1}},
	}))

	require.Equal(t, 1, b.Len())
	require.Equal(t, 1, clone.Len())
	require.Equal(t, common.Preimages{{1}: {1}}, b.Contents())
	require.Equal(t, common.Preimages{{2}: {2}}, clone.Contents())
}

func TestBackend_IsRegistered(t *testing.T) {
	store, err := backend.Open(backend.Configuration{Variant: VariantMemory})
	require.NoError(t, err)
	require.IsType(t, &Backend{}, store)
	require.NoError(t, store.Close())
}

func TestOpen_CacheCapacityWrapsStoreIntoCache(t *testing.T) {
	store, err := backend.Open(backend.Configuration{Variant: VariantMemory})
	require.NoError(t, err)
	require.IsType(t, &Backend{}, store)

	store, err = backend.Open(backend.Configuration{Variant: VariantMemory, CacheCapacity: 8})
	require.NoError(t, err)
	require.IsType(t, &cache.Store{}, store)

	changes := backend.ChangeSet{Adds: map[common.Hash][]byte{{1}: {1}}}
	require.NoError(t, store.ApplyChanges(changes))
	got, err := store.Get(common.Hash{1})
	require.NoError(t, err)
	require.Equal(t, []byte{1}, got)
	require.NoError(t, store.Close())
}
