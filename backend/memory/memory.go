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
	"bytes"
	"maps"
	"sync"

	"github.com/pepyakin/rusty-cannon/backend"
	"github.com/pepyakin/rusty-cannon/backend/cache"
	"github.com/pepyakin/rusty-cannon/common"
)

// VariantMemory is the registry name of the in-memory store.
const VariantMemory backend.Variant = "memory"

func init() {
	backend.RegisterFactory(VariantMemory, func(config backend.Configuration) (backend.Store, error) {
		if config.CacheCapacity <= 0 {
			return NewBackend(), nil
		}
		cached, err := cache.NewStore(NewBackend(), config.CacheCapacity)
		if err != nil {
			return nil, err
		}
		return cached, nil
	})
}

// Backend is an in-memory backend.Backend implementation mapping hashes to
// values. Removals are honored.
type Backend struct {
	data map[common.Hash][]byte
	mu   sync.RWMutex
}

// NewBackend creates an empty in-memory backend.
func NewBackend() *Backend {
	return &Backend{data: map[common.Hash][]byte{}}
}

// Get returns the value stored for the key, or nil if there is none.
func (m *Backend) Get(key common.Hash) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, found := m.data[key]
	if !found {
		return nil, nil
	}
	return bytes.Clone(value), nil
}

// ApplyChanges inserts all additions and then deletes all removals.
func (m *Backend) ApplyChanges(changes backend.ChangeSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, value := range changes.Adds {
		m.data[key] = bytes.Clone(value)
	}
	for _, key := range changes.Removes {
		delete(m.data, key)
	}
	return nil
}

// Clone creates an independent copy of this backend. Stored values are never
// mutated in place, so they are shared between the copies.
func (m *Backend) Clone() *Backend {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &Backend{data: maps.Clone(m.data)}
}

// Len returns the number of stored entries.
func (m *Backend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Contents returns a copy of all stored entries.
func (m *Backend) Contents() common.Preimages {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return common.Preimages(maps.Clone(m.data))
}

func (m *Backend) Close() error {
	return nil
}
