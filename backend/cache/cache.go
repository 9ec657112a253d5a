// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package cache

import (
	"bytes"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pepyakin/rusty-cannon/backend"
	"github.com/pepyakin/rusty-cannon/common"
)

// Store is a read-through cache in front of another store. Updates are
// written through; removed keys are evicted.
type Store struct {
	store backend.Store
	cache *lru.Cache
}

// NewStore wraps the given store into a cache holding up to capacity values.
func NewStore(store backend.Store, capacity int) (*Store, error) {
	cache, err := lru.New(capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}
	return &Store{store: store, cache: cache}, nil
}

func (s *Store) Get(key common.Hash) ([]byte, error) {
	if value, found := s.cache.Get(key); found {
		return bytes.Clone(value.([]byte)), nil
	}
	value, err := s.store.Get(key)
	if err != nil || value == nil {
		return value, err
	}
	s.cache.Add(key, bytes.Clone(value))
	return value, nil
}

func (s *Store) ApplyChanges(changes backend.ChangeSet) error {
	if err := s.store.ApplyChanges(changes); err != nil {
		s.cache.Purge()
		return err
	}
	for key, value := range changes.Adds {
		s.cache.Add(key, bytes.Clone(value))
	}
	for _, key := range changes.Removes {
		s.cache.Remove(key)
	}
	return nil
}

func (s *Store) Close() error {
	s.cache.Purge()
	return s.store.Close()
}
