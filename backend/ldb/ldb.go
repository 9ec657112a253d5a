// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ldb

import (
	"errors"
	"fmt"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pbnjay/memory"
	"github.com/pepyakin/rusty-cannon/backend"
	"github.com/pepyakin/rusty-cannon/backend/cache"
	"github.com/pepyakin/rusty-cannon/common"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// VariantLevelDb is the registry name of the LevelDB based store.
const VariantLevelDb backend.Variant = "leveldb"

const (
	minBlockCache = 8 * opt.MiB
	maxBlockCache = 512 * opt.MiB
)

func init() {
	backend.RegisterFactory(VariantLevelDb, func(config backend.Configuration) (backend.Store, error) {
		store, err := OpenStore(config.Directory)
		if err != nil || config.CacheCapacity <= 0 {
			return store, err
		}
		cached, err := cache.NewStore(store, config.CacheCapacity)
		if err != nil {
			return nil, errors.Join(err, store.Close())
		}
		return cached, nil
	})
}

// Store is a content store persisted in a LevelDB instance.
type Store struct {
	db    *leveldb.DB
	table TableSpace
}

// OpenStore opens or creates a LevelDB store in the given directory. If the
// database is locked by another process, opening is retried for a few
// seconds.
func OpenStore(directory string) (*Store, error) {
	options := &opt.Options{
		BlockCacheCapacity: blockCacheSize(memory.TotalMemory()),
	}
	db, err := backoff.RetryWithData[*leveldb.DB](func() (*leveldb.DB, error) {
		db, err := leveldb.OpenFile(directory, options)
		if err != nil && !errors.Is(err, syscall.EAGAIN) {
			return nil, backoff.Permanent(err)
		}
		return db, err
	}, newOpenBackoff())
	if err != nil {
		return nil, fmt.Errorf("failed to open LevelDB in %s: %w", directory, err)
	}
	return &Store{db: db, table: NodeTable}, nil
}

func newOpenBackoff() *backoff.ExponentialBackOff {
	return backoff.NewExponentialBackOff(
		backoff.WithMaxElapsedTime(time.Second*3),
		backoff.WithMaxInterval(time.Second),
		backoff.WithInitialInterval(time.Millisecond*50),
		backoff.WithMultiplier(2),
		backoff.WithRandomizationFactor(0.2),
	)
}

// blockCacheSize uses 1/64 of the system memory, within fixed limits.
func blockCacheSize(total uint64) int {
	size := total / 64
	if size < minBlockCache {
		return minBlockCache
	}
	if size > maxBlockCache {
		return maxBlockCache
	}
	return int(size)
}

func (s *Store) Get(key common.Hash) ([]byte, error) {
	k := newDbKey(s.table, key)
	value, err := s.db.Get(k[:], nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %v: %w", key, err)
	}
	return value, nil
}

// ApplyChanges writes all additions and removals in a single batch.
func (s *Store) ApplyChanges(changes backend.ChangeSet) error {
	batch := new(leveldb.Batch)
	for key, value := range changes.Adds {
		k := newDbKey(s.table, key)
		batch.Put(k[:], value)
	}
	for _, key := range changes.Removes {
		k := newDbKey(s.table, key)
		batch.Delete(k[:])
	}
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("failed to write %d changes: %w", batch.Len(), err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
