// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pepyakin/rusty-cannon/backend"
	"github.com/pepyakin/rusty-cannon/backend/cache"
	"github.com/pepyakin/rusty-cannon/common"
)

// VariantSqlite is the registry name of the SQLite based store.
const VariantSqlite backend.Variant = "sqlite"

// FileName is the name of the database file created in the store directory.
const FileName = "nodes.sqlite"

const (
	createTable = "CREATE TABLE IF NOT EXISTS nodes (hash BLOB PRIMARY KEY, data BLOB NOT NULL)"
	selectNode  = "SELECT data FROM nodes WHERE hash = ?"
	upsertNode  = "INSERT OR REPLACE INTO nodes (hash, data) VALUES (?, ?)"
	deleteNode  = "DELETE FROM nodes WHERE hash = ?"
)

func init() {
	backend.RegisterFactory(VariantSqlite, func(config backend.Configuration) (backend.Store, error) {
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

// Store is a content store persisted in a single SQLite table.
type Store struct {
	db     *sql.DB
	get    *sql.Stmt
	upsert *sql.Stmt
	remove *sql.Stmt
}

// OpenStore opens or creates a SQLite store in the given directory.
func OpenStore(directory string) (*Store, error) {
	if err := os.MkdirAll(directory, 0700); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", directory, err)
	}
	db, err := sql.Open("sqlite3", filepath.Join(directory, FileName))
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(createTable); err != nil {
		return nil, errors.Join(fmt.Errorf("failed to create nodes table: %w", err), db.Close())
	}
	res := &Store{db: db}
	if res.get, err = db.Prepare(selectNode); err != nil {
		return nil, errors.Join(err, res.Close())
	}
	if res.upsert, err = db.Prepare(upsertNode); err != nil {
		return nil, errors.Join(err, res.Close())
	}
	if res.remove, err = db.Prepare(deleteNode); err != nil {
		return nil, errors.Join(err, res.Close())
	}
	return res, nil
}

func (s *Store) Get(key common.Hash) ([]byte, error) {
	var data []byte
	err := s.get.QueryRow(key[:]).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %v: %w", key, err)
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

// ApplyChanges writes all additions and removals in a single transaction.
func (s *Store) ApplyChanges(changes backend.ChangeSet) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	upsert, remove := tx.Stmt(s.upsert), tx.Stmt(s.remove)
	for key, value := range changes.Adds {
		if _, err := upsert.Exec(key[:], value); err != nil {
			return errors.Join(fmt.Errorf("failed to insert %v: %w", key, err), tx.Rollback())
		}
	}
	for _, key := range changes.Removes {
		if _, err := remove.Exec(key[:]); err != nil {
			return errors.Join(fmt.Errorf("failed to delete %v: %w", key, err), tx.Rollback())
		}
	}
	return tx.Commit()
}

func (s *Store) Close() error {
	var errs []error
	for _, stmt := range []*sql.Stmt{s.get, s.upsert, s.remove} {
		if stmt != nil {
			errs = append(errs, stmt.Close())
		}
	}
	errs = append(errs, s.db.Close())
	return errors.Join(errs...)
}
