// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package state provides a key to balance mapping stored in a Merkle-Patricia
// trie whose nodes live in a content-addressed backend. A state is fully
// identified by its root hash: any backend holding the nodes reachable from a
// root serves the same content.
package state

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pepyakin/rusty-cannon/backend"
	"github.com/pepyakin/rusty-cannon/common"
)

// BalanceSize is the length of an encoded balance.
const BalanceSize = 8

// EmptyRoot is the root hash of the trie without any entries.
var EmptyRoot = common.Hash(types.EmptyRootHash)

// ErrMalformedBalance is returned if a stored value is not a valid balance.
var ErrMalformedBalance = errors.New("malformed balance")

// State is a balance mapping at a fixed root, resolved through a backend.
type State struct {
	root    common.Hash
	backend backend.Backend
}

// Empty creates a state without entries on top of the given backend.
func Empty(b backend.Backend) *State {
	return WithRoot(b, EmptyRoot)
}

// WithRoot attaches a backend to a known root. The backend is expected to
// hold all nodes reachable from the root that are going to be accessed.
func WithRoot(b backend.Backend, root common.Hash) *State {
	return &State{root: root, backend: b}
}

// Root returns the current root hash.
func (s *State) Root() common.Hash {
	return s.root
}

// Backend returns the backend the state is resolved through.
func (s *State) Backend() backend.Backend {
	return s.backend
}

// Get returns the balance stored for the given key. Absent keys and keys
// mapped to an empty value are reported as not found.
func (s *State) Get(key common.Hash) (uint64, bool, error) {
	value, err := trieGet(s.root, s.backend, key[:])
	if err != nil {
		return 0, false, err
	}
	if len(value) == 0 {
		return 0, false, nil
	}
	if len(value) != BalanceSize {
		return 0, false, fmt.Errorf("%w: key %v holds %d bytes", ErrMalformedBalance, key, len(value))
	}
	return binary.LittleEndian.Uint64(value), true, nil
}

// Set stores the balance of the given key. The induced node changes are
// applied to the backend before the root advances; on failure the state is
// unchanged.
func (s *State) Set(key common.Hash, value uint64) error {
	var encoded [BalanceSize]byte
	binary.LittleEndian.PutUint64(encoded[:], value)
	root, changes, err := trieInsert(s.root, s.backend, key[:], encoded[:])
	if err != nil {
		return err
	}
	if err := s.backend.ApplyChanges(changes); err != nil {
		return fmt.Errorf("failed to apply trie changes: %w", err)
	}
	s.root = root
	return nil
}
