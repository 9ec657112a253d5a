// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package backend

//go:generate mockgen -source backend.go -destination backend_mocks.go -package backend

import (
	"io"

	"github.com/pepyakin/rusty-cannon/common"
)

// Backend is a content-addressed byte store keyed by the hash of the stored
// value. It is the sole storage capability used by the trie-backed state.
type Backend interface {
	// Get returns the value stored for the given key. If the key is not
	// present, nil is returned without an error.
	Get(key common.Hash) ([]byte, error)

	// ApplyChanges inserts all additions of the given change set and then
	// removes all listed keys. Implementations may ignore the removals.
	ApplyChanges(changes ChangeSet) error
}

// Store is a Backend owning resources that need to be released.
type Store interface {
	Backend
	io.Closer
}

// ChangeSet summarizes the node additions and removals induced by a single
// trie update.
type ChangeSet struct {
	Adds    map[common.Hash][]byte
	Removes []common.Hash
}

// IsEmpty returns true if the change set neither adds nor removes anything.
func (c ChangeSet) IsEmpty() bool {
	return len(c.Adds) == 0 && len(c.Removes) == 0
}
