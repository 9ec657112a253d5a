// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/trie"
	"github.com/ethereum/go-ethereum/triedb/database"
	"github.com/pepyakin/rusty-cannon/backend"
	"github.com/pepyakin/rusty-cannon/common"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

// nodeReader resolves trie nodes by hash from a backend, ignoring owner and
// path.
type nodeReader struct {
	backend backend.Backend
}

func newNodeReader(b backend.Backend) *nodeReader {
	return &nodeReader{backend: b}
}

func (r *nodeReader) Node(_ ethcommon.Hash, _ []byte, hash ethcommon.Hash) ([]byte, error) {
	return r.backend.Get(common.Hash(hash))
}

// singleNodeReader serves the same reader for every state root.
type singleNodeReader struct {
	reader *nodeReader
}

func (r singleNodeReader) NodeReader(ethcommon.Hash) (database.NodeReader, error) {
	return r.reader, nil
}

func openTrie(root common.Hash, reader *nodeReader) (*trie.Trie, error) {
	t, err := trie.New(trie.TrieID(ethcommon.Hash(root)), singleNodeReader{reader})
	if err != nil {
		return nil, fmt.Errorf("failed to open trie at %v: %w", root, err)
	}
	return t, nil
}

// trieGet looks up the value stored for key in the trie rooted at root.
func trieGet(root common.Hash, b backend.Backend, key []byte) ([]byte, error) {
	t, err := openTrie(root, newNodeReader(b))
	if err != nil {
		return nil, err
	}
	value, err := t.Get(key)
	if err != nil {
		return nil, fmt.Errorf("failed to read key %x: %w", key, err)
	}
	return value, nil
}

// trieInsert stores value under key in the trie rooted at root. It returns
// the new root and the nodes required to make it resolvable. The backend is
// only read.
//
// The change set never removes nodes. Nodes are shared by content: equal
// subtrees below different paths have the same hash, so a node replaced at
// one path may still be referenced from another one.
func trieInsert(root common.Hash, b backend.Backend, key, value []byte) (common.Hash, backend.ChangeSet, error) {
	t, err := openTrie(root, newNodeReader(b))
	if err != nil {
		return common.Hash{}, backend.ChangeSet{}, err
	}
	if err := t.Update(key, value); err != nil {
		return common.Hash{}, backend.ChangeSet{}, fmt.Errorf("failed to update key %x: %w", key, err)
	}
	newRoot, nodes := t.Commit(false)

	changes := backend.ChangeSet{Adds: map[common.Hash][]byte{}}
	if nodes == nil {
		return common.Hash(newRoot), changes, nil
	}
	for _, node := range nodes.Nodes {
		if !node.IsDeleted() {
			changes.Adds[common.Hash(node.Hash)] = node.Blob
		}
	}
	return common.Hash(newRoot), changes, nil
}
