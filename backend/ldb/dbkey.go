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

import "github.com/pepyakin/rusty-cannon/common"

// TableSpace partitions the key space of a shared LevelDB instance.
type TableSpace byte

const (
	// NodeTable holds content-addressed trie nodes and block preimages.
	NodeTable TableSpace = 'N'
)

type dbKey [1 + common.HashSize]byte

func newDbKey(table TableSpace, hash common.Hash) dbKey {
	var k dbKey
	k[0] = byte(table)
	copy(k[1:], hash[:])
	return k
}
