// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/crypto/sha3"
)

// HashSize is the number of bytes of a Hash.
const HashSize = 32

// Hash is a 256-bit value used as a content address for trie nodes and
// blocks, as well as an account identifier.
type Hash [HashSize]byte

// Keccak256 computes the legacy Keccak-256 hash of the concatenation of the
// given byte slices.
func Keccak256(data ...[]byte) Hash {
	hasher := sha3.NewLegacyKeccak256()
	for _, cur := range data {
		hasher.Write(cur)
	}
	var res Hash
	hasher.Sum(res[:0])
	return res
}

// HashFromHex parses a hash from its hex representation. A leading 0x is
// optional, but exactly 32 bytes must be encoded.
func HashFromHex(s string) (Hash, error) {
	var res Hash
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	data, err := hex.DecodeString(s)
	if err != nil {
		return res, fmt.Errorf("invalid hash %q: %w", s, err)
	}
	if len(data) != HashSize {
		return res, fmt.Errorf("invalid hash %q: expected %d bytes, got %d", s, HashSize, len(data))
	}
	copy(res[:], data)
	return res, nil
}

// Hex returns the lowercase hex encoding of the hash, prefixed with 0x.
func (h Hash) Hex() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h Hash) String() string {
	return h.Hex()
}

// Compare orders hashes lexicographically.
func (h Hash) Compare(other Hash) int {
	return bytes.Compare(h[:], other[:])
}

// SortHashes sorts the given hashes in lexicographic order.
func SortHashes(hashes []Hash) {
	slices.SortFunc(hashes, Hash.Compare)
}

// Preimages maps content addresses to the bytes hashing to them. An empty
// value marks a hash that was looked up but not known.
type Preimages map[Hash][]byte

// Keys returns the hashes of the set in lexicographic order.
func (p Preimages) Keys() []Hash {
	res := make([]Hash, 0, len(p))
	for key := range p {
		res = append(res, key)
	}
	SortHashes(res)
	return res
}

// Merge copies all entries of other into this set.
func (p Preimages) Merge(other Preimages) {
	for key, value := range other {
		p[key] = value
	}
}
