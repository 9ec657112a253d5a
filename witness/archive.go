// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package witness

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/golang/snappy"
	"github.com/pepyakin/rusty-cannon/common"
)

// ArchiveFile is the conventional name of a bundle archive.
const ArchiveFile = "bundle.sz"

type archiveEntry struct {
	Hash common.Hash
	Data []byte
}

type archive struct {
	Input     common.Hash
	Output    common.Hash
	Block     []byte
	Preimages []archiveEntry
}

// WriteArchive stores the bundle as a single snappy-framed RLP stream. The
// preimages are ordered by hash, so equal bundles produce equal archives.
func (b *Bundle) WriteArchive(w io.Writer) error {
	a := archive{Input: b.Input, Output: b.Output, Block: b.Block}
	for _, hash := range b.Preimages.Keys() {
		a.Preimages = append(a.Preimages, archiveEntry{Hash: hash, Data: b.Preimages[hash]})
	}
	out := snappy.NewBufferedWriter(w)
	if err := rlp.Encode(out, &a); err != nil {
		return fmt.Errorf("failed to encode bundle: %w", err)
	}
	return out.Close()
}

// ReadArchive loads a bundle written by WriteArchive.
func ReadArchive(r io.Reader) (*Bundle, error) {
	data, err := io.ReadAll(snappy.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptBundle, err)
	}
	var a archive
	if err := rlp.DecodeBytes(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptBundle, err)
	}
	res := &Bundle{
		Input:     a.Input,
		Output:    a.Output,
		Block:     a.Block,
		Preimages: make(common.Preimages, len(a.Preimages)),
	}
	for _, entry := range a.Preimages {
		if len(entry.Data) == 0 {
			entry.Data = []byte{}
		}
		res.Preimages[entry.Hash] = entry.Data
	}
	return res, nil
}
