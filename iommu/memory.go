// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package iommu

import (
	"encoding/binary"
	"sync"

	"github.com/pepyakin/rusty-cannon/common"
)

// PageSize is the granularity in which Memory allocates its backing store.
const PageSize = 4096

// Memory is a sparse emulation of the 32-bit address space shared between
// guest and host. Unwritten memory reads as zero. It is safe for concurrent
// use.
type Memory struct {
	mu    sync.Mutex
	pages map[uint32]*[PageSize]byte
}

// NewMemory creates an address space with all bytes set to zero.
func NewMemory() *Memory {
	return &Memory{pages: map[uint32]*[PageSize]byte{}}
}

// Read copies size bytes starting at addr.
func (m *Memory) Read(addr uint32, size int) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]byte, size)
	for done := 0; done < size; {
		cur := addr + uint32(done)
		offset := cur % PageSize
		n := min(size-done, int(PageSize-offset))
		if page, found := m.pages[cur/PageSize]; found {
			copy(res[done:done+n], page[offset:])
		}
		done += n
	}
	return res
}

// Write copies data to memory starting at addr.
func (m *Memory) Write(addr uint32, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for done := 0; done < len(data); {
		cur := addr + uint32(done)
		offset := cur % PageSize
		page, found := m.pages[cur/PageSize]
		if !found {
			page = new([PageSize]byte)
			m.pages[cur/PageSize] = page
		}
		done += copy(page[offset:], data[done:])
	}
}

func (m *Memory) ReadUint32(addr uint32) uint32 {
	return binary.BigEndian.Uint32(m.Read(addr, 4))
}

func (m *Memory) WriteUint32(addr uint32, value uint32) {
	m.Write(addr, binary.BigEndian.AppendUint32(nil, value))
}

func (m *Memory) ReadHash(addr uint32) common.Hash {
	return common.Hash(m.Read(addr, common.HashSize))
}

func (m *Memory) WriteHash(addr uint32, hash common.Hash) {
	m.Write(addr, hash[:])
}

// SetInput places the hash of the block to verify. Host side.
func (m *Memory) SetInput(hash common.Hash) {
	m.WriteHash(InputHashAddr, hash)
}

// PendingRequest returns the hash of the preimage requested last. Host side.
func (m *Memory) PendingRequest() common.Hash {
	return m.ReadHash(PreimageRequestAddr)
}

// Answer places the response to a preimage request. An empty answer tells
// the guest that the preimage is unknown. Host side.
func (m *Memory) Answer(data []byte) {
	m.WriteUint32(PreimageSizeAddr, uint32(len(data)))
	m.Write(PreimageDataAddr, data)
}

// Result returns the output root and whether the completion marker was
// written. Host side.
func (m *Memory) Result() (common.Hash, bool) {
	if m.ReadUint32(MagicAddr) != Magic {
		return common.Hash{}, false
	}
	return m.ReadHash(OutputHashAddr), true
}
