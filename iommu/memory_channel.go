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
	"runtime"

	"github.com/pepyakin/rusty-cannon/common"
)

// MemoryChannel is the guest side of the protocol on top of an emulated
// Memory. The trap function plays the role of the host system call: it is
// invoked synchronously after each request has been written.
//
// Output and Halt end the calling goroutine; a guest using this channel
// must run on a goroutine of its own.
type MemoryChannel struct {
	mem  *Memory
	trap func()
}

// NewMemoryChannel creates a guest channel on the given memory.
func NewMemoryChannel(mem *Memory, trap func()) *MemoryChannel {
	return &MemoryChannel{mem: mem, trap: trap}
}

func (c *MemoryChannel) InputHash() common.Hash {
	return c.mem.ReadHash(InputHashAddr)
}

func (c *MemoryChannel) RequestPreimage(hash common.Hash) {
	c.mem.WriteHash(PreimageRequestAddr, hash)
	c.trap()
}

func (c *MemoryChannel) ReceivePreimage() ([]byte, bool) {
	size := c.mem.ReadUint32(PreimageSizeAddr)
	if size == 0 {
		return nil, false
	}
	return c.mem.Read(PreimageDataAddr, int(size)), true
}

// Output writes the root and the completion marker and exits the calling
// goroutine.
func (c *MemoryChannel) Output(root common.Hash) {
	c.mem.WriteHash(OutputHashAddr, root)
	c.mem.WriteUint32(MagicAddr, Magic)
	runtime.Goexit()
}

// Halt panics with ErrAbnormalHalt without writing the completion marker.
func (c *MemoryChannel) Halt() {
	panic(ErrAbnormalHalt)
}
