// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

//go:build mips

package iommu

import (
	"bytes"
	"encoding/binary"
	"os"
	"syscall"
	"unsafe"

	"github.com/pepyakin/rusty-cannon/common"
)

// mmioChannel accesses the protocol registers at their fixed addresses in
// the address space of the process. The host traps on the getpid system
// call.
type mmioChannel struct{}

// Default returns the memory-mapped channel of the running guest.
func Default() (Channel, error) {
	return mmioChannel{}, nil
}

func region(addr uint32, size int) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), size)
}

func (mmioChannel) InputHash() common.Hash {
	return common.Hash(region(InputHashAddr, common.HashSize))
}

func (mmioChannel) RequestPreimage(hash common.Hash) {
	copy(region(PreimageRequestAddr, common.HashSize), hash[:])
	syscall.Getpid()
}

func (mmioChannel) ReceivePreimage() ([]byte, bool) {
	size := binary.BigEndian.Uint32(region(PreimageSizeAddr, 4))
	if size == 0 {
		return nil, false
	}
	return bytes.Clone(region(PreimageDataAddr, int(size))), true
}

func (mmioChannel) Output(root common.Hash) {
	copy(region(OutputHashAddr, common.HashSize), root[:])
	binary.BigEndian.PutUint32(region(MagicAddr, 4), Magic)
	os.Exit(0)
}

func (mmioChannel) Halt() {
	os.Exit(1)
}
