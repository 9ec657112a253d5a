// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package iommu implements the memory-mapped protocol between the verifier
// guest and its host. The guest reads the hash of the block to verify from a
// fixed address, obtains preimages by writing a request hash and trapping to
// the host, and reports its result by writing the output root followed by a
// magic completion marker.
package iommu

//go:generate mockgen -source iommu.go -destination iommu_mocks.go -package iommu

import (
	"errors"

	"github.com/pepyakin/rusty-cannon/common"
)

// Fixed addresses of the protocol registers. All integers are big-endian.
const (
	// InputHashAddr holds the 32-byte hash of the block to verify.
	InputHashAddr uint32 = 0x30000000
	// MagicAddr receives Magic once the output is valid.
	MagicAddr uint32 = 0x30000800
	// OutputHashAddr receives the 32-byte resulting state root.
	OutputHashAddr uint32 = 0x30000804
	// PreimageRequestAddr receives the 32-byte hash of a requested preimage.
	PreimageRequestAddr uint32 = 0x30001000
	// PreimageSizeAddr holds the length of the answered preimage; 0 means
	// the preimage is not known to the host.
	PreimageSizeAddr uint32 = 0x31000000
	// PreimageDataAddr holds the bytes of the answered preimage.
	PreimageDataAddr uint32 = 0x31000004
)

// Magic is the completion marker written to MagicAddr.
const Magic uint32 = 0x1337f00d

var (
	// ErrAbnormalHalt signals a guest stopping without a valid output.
	ErrAbnormalHalt = errors.New("guest halted abnormally")
	// ErrNoHostChannel is returned by Default on platforms without a
	// memory-mapped host interface.
	ErrNoHostChannel = errors.New("no memory-mapped host channel on this platform")
)

// Channel is the guest's view of the host.
type Channel interface {
	// InputHash returns the hash of the block to verify.
	InputHash() common.Hash
	// RequestPreimage asks the host for the preimage of the given hash. The
	// call returns once the host answered.
	RequestPreimage(hash common.Hash)
	// ReceivePreimage returns the answer to the last request. The result is
	// false if the host does not know the preimage.
	ReceivePreimage() ([]byte, bool)
	// Output publishes the resulting state root and halts. On a real guest
	// it does not return.
	Output(root common.Hash)
	// Halt stops the guest without publishing an output. On a real guest it
	// does not return.
	Halt()
}
