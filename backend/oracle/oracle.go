// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package oracle provides the guest's content store. It holds no data of its
// own: every value is requested from the host through the preimage protocol
// and verified against its hash.
package oracle

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pepyakin/rusty-cannon/backend"
	"github.com/pepyakin/rusty-cannon/common"
	"github.com/pepyakin/rusty-cannon/iommu"
)

var (
	// ErrMissingPreimage is returned if the host does not know a preimage.
	ErrMissingPreimage = errors.New("missing preimage")
	// ErrPreimageMismatch is returned if the host answers with bytes not
	// hashing to the requested hash.
	ErrPreimageMismatch = errors.New("preimage does not match hash")
)

// Backend resolves values through the host. Answers are cached for the
// lifetime of the instance, so each hash is requested at most once. Writes
// are dropped.
type Backend struct {
	channel  iommu.Channel
	mu       sync.Mutex
	cache    map[common.Hash][]byte
	requests int
}

// NewBackend creates a backend requesting preimages through the channel.
func NewBackend(channel iommu.Channel) *Backend {
	return &Backend{channel: channel, cache: map[common.Hash][]byte{}}
}

// Preimage returns the preimage of the given hash. Unlike Get, a preimage
// unknown to the host is an error.
func (b *Backend) Preimage(hash common.Hash) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if data, found := b.cache[hash]; found {
		return data, nil
	}
	b.requests++
	b.channel.RequestPreimage(hash)
	data, found := b.channel.ReceivePreimage()
	if !found {
		return nil, fmt.Errorf("%w: %v", ErrMissingPreimage, hash)
	}
	if got := common.Keccak256(data); got != hash {
		return nil, fmt.Errorf("%w: requested %v, got data hashing to %v", ErrPreimageMismatch, hash, got)
	}
	b.cache[hash] = data
	return data, nil
}

// Get resolves the key through the host. The host not knowing the key is
// reported as an error, since the guest can not proceed without it.
func (b *Backend) Get(key common.Hash) ([]byte, error) {
	return b.Preimage(key)
}

// ApplyChanges is a no-op: the guest never needs nodes beyond those the
// host can supply.
func (b *Backend) ApplyChanges(backend.ChangeSet) error {
	return nil
}

// Requests returns the number of round trips to the host so far.
func (b *Backend) Requests() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests
}
