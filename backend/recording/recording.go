// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package recording provides a backend wrapper logging every read. The log
// is the witness of a computation: it lists exactly the content addresses
// resolved while it ran, together with the values seen.
package recording

import (
	"bytes"
	"sync"

	"github.com/emirpasic/gods/sets/linkedhashset"
	"github.com/pepyakin/rusty-cannon/backend"
	"github.com/pepyakin/rusty-cannon/common"
)

// Backend forwards all operations to an inner backend and records the result
// of every Get. Missing keys are recorded with an empty value. Writes are not
// recorded.
type Backend struct {
	inner backend.Backend
	mu    sync.Mutex
	log   common.Preimages
	order *linkedhashset.Set
}

// NewBackend wraps the given backend into a fresh recorder.
func NewBackend(inner backend.Backend) *Backend {
	return &Backend{
		inner: inner,
		log:   common.Preimages{},
		order: linkedhashset.New(),
	}
}

func (b *Backend) Get(key common.Hash) ([]byte, error) {
	value, err := b.inner.Get(key)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if value == nil {
		b.log[key] = []byte{}
	} else {
		b.log[key] = bytes.Clone(value)
	}
	b.order.Add(key)
	return value, nil
}

func (b *Backend) ApplyChanges(changes backend.ChangeSet) error {
	return b.inner.ApplyChanges(changes)
}

// Reads lists all distinct keys read so far in the order of their first read.
func (b *Backend) Reads() []common.Hash {
	b.mu.Lock()
	defer b.mu.Unlock()
	res := make([]common.Hash, 0, b.order.Size())
	for _, key := range b.order.Values() {
		res = append(res, key.(common.Hash))
	}
	return res
}

// IntoInner ends the recording, returning the wrapped backend and the log.
// The recorder must not be used afterwards.
func (b *Backend) IntoInner() (backend.Backend, common.Preimages) {
	b.mu.Lock()
	defer b.mu.Unlock()
	inner, log := b.inner, b.log
	b.inner, b.log, b.order = nil, nil, nil
	return inner, log
}
