// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package backend

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/pepyakin/rusty-cannon/common"
)

// Variant names a content store implementation.
type Variant string

// Configuration selects and parameterizes a content store.
type Configuration struct {
	Variant   Variant
	Directory string
	// CacheCapacity is the number of entries of a read cache placed in front
	// of a persistent store. Zero disables the cache.
	CacheCapacity int
}

// Factory creates a store for a given configuration.
type Factory func(config Configuration) (Store, error)

// UnsupportedConfiguration is the error returned if no factory is registered
// for a requested variant.
const UnsupportedConfiguration = ConstError("unsupported configuration")

// ConstError is an error type usable for constant sentinel errors.
type ConstError string

func (e ConstError) Error() string {
	return string(e)
}

var (
	factoriesMutex sync.Mutex
	factories      = map[Variant]Factory{}
)

// RegisterFactory registers a factory for the given variant. It panics if the
// variant is already registered.
func RegisterFactory(variant Variant, factory Factory) {
	factoriesMutex.Lock()
	defer factoriesMutex.Unlock()
	if _, found := factories[variant]; found {
		panic(fmt.Sprintf("multiple factories registered for variant %q", variant))
	}
	factories[variant] = factory
}

// Variants lists all registered variants in lexicographic order.
func Variants() []Variant {
	factoriesMutex.Lock()
	defer factoriesMutex.Unlock()
	res := make([]Variant, 0, len(factories))
	for variant := range factories {
		res = append(res, variant)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

// Open creates the store described by the given configuration.
func Open(config Configuration) (Store, error) {
	factoriesMutex.Lock()
	factory, found := factories[config.Variant]
	factoriesMutex.Unlock()
	if !found {
		return nil, fmt.Errorf("%w: %q, supported: %v", UnsupportedConfiguration, config.Variant, Variants())
	}
	return factory(config)
}

// CopyAll imports the given preimages into a backend as a single change set.
// Empty values are skipped.
func CopyAll(target Backend, preimages common.Preimages) error {
	changes := ChangeSet{Adds: make(map[common.Hash][]byte, len(preimages))}
	for key, value := range preimages {
		if len(value) == 0 {
			continue
		}
		changes.Adds[key] = slices.Clone(value)
	}
	return target.ApplyChanges(changes)
}
