// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ledger

import (
	"bytes"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/pepyakin/rusty-cannon/backend"
	"github.com/pepyakin/rusty-cannon/common"
	"github.com/pepyakin/rusty-cannon/state"
)

// The fixed set of accounts funded at genesis.
var (
	Alice   = account(0x01)
	Bob     = account(0x02)
	Charlie = account(0x03)
	Dave    = account(0x04)
	Eve     = account(0x05)
)

func account(b byte) common.Hash {
	var res common.Hash
	copy(res[:], bytes.Repeat([]byte{b}, common.HashSize))
	return res
}

// Account is a named account with its genesis balance.
type Account struct {
	Name    string
	Address common.Hash
	Balance uint64
}

// GenesisAccounts lists the accounts funded at genesis in a fixed order.
func GenesisAccounts() []Account {
	return []Account{
		{"alice", Alice, 100},
		{"bob", Bob, 90},
		{"charlie", Charlie, 80},
		{"dave", Dave, 70},
		{"eve", Eve, 60},
	}
}

// AccountName returns the name of a genesis account or the hex address of
// any other account.
func AccountName(address common.Hash) string {
	for _, account := range GenesisAccounts() {
		if account.Address == address {
			return account.Name
		}
	}
	return address.Hex()
}

// BuildGenesis funds the genesis accounts in an empty state on top of the
// given backend and returns the genesis block committing to it.
func BuildGenesis(b backend.Backend) (*Block, *state.State, error) {
	s := state.Empty(b)
	for _, account := range GenesisAccounts() {
		if err := s.Set(account.Address, account.Balance); err != nil {
			return nil, nil, fmt.Errorf("failed to fund %s: %w", account.Name, err)
		}
	}
	return &Block{StateRoot: s.Root()}, s, nil
}

// TotalSupply sums up the balances of the given accounts. The sum is computed
// in 256-bit arithmetic and can not overflow.
func TotalSupply(s *state.State, accounts []common.Hash) (*uint256.Int, error) {
	total := new(uint256.Int)
	for _, address := range accounts {
		balance, _, err := s.Get(address)
		if err != nil {
			return nil, err
		}
		total.Add(total, uint256.NewInt(balance))
	}
	return total, nil
}
