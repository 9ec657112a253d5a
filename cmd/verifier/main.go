// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"
	"os"

	"github.com/pepyakin/rusty-cannon/guest"
	"github.com/pepyakin/rusty-cannon/iommu"
)

// Build the verifier for the fault-proof VM using
//  GOOS=linux GOARCH=mips GOMIPS=softfloat go build ./cmd/verifier

func main() {
	channel, err := iommu.Default()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	guest.Main(channel)
}
