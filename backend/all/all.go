// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package all

// This package makes all content store implementations available through
// backend.Open. Tools selecting a store by name import it as follows:
//
//  import _ "github.com/pepyakin/rusty-cannon/backend/all"
//
// As a side-effect, the persistent stores and their dependencies are linked
// into the binary. The guest must not import this package: it only ever
// uses the oracle store, which is not selectable by name.

import (
	_ "github.com/pepyakin/rusty-cannon/backend/ldb"
	_ "github.com/pepyakin/rusty-cannon/backend/memory"
	_ "github.com/pepyakin/rusty-cannon/backend/sqlite"
)
