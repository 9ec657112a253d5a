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
	"errors"
	"fmt"

	"github.com/pepyakin/rusty-cannon/backend"
	_ "github.com/pepyakin/rusty-cannon/backend/all"
	"github.com/pepyakin/rusty-cannon/common"
	"github.com/pepyakin/rusty-cannon/common/diagnostics"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var (
	dbVariantFlag = cli.StringFlag{
		Name:  "db-variant",
		Usage: "content store variant holding the preimages, disabled if empty",
	}
	dbDirFlag = cli.StringFlag{
		Name:  "db-dir",
		Usage: "directory of a persistent content store",
	}
	dbCacheFlag = cli.IntFlag{
		Name:  "db-cache",
		Usage: "number of entries cached in front of a persistent content store",
		Value: 1 << 12,
	}
	verboseFlag = cli.BoolFlag{
		Name:  "verbose",
		Usage: "enable debug logging",
	}
)

var errMissingArgument = errors.New("missing argument")

var storeFlags = []cli.Flag{
	&dbVariantFlag,
	&dbDirFlag,
	&dbCacheFlag,
}

// withDiagnostics adds the diagnostic services selected by the global flags
// to the given action.
func withDiagnostics(action cli.ActionFunc) cli.ActionFunc {
	return diagnostics.AddPerformanceDiagnosticsAction(action, &diagnosticsFlag, &cpuProfileFlag, &traceFlag)
}

func newLogger(context *cli.Context) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(context.App.ErrWriter)
	if context.Bool(verboseFlag.Name) {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// openStore opens the content store selected by the store flags. It returns
// nil if no variant was selected.
func openStore(context *cli.Context) (backend.Store, error) {
	variant := context.String(dbVariantFlag.Name)
	if variant == "" {
		return nil, nil
	}
	store, err := backend.Open(backend.Configuration{
		Variant:       backend.Variant(variant),
		Directory:     context.String(dbDirFlag.Name),
		CacheCapacity: context.Int(dbCacheFlag.Name),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", variant, err)
	}
	return store, nil
}

func hashFlag(context *cli.Context, flag *cli.StringFlag) (common.Hash, error) {
	hash, err := common.HashFromHex(context.String(flag.Name))
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid --%s: %w", flag.Name, err)
	}
	return hash, nil
}
