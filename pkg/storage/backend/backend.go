// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package backend opens the storage backend selected by configuration.
package backend

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-trio-queue/pkg/config"
	"github.com/AccelByte/extend-trio-queue/pkg/constants"
	"github.com/AccelByte/extend-trio-queue/pkg/storage"
	"github.com/AccelByte/extend-trio-queue/pkg/storage/memory"
	"github.com/AccelByte/extend-trio-queue/pkg/storage/sqlite"
)

func Open(cfg *config.Config) (storage.Backend, error) {
	switch cfg.StoreDriver {
	case constants.StoreDriverMemory, "":
		logrus.Warn("using in-memory membership store, active matches will not survive a restart")
		return memory.New(), nil
	case constants.StoreDriverSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite membership store: %w", err)
		}
		logrus.WithField("path", cfg.SQLitePath).Info("opened sqlite membership store")
		return store, nil
	default:
		return nil, fmt.Errorf("unknown membership store driver %q", cfg.StoreDriver)
	}
}
