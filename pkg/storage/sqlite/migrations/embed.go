// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package migrations

import "embed"

// FS contains embedded SQLite migrations for the membership store.
//
//go:embed *.sql
var FS embed.FS
