// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AccelByte/extend-trio-queue/pkg/models"
	"github.com/AccelByte/extend-trio-queue/pkg/storage"
	"github.com/AccelByte/extend-trio-queue/pkg/storage/storagetest"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "trio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Backend {
		return openTestStore(t)
	})
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestOpen_MatchesSurviveReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "trio.db")

	store, err := Open(path)
	require.NoError(t, err)
	match := storagetest.NewMatch("m1", models.ModeAsymmetric)
	require.NoError(t, store.InsertMatch(ctx, match))
	require.NoError(t, store.ApplyDeltas(ctx, []models.Delta{{Participant: "p", Amount: 4}}))
	require.NoError(t, store.Close())

	// migrations are applied again on reopen and must be idempotent
	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetMatch(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ModeAsymmetric, got.Mode)
	assert.Equal(t, match.Participants, got.Participants)

	score, err := reopened.Reputation(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, 4, score)
}

func TestUpSection(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a (id TEXT);\n-- +migrate Down\nDROP TABLE a;\n"
	assert.Equal(t, "CREATE TABLE a (id TEXT);", strings.TrimSpace(upSection(content)))
	assert.Equal(t, "SELECT 1;", upSection("SELECT 1;"))
}
