// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package storagetest holds the behaviour every storage.Backend must share.
package storagetest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AccelByte/extend-trio-queue/pkg/models"
	"github.com/AccelByte/extend-trio-queue/pkg/storage"
)

// NewMatch returns a match with fresh participant ids. FormedAt has millisecond precision.
func NewMatch(id string, mode models.Mode) models.Match {
	return models.Match{
		ID:           models.MatchID(id),
		Participants: models.Group{models.ParticipantID(id + "-p0"), models.ParticipantID(id + "-p1"), models.ParticipantID(id + "-p2")},
		Mode:         mode,
		FormedAt:     time.UnixMilli(time.Now().UnixMilli()).UTC(),
	}
}

func everyoneGetsOne(match models.Match) []models.Delta {
	deltas := make([]models.Delta, 0, models.GroupSize)
	for _, member := range match.Participants {
		deltas = append(deltas, models.Delta{Participant: member, Amount: 1})
	}
	return deltas
}

// Run exercises a backend produced by newBackend; each subtest gets a fresh one.
func Run(t *testing.T, newBackend func(t *testing.T) storage.Backend) {
	ctx := context.Background()

	t.Run("insert then get", func(t *testing.T) {
		store := newBackend(t)
		match := NewMatch("m1", models.ModeAsymmetric)

		require.NoError(t, store.InsertMatch(ctx, match))

		got, err := store.GetMatch(ctx, match.ID)
		require.NoError(t, err)
		assert.Equal(t, match.ID, got.ID)
		assert.Equal(t, match.Participants, got.Participants)
		assert.Equal(t, match.Mode, got.Mode)
		assert.True(t, match.FormedAt.Equal(got.FormedAt))
	})

	t.Run("is active covers match and participant ids", func(t *testing.T) {
		store := newBackend(t)
		match := NewMatch("m1", models.ModeSymmetric)
		require.NoError(t, store.InsertMatch(ctx, match))

		for _, id := range append([]string{"m1"}, match.Participants.Strings()...) {
			active, err := store.IsActive(ctx, id)
			require.NoError(t, err)
			assert.True(t, active, id)
		}
		active, err := store.IsActive(ctx, "stranger")
		require.NoError(t, err)
		assert.False(t, active)
	})

	t.Run("duplicate match id conflicts", func(t *testing.T) {
		store := newBackend(t)
		require.NoError(t, store.InsertMatch(ctx, NewMatch("m1", models.ModeSymmetric)))

		err := store.InsertMatch(ctx, NewMatch("m1", models.ModeSymmetric))
		assert.True(t, errors.Is(err, storage.ErrConflict), "got %v", err)
	})

	t.Run("get absent match", func(t *testing.T) {
		store := newBackend(t)
		_, err := store.GetMatch(ctx, "missing")
		assert.True(t, errors.Is(err, storage.ErrNotFound), "got %v", err)
	})

	t.Run("remove is idempotent and frees participants", func(t *testing.T) {
		store := newBackend(t)
		match := NewMatch("m1", models.ModeSymmetric)
		require.NoError(t, store.InsertMatch(ctx, match))

		require.NoError(t, store.RemoveMatch(ctx, match.ID))
		require.NoError(t, store.RemoveMatch(ctx, match.ID))

		active, err := store.IsActive(ctx, string(match.Participants[0]))
		require.NoError(t, err)
		assert.False(t, active)
	})

	t.Run("reputation accumulates deltas", func(t *testing.T) {
		store := newBackend(t)

		_, err := store.Reputation(ctx, "p")
		assert.True(t, errors.Is(err, storage.ErrNotFound), "got %v", err)

		require.NoError(t, store.ApplyDeltas(ctx, []models.Delta{{Participant: "p", Amount: 2}, {Participant: "q", Amount: -1}}))
		require.NoError(t, store.ApplyDeltas(ctx, []models.Delta{{Participant: "p", Amount: 1}}))
		require.NoError(t, store.ApplyDeltas(ctx, nil))

		score, err := store.Reputation(ctx, "p")
		require.NoError(t, err)
		assert.Equal(t, 3, score)

		score, err = store.Reputation(ctx, "q")
		require.NoError(t, err)
		assert.Equal(t, -1, score)
	})

	t.Run("settle removes match and applies deltas once", func(t *testing.T) {
		store := newBackend(t)
		match := NewMatch("m1", models.ModeSymmetric)
		require.NoError(t, store.InsertMatch(ctx, match))

		settled, deltas, err := store.SettleMatch(ctx, match.ID, everyoneGetsOne)
		require.NoError(t, err)
		assert.Equal(t, match.Participants, settled.Participants)
		assert.Len(t, deltas, models.GroupSize)

		_, _, err = store.SettleMatch(ctx, match.ID, everyoneGetsOne)
		assert.True(t, errors.Is(err, storage.ErrNotFound), "got %v", err)

		for _, member := range match.Participants {
			score, err := store.Reputation(ctx, member)
			require.NoError(t, err)
			assert.Equal(t, 1, score)
		}
		active, err := store.IsActive(ctx, string(match.ID))
		require.NoError(t, err)
		assert.False(t, active)
	})

	t.Run("concurrent settles pay out once", func(t *testing.T) {
		store := newBackend(t)
		match := NewMatch("m1", models.ModeSymmetric)
		require.NoError(t, store.InsertMatch(ctx, match))

		var (
			wg      sync.WaitGroup
			settled atomic.Int32
		)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, _, err := store.SettleMatch(ctx, match.ID, everyoneGetsOne); err == nil {
					settled.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), settled.Load())
		score, err := store.Reputation(ctx, match.Participants[2])
		require.NoError(t, err)
		assert.Equal(t, 1, score)
	})
}
