// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package membership wraps a storage.MembershipStore with the checks that keep a
// participant from being booked into two matches.
package membership

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/AccelByte/extend-trio-queue/pkg/models"
	"github.com/AccelByte/extend-trio-queue/pkg/storage"
	"github.com/AccelByte/extend-trio-queue/pkg/utils"
)

var (
	// ErrDoubleBooked is returned when a match would reuse an active participant or match id.
	ErrDoubleBooked = errors.New("participant already belongs to an active match")
	// ErrInvalidMatch is returned for matches that cannot be stored.
	ErrInvalidMatch = errors.New("invalid match")
)

// Guard serializes inserts so the active check and the write are one step for
// every caller sharing the guard.
type Guard struct {
	store storage.MembershipStore
	mu    sync.Mutex
}

func NewGuard(store storage.MembershipStore) *Guard {
	return &Guard{store: store}
}

func (g *Guard) IsActive(ctx context.Context, id string) (bool, error) {
	return g.store.IsActive(ctx, id)
}

func (g *Guard) InsertMatch(ctx context.Context, match models.Match) error {
	if err := validateMatch(match); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	ids := append([]string{string(match.ID)}, match.Participants.Strings()...)
	for _, id := range ids {
		active, err := g.store.IsActive(ctx, id)
		if err != nil {
			return fmt.Errorf("check %s: %w", id, err)
		}
		if active {
			if id == string(match.ID) {
				return storage.ErrConflict
			}
			return fmt.Errorf("%w: %s", ErrDoubleBooked, id)
		}
	}
	return g.store.InsertMatch(ctx, match)
}

// GetMatch returns ok=false when the match is absent.
func (g *Guard) GetMatch(ctx context.Context, id models.MatchID) (models.Match, bool, error) {
	match, err := g.store.GetMatch(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Match{}, false, nil
	}
	if err != nil {
		return models.Match{}, false, err
	}
	return match, true, nil
}

func (g *Guard) RemoveMatch(ctx context.Context, id models.MatchID) error {
	return g.store.RemoveMatch(ctx, id)
}

func validateMatch(match models.Match) error {
	if match.ID == "" {
		return fmt.Errorf("%w: match id is empty", ErrInvalidMatch)
	}
	if !match.Mode.Valid() {
		return fmt.Errorf("%w: mode %d", ErrInvalidMatch, int(match.Mode))
	}
	for slot, participant := range match.Participants {
		if participant == "" {
			return fmt.Errorf("%w: slot %d is empty", ErrInvalidMatch, slot)
		}
	}
	if utils.HasDuplicate(match.Participants[:]) {
		return fmt.Errorf("%w: participants must be distinct", ErrInvalidMatch)
	}
	return nil
}
