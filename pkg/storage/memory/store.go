// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package memory provides an in-process storage backend.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/AccelByte/extend-trio-queue/pkg/models"
	"github.com/AccelByte/extend-trio-queue/pkg/storage"
)

// Store keeps matches and reputation in maps. It does not survive a restart.
type Store struct {
	mu         sync.RWMutex
	matches    map[models.MatchID]models.Match
	active     map[string]models.MatchID // match ids and participant ids -> match id
	reputation map[models.ParticipantID]int
}

func New() *Store {
	return &Store{
		matches:    make(map[models.MatchID]models.Match),
		active:     make(map[string]models.MatchID),
		reputation: make(map[models.ParticipantID]int),
	}
}

func (s *Store) IsActive(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.active[id]
	return ok, nil
}

func (s *Store) InsertMatch(ctx context.Context, match models.Match) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.matches[match.ID]; exists {
		return storage.ErrConflict
	}
	s.matches[match.ID] = match
	s.active[string(match.ID)] = match.ID
	for _, participant := range match.Participants {
		s.active[string(participant)] = match.ID
	}
	return nil
}

func (s *Store) GetMatch(ctx context.Context, id models.MatchID) (models.Match, error) {
	if err := ctx.Err(); err != nil {
		return models.Match{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	match, ok := s.matches[id]
	if !ok {
		return models.Match{}, storage.ErrNotFound
	}
	return match, nil
}

func (s *Store) RemoveMatch(ctx context.Context, id models.MatchID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
	return nil
}

func (s *Store) removeLocked(id models.MatchID) (models.Match, bool) {
	match, ok := s.matches[id]
	if !ok {
		return models.Match{}, false
	}
	delete(s.matches, id)
	delete(s.active, string(id))
	for _, participant := range match.Participants {
		if s.active[string(participant)] == id {
			delete(s.active, string(participant))
		}
	}
	return match, true
}

func (s *Store) ApplyDeltas(ctx context.Context, deltas []models.Delta) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(deltas)
	return nil
}

func (s *Store) applyLocked(deltas []models.Delta) {
	for _, delta := range deltas {
		s.reputation[delta.Participant] += delta.Amount
	}
}

func (s *Store) Reputation(ctx context.Context, id models.ParticipantID) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	score, ok := s.reputation[id]
	if !ok {
		return 0, storage.ErrNotFound
	}
	return score, nil
}

func (s *Store) SettleMatch(ctx context.Context, id models.MatchID, rule storage.DeltaRule) (models.Match, []models.Delta, error) {
	if err := ctx.Err(); err != nil {
		return models.Match{}, nil, err
	}
	if rule == nil {
		return models.Match{}, nil, fmt.Errorf("delta rule is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	match, ok := s.removeLocked(id)
	if !ok {
		return models.Match{}, nil, storage.ErrNotFound
	}
	deltas := rule(match)
	s.applyLocked(deltas)
	return match, deltas, nil
}

func (s *Store) Close() error {
	return nil
}

var _ storage.Backend = (*Store)(nil)
