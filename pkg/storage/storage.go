// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package storage defines the persistence contracts for active matches and the
// reputation ledger.
package storage

import (
	"context"
	"errors"

	"github.com/AccelByte/extend-trio-queue/pkg/models"
)

var (
	// ErrConflict is returned when a match id is already stored.
	ErrConflict = errors.New("match already exists")
	// ErrNotFound is returned when a match or ledger entry does not exist.
	ErrNotFound = errors.New("not found")
	// ErrCorruptRecord is returned when a stored row cannot be decoded into a valid Match.
	ErrCorruptRecord = errors.New("corrupt match record")
)

// MembershipStore records which matches, and therefore which participants, are active.
type MembershipStore interface {
	// IsActive reports whether id is an active match id or a participant of one.
	IsActive(ctx context.Context, id string) (bool, error)
	// InsertMatch stores a new match; ErrConflict if the id is taken.
	InsertMatch(ctx context.Context, match models.Match) error
	// GetMatch returns ErrNotFound when the match is absent.
	GetMatch(ctx context.Context, id models.MatchID) (models.Match, error)
	// RemoveMatch deletes the match; removing an absent match is not an error.
	RemoveMatch(ctx context.Context, id models.MatchID) error
}

// ReputationLedger keeps one integer score per participant.
type ReputationLedger interface {
	// ApplyDeltas adds every delta in one step, creating missing entries at 0 first.
	ApplyDeltas(ctx context.Context, deltas []models.Delta) error
	// Reputation returns ErrNotFound when the participant was never written.
	Reputation(ctx context.Context, id models.ParticipantID) (int, error)
}

// DeltaRule computes the reputation deltas for a match being settled.
type DeltaRule func(match models.Match) []models.Delta

// Settler removes a match and applies its deltas as one step, so a match is
// rewarded at most once.
type Settler interface {
	// SettleMatch returns ErrNotFound when the match is absent.
	SettleMatch(ctx context.Context, id models.MatchID, rule DeltaRule) (models.Match, []models.Delta, error)
}

// Backend is everything a running queue needs from storage.
type Backend interface {
	MembershipStore
	ReputationLedger
	Settler
	Close() error
}
