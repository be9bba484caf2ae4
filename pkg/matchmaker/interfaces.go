// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package matchmaker batches participants joining per-session role lanes into
// groups of three and hands each drafted group to the formation step.
package matchmaker

import (
	"context"
	"errors"

	"github.com/AccelByte/extend-trio-queue/pkg/models"
)

var (
	// ErrMembershipUnavailable wraps failures of the membership store during a join.
	ErrMembershipUnavailable = errors.New("membership store unavailable")
	// ErrFormationFailed wraps failures while opening the channel or persisting a match.
	ErrFormationFailed = errors.New("match formation failed")
	// ErrUnknownDraft is returned when a draft was already formed or abandoned.
	ErrUnknownDraft = errors.New("draft is not pending")
	// ErrUnknownRole is returned for roles outside A, B and C.
	ErrUnknownRole = errors.New("unknown role")
)

/*
MembershipStore is the part of the membership store the engine needs: the active
check that blocks double-booking on join, and the insert that commits a formed match.
*/
type MembershipStore interface {
	IsActive(ctx context.Context, id string) (bool, error)
	InsertMatch(ctx context.Context, match models.Match) error
}

// ChannelOpener creates the communication channel for a drafted group. The returned
// id becomes the match id.
type ChannelOpener interface {
	OpenChannel(ctx context.Context, draft models.Draft) (models.MatchID, error)
}

// ChannelOpenerFunc adapts a function to ChannelOpener.
type ChannelOpenerFunc func(ctx context.Context, draft models.Draft) (models.MatchID, error)

func (f ChannelOpenerFunc) OpenChannel(ctx context.Context, draft models.Draft) (models.MatchID, error) {
	return f(ctx, draft)
}
