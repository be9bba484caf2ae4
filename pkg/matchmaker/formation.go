// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package matchmaker

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-trio-queue/pkg/constants"
	"github.com/AccelByte/extend-trio-queue/pkg/envelope"
	"github.com/AccelByte/extend-trio-queue/pkg/models"
)

/*
Form turns a draft into a committed match:
 1. the channel opener creates the match channel and names the match id
 2. the match is inserted into the membership store
 3. the drafted participants stop being pending

Neither external call runs under the registry lock. If either fails the draft is
abandoned: its participants are dropped, or put back at the head of their lanes
when RequeueOnFormationFailure is set. The draft is claimed before any external
call, so a draft can be formed at most once and a concurrent or later Form of
the same draft gets ErrUnknownDraft.
*/
func (e *Engine) Form(rootScope *envelope.Scope, draft models.Draft, opener ChannelOpener) (models.Match, error) {
	scope := rootScope.NewChildScope("matchmaker.Form")
	defer scope.Finish()

	scope.SetAttributes(envelope.SessionTag, string(draft.Session))
	scope.SetAttributes(envelope.ModeTag, draft.Mode.String())

	e.registry.mu.Lock()
	claimed := e.registry.claimDraftLocked(draft)
	e.registry.mu.Unlock()
	if !claimed {
		return models.Match{}, fmt.Errorf("%w: %s", ErrUnknownDraft, draft.ID)
	}

	log := scope.Log.WithFields(logrus.Fields{
		"draft":        draft.ID,
		"session":      draft.Session,
		"mode":         draft.Mode.String(),
		"participants": draft.Participants.Strings(),
	})

	matchID, err := opener.OpenChannel(scope.Ctx, draft)
	if err != nil {
		e.abandon(scope, draft, constants.FormationFailureChannel, err)
		return models.Match{}, fmt.Errorf("%w: open channel: %w", ErrFormationFailed, err)
	}

	match := models.Match{
		ID:           matchID,
		Participants: draft.Participants,
		Mode:         draft.Mode,
		FormedAt:     e.now().UTC(),
	}
	if err = e.membership.InsertMatch(scope.Ctx, match); err != nil {
		e.abandon(scope, draft, constants.FormationFailureStore, err)
		return models.Match{}, fmt.Errorf("%w: insert match %s: %w", ErrFormationFailed, matchID, err)
	}

	e.registry.mu.Lock()
	e.registry.releaseLocked(draft)
	e.registry.mu.Unlock()

	scope.SetAttributes(envelope.MatchTag, string(match.ID))
	e.metrics.AddMatchFormed(match.Mode.String())
	log.WithField("match", match.ID).Info("match formed")

	return match, nil
}

// abandon releases a draft claimed by the calling Form.
func (e *Engine) abandon(scope *envelope.Scope, draft models.Draft, reason string, cause error) {
	r := e.registry
	requeue := e.cfg != nil && e.cfg.RequeueOnFormationFailure

	r.mu.Lock()
	r.releaseLocked(draft)
	if requeue {
		q := r.queueSetLocked(draft.Session)
		for _, role := range models.Roles {
			var members []models.ParticipantID
			for slot, member := range draft.Participants {
				if draft.Roles[slot] == role {
					members = append(members, member)
				}
			}
			q.pushFront(role, members...)
		}
		for _, member := range draft.Participants {
			r.queued[member] = draft.Session
		}
		e.reportLengthsLocked(draft.Session, q)
	}
	r.mu.Unlock()

	e.metrics.AddFormationFailure(reason)
	scope.Log.WithError(cause).WithFields(logrus.Fields{
		"draft":   draft.ID,
		"session": draft.Session,
		"reason":  reason,
		"requeue": requeue,
	}).Warn("draft abandoned")
}
