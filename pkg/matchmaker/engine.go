// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package matchmaker

import (
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-trio-queue/pkg/config"
	"github.com/AccelByte/extend-trio-queue/pkg/constants"
	"github.com/AccelByte/extend-trio-queue/pkg/envelope"
	"github.com/AccelByte/extend-trio-queue/pkg/metrics"
	"github.com/AccelByte/extend-trio-queue/pkg/models"
)

// ErrInvalidJoin is returned when the session or participant id is empty.
var ErrInvalidJoin = errors.New("invalid join request")

// Engine accepts joins and leaves for every session and drafts groups as soon as
// a formation policy is satisfied.
type Engine struct {
	cfg        *config.Config
	registry   *Registry
	membership MembershipStore
	metrics    metrics.QueueMetrics
	now        func() time.Time
}

func New(cfg *config.Config, membership MembershipStore, queueMetrics metrics.QueueMetrics) *Engine {
	return &Engine{
		cfg:        cfg,
		registry:   NewRegistry(),
		membership: membership,
		metrics:    queueMetrics,
		now:        time.Now,
	}
}

// Registry exposes the queue state, mostly for inspection.
func (e *Engine) Registry() *Registry {
	return e.registry
}

/*
Join places participant in the role lane of session. The outcome is one of:
  - Joined: the participant waits in the lane
  - AlreadyQueued: the participant already waits in some lane of any session
  - AlreadyInActiveMatch: the participant belongs to an uncommitted draft or an active match
  - GroupFormed: the join completed a group; Draft must be passed to Form

Membership is read before taking the registry lock. If a draft was released while
the read was in flight the lock is dropped and the read repeated, so a participant
whose match was committed in the meantime is never queued. After
constants.JoinMembershipAttempts such retries the last read runs under the lock.
*/
func (e *Engine) Join(rootScope *envelope.Scope, session models.SessionID, role models.Role, participant models.ParticipantID) (models.JoinOutcome, error) {
	scope := rootScope.NewChildScope("matchmaker.Join")
	defer scope.Finish()

	scope.SetAttributes(envelope.SessionTag, string(session))
	scope.SetAttributes(envelope.RoleTag, role.String())
	scope.SetAttributes(envelope.ParticipantTag, string(participant))

	if !role.Valid() {
		return models.JoinOutcome{}, fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}
	if session == "" || participant == "" {
		return models.JoinOutcome{}, fmt.Errorf("%w: session and participant are required", ErrInvalidJoin)
	}

	var outcome models.JoinOutcome
	for attempt := 1; ; attempt++ {
		epoch := e.registry.epoch()
		active, err := e.membership.IsActive(scope.Ctx, string(participant))
		if err != nil {
			return models.JoinOutcome{}, fmt.Errorf("%w: %w", ErrMembershipUnavailable, err)
		}

		var retry bool
		outcome, retry, err = e.joinLocked(scope, session, role, participant, epoch, active, attempt >= constants.JoinMembershipAttempts)
		if err != nil {
			return models.JoinOutcome{}, err
		}
		if !retry {
			break
		}
		scope.Log.WithField("attempt", attempt).Debug("draft released during membership read, reading again")
	}

	e.metrics.AddJoinOutcome(role.String(), outcome.Status.String())
	scope.SetAttributes(envelope.OutcomeTag, outcome.Status.String())

	log := scope.Log.WithFields(logrus.Fields{
		"session":     session,
		"role":        role.String(),
		"participant": participant,
		"outcome":     outcome.Status.String(),
	})
	if outcome.Draft != nil {
		log.WithFields(logrus.Fields{
			"draft":        outcome.Draft.ID,
			"mode":         outcome.Draft.Mode.String(),
			"participants": outcome.Draft.Participants.Strings(),
		}).Info("group drafted")
	} else {
		log.Debug("join handled")
	}

	return outcome, nil
}

// joinLocked applies a join under the registry lock. It asks for a retry when a
// draft was released after epoch and the membership read saw no match, unless
// final is set, in which case it reads membership again while holding the lock.
func (e *Engine) joinLocked(scope *envelope.Scope, session models.SessionID, role models.Role, participant models.ParticipantID, epoch uint64, active, final bool) (models.JoinOutcome, bool, error) {
	r := e.registry
	r.mu.Lock()
	lockedAt := time.Now()
	defer func() {
		r.mu.Unlock()
		if held := time.Since(lockedAt); held > constants.RegistryLockWarnThreshold {
			scope.Log.WithField("held", held.String()).Warn("registry lock held longer than expected")
		}
	}()

	if _, ok := r.queued[participant]; ok {
		return models.JoinOutcome{Status: models.JoinStatusAlreadyQueued, Role: role}, false, nil
	}
	if _, ok := r.pending[participant]; ok {
		return models.JoinOutcome{Status: models.JoinStatusAlreadyInActiveMatch, Role: role}, false, nil
	}

	if !active && r.epoch() != epoch {
		if !final {
			return models.JoinOutcome{}, true, nil
		}
		var err error
		active, err = e.membership.IsActive(scope.Ctx, string(participant))
		if err != nil {
			return models.JoinOutcome{}, false, fmt.Errorf("%w: %w", ErrMembershipUnavailable, err)
		}
	}
	if active {
		return models.JoinOutcome{Status: models.JoinStatusAlreadyInActiveMatch, Role: role}, false, nil
	}

	q := r.queueSetLocked(session)
	q.Push(role, participant)
	r.queued[participant] = session

	outcome := models.JoinOutcome{Status: models.JoinStatusJoined, Role: role}

	policy := GetFormationPolicy(role)
	if policy.Ready(q) {
		group, roles := policy.Draft(q)
		draft := models.Draft{
			ID:           ulid.Make().String(),
			Session:      session,
			Participants: group,
			Roles:        roles,
			Mode:         policy.Mode(),
			DraftedAt:    e.now().UTC(),
		}
		for _, member := range group {
			delete(r.queued, member)
			r.pending[member] = draft.ID
		}
		outcome.Status = models.JoinStatusGroupFormed
		outcome.Draft = &draft
	}

	e.reportLengthsLocked(session, q)

	return outcome, false, nil
}

// Leave removes participant from session's lanes. It is idempotent.
func (e *Engine) Leave(rootScope *envelope.Scope, session models.SessionID, participant models.ParticipantID) models.LeaveOutcome {
	scope := rootScope.NewChildScope("matchmaker.Leave")
	defer scope.Finish()

	scope.SetAttributes(envelope.SessionTag, string(session))
	scope.SetAttributes(envelope.ParticipantTag, string(participant))

	r := e.registry
	r.mu.Lock()
	outcome := models.LeaveNotQueued
	if queuedIn, ok := r.queued[participant]; ok && queuedIn == session {
		q := r.queueSetLocked(session)
		if q.Remove(participant) {
			delete(r.queued, participant)
			e.reportLengthsLocked(session, q)
			outcome = models.LeaveRemoved
		}
	}
	r.mu.Unlock()

	scope.SetAttributes(envelope.OutcomeTag, outcome.String())
	scope.Log.WithFields(logrus.Fields{
		"session":     session,
		"participant": participant,
		"outcome":     outcome.String(),
	}).Debug("leave handled")

	return outcome
}

func (e *Engine) reportLengthsLocked(session models.SessionID, q *QueueSet) {
	for _, role := range models.Roles {
		e.metrics.SetQueueLength(string(session), role.String(), q.Len(role))
	}
}
