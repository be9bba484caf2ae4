// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package settlement concludes active matches, applies their reputation deltas
// exactly once and runs the review ballots offered afterwards.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-trio-queue/pkg/config"
	"github.com/AccelByte/extend-trio-queue/pkg/constants"
	"github.com/AccelByte/extend-trio-queue/pkg/envelope"
	"github.com/AccelByte/extend-trio-queue/pkg/metrics"
	"github.com/AccelByte/extend-trio-queue/pkg/models"
	"github.com/AccelByte/extend-trio-queue/pkg/storage"
)

var (
	// ErrSettlementFailed wraps storage failures while settling a match.
	ErrSettlementFailed = errors.New("settlement failed")
	// ErrReportFailed wraps storage failures while applying a report penalty.
	ErrReportFailed = errors.New("report failed")
)

// MatchReader looks up active matches; *membership.Guard satisfies it.
type MatchReader interface {
	GetMatch(ctx context.Context, id models.MatchID) (models.Match, bool, error)
}

// Store is the storage the engine writes through.
type Store interface {
	storage.Settler
	storage.ReputationLedger
}

// ReportSink receives every filed report, e.g. a moderation log channel.
type ReportSink interface {
	FileReport(ctx context.Context, report models.Report) error
}

type settleCall struct {
	done    chan struct{}
	settled bool
}

type Engine struct {
	cfg     *config.Config
	matches MatchReader
	store   Store
	sink    ReportSink
	metrics metrics.QueueMetrics
	now     func() time.Time

	mu          sync.Mutex
	endRequests map[models.MatchID]models.ParticipantID
	inFlight    map[models.MatchID]*settleCall
	ballots     map[string]*models.Ballot
}

// New builds a settlement engine. sink may be nil.
func New(cfg *config.Config, matches MatchReader, store Store, sink ReportSink, queueMetrics metrics.QueueMetrics) *Engine {
	return &Engine{
		cfg:         cfg,
		matches:     matches,
		store:       store,
		sink:        sink,
		metrics:     queueMetrics,
		now:         time.Now,
		endRequests: make(map[models.MatchID]models.ParticipantID),
		inFlight:    make(map[models.MatchID]*settleCall),
		ballots:     make(map[string]*models.Ballot),
	}
}

func (e *Engine) rewards() Rewards {
	return Rewards{Symmetric: e.cfg.SymmetricReward, Asymmetric: e.cfg.AsymmetricReward}
}

// RequestEnd records requester's wish to end the match and returns the members
// allowed to confirm it. A later request replaces an earlier one.
func (e *Engine) RequestEnd(rootScope *envelope.Scope, matchID models.MatchID, requester models.ParticipantID) (models.EndRequest, error) {
	scope := rootScope.NewChildScope("settlement.RequestEnd")
	defer scope.Finish()

	scope.SetAttributes(envelope.MatchTag, string(matchID))
	scope.SetAttributes(envelope.ParticipantTag, string(requester))

	request := models.EndRequest{MatchID: matchID, Requester: requester}

	match, ok, err := e.matches.GetMatch(scope.Ctx, matchID)
	if err != nil {
		return models.EndRequest{}, fmt.Errorf("%w: get match %s: %w", ErrSettlementFailed, matchID, err)
	}
	switch {
	case !ok:
		request.Status = models.EndNoActiveMatch
	case !match.Participants.Contains(requester):
		request.Status = models.EndNotAMember
	default:
		e.mu.Lock()
		e.endRequests[matchID] = requester
		e.mu.Unlock()
		request.Status = models.EndRequested
		request.Confirmers = match.Participants.Others(requester)
	}

	scope.SetAttributes(envelope.OutcomeTag, request.Status.String())
	scope.Log.WithFields(logrus.Fields{
		"match":     matchID,
		"requester": requester,
		"outcome":   request.Status.String(),
	}).Debug("end request handled")

	return request, nil
}

/*
Conclude settles a match. A non-nil confirmer is an explicit confirmation and must
be a member other than the one who requested the end; nil means the match channel
was archived. Settling an absent match is a no-op reported as NoActiveMatch, so
duplicate signals never pay out twice.
*/
func (e *Engine) Conclude(rootScope *envelope.Scope, matchID models.MatchID, confirmer *models.ParticipantID) (models.SettlementOutcome, error) {
	scope := rootScope.NewChildScope("settlement.Conclude")
	defer scope.Finish()

	trigger := models.TriggerArchival
	if confirmer != nil {
		trigger = models.TriggerConfirmation
		scope.SetAttributes(envelope.ParticipantTag, string(*confirmer))
	}
	scope.SetAttributes(envelope.MatchTag, string(matchID))

	log := scope.Log.WithFields(logrus.Fields{
		"match":   matchID,
		"trigger": trigger.String(),
	})

	if confirmer != nil {
		reason, err := e.checkConfirmation(scope.Ctx, matchID, *confirmer)
		if err != nil {
			return models.SettlementOutcome{}, err
		}
		if reason != "" {
			log.WithField("reason", reason).Info("confirmation rejected")
			return models.SettlementOutcome{
				Status:       models.SettlementConfirmationRejected,
				Trigger:      trigger,
				RejectReason: reason,
			}, nil
		}
	}

	start := time.Now()
	outcome, err := e.settleOnce(scope.Ctx, matchID, trigger)
	if err != nil {
		log.WithError(err).Error("unable to settle match")
		return models.SettlementOutcome{}, err
	}

	scope.SetAttributes(envelope.OutcomeTag, outcome.Status.String())
	if outcome.Status != models.SettlementSettled {
		log.Debug("match already settled or never existed")
		return outcome, nil
	}

	scope.SetAttributes(envelope.ModeTag, outcome.Match.Mode.String())
	e.metrics.AddSettlement(outcome.Match.Mode.String(), trigger.String())
	e.metrics.AddSettlementElapsedTimeMs(trigger.String(), time.Since(start))
	for _, delta := range outcome.Deltas {
		e.metrics.AddReputationChange(constants.ConcludeFunction, delta.Amount)
	}

	outcome.Ballots = e.issueBallots(outcome.Match)

	log.WithFields(logrus.Fields{
		"mode":   outcome.Match.Mode.String(),
		"deltas": len(outcome.Deltas),
	}).Info("match settled")

	return outcome, nil
}

// Archive is Conclude for a channel that was archived without confirmation.
func (e *Engine) Archive(rootScope *envelope.Scope, matchID models.MatchID) (models.SettlementOutcome, error) {
	return e.Conclude(rootScope, matchID, nil)
}

// checkConfirmation returns a rejection reason, or "" when confirmer may conclude the match.
func (e *Engine) checkConfirmation(ctx context.Context, matchID models.MatchID, confirmer models.ParticipantID) (string, error) {
	match, ok, err := e.matches.GetMatch(ctx, matchID)
	if err != nil {
		return "", fmt.Errorf("%w: get match %s: %w", ErrSettlementFailed, matchID, err)
	}
	if !ok {
		// absent matches fall through to the idempotent no-op
		return "", nil
	}
	if !match.Participants.Contains(confirmer) {
		return constants.RejectReasonNotAMember, nil
	}

	e.mu.Lock()
	requester, requested := e.endRequests[matchID]
	e.mu.Unlock()

	if !requested {
		return constants.RejectReasonNoEndRequest, nil
	}
	if requester == confirmer {
		return constants.RejectReasonSelfConfirming, nil
	}
	return "", nil
}

// settleOnce collapses concurrent conclusions of one match onto a single store call.
func (e *Engine) settleOnce(ctx context.Context, matchID models.MatchID, trigger models.Trigger) (models.SettlementOutcome, error) {
	for {
		e.mu.Lock()
		call, busy := e.inFlight[matchID]
		if !busy {
			call = &settleCall{done: make(chan struct{})}
			e.inFlight[matchID] = call
			e.mu.Unlock()
			break
		}
		e.mu.Unlock()

		select {
		case <-call.done:
		case <-ctx.Done():
			return models.SettlementOutcome{}, fmt.Errorf("%w: %w", ErrSettlementFailed, ctx.Err())
		}
		if call.settled {
			return models.SettlementOutcome{Status: models.SettlementNoActiveMatch, Trigger: trigger}, nil
		}
	}

	rule := Rule(trigger, e.cfg.ArchiveSettlementRule, e.rewards())
	match, deltas, err := e.store.SettleMatch(ctx, matchID, rule)

	e.mu.Lock()
	call := e.inFlight[matchID]
	delete(e.inFlight, matchID)
	if err == nil {
		call.settled = true
		delete(e.endRequests, matchID)
	}
	e.mu.Unlock()
	close(call.done)

	if errors.Is(err, storage.ErrNotFound) {
		e.mu.Lock()
		delete(e.endRequests, matchID)
		e.mu.Unlock()
		return models.SettlementOutcome{Status: models.SettlementNoActiveMatch, Trigger: trigger}, nil
	}
	if err != nil {
		return models.SettlementOutcome{}, fmt.Errorf("%w: match %s: %w", ErrSettlementFailed, matchID, err)
	}

	return models.SettlementOutcome{
		Status:  models.SettlementSettled,
		Trigger: trigger,
		Match:   match,
		Deltas:  deltas,
	}, nil
}

// Reputation returns the participant's score; found is false when it was never written.
func (e *Engine) Reputation(rootScope *envelope.Scope, participant models.ParticipantID) (int, bool, error) {
	scope := rootScope.NewChildScope("settlement.Reputation")
	defer scope.Finish()

	scope.SetAttributes(envelope.ParticipantTag, string(participant))

	score, err := e.store.Reputation(scope.Ctx, participant)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read reputation of %s: %w", participant, err)
	}
	return score, true, nil
}
