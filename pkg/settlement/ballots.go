// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package settlement

import (
	"fmt"

	"github.com/elliotchance/pie/v2"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-trio-queue/pkg/constants"
	"github.com/AccelByte/extend-trio-queue/pkg/envelope"
	"github.com/AccelByte/extend-trio-queue/pkg/models"
)

// issueBallots hands every member of a settled match a ballot naming the other two.
// Ballots older than constants.BallotLifetime are dropped first.
func (e *Engine) issueBallots(match models.Match) []models.Ballot {
	issuedAt := e.now().UTC()
	ballots := make([]models.Ballot, 0, models.GroupSize)

	e.mu.Lock()
	defer e.mu.Unlock()

	for id, ballot := range e.ballots {
		if issuedAt.Sub(ballot.IssuedAt) > constants.BallotLifetime {
			delete(e.ballots, id)
		}
	}

	for _, member := range match.Participants {
		ballot := models.Ballot{
			ID:         ulid.Make().String(),
			MatchID:    match.ID,
			Reporter:   member,
			Candidates: match.Participants.Others(member),
			IssuedAt:   issuedAt,
		}
		stored := ballot
		stored.Candidates = append([]models.ParticipantID(nil), ballot.Candidates...)
		e.ballots[ballot.ID] = &stored
		ballots = append(ballots, ballot)
	}
	return ballots
}

// Ballot returns a copy of the ballot with the remaining candidates.
func (e *Engine) Ballot(id string) (models.Ballot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ballot, ok := e.ballots[id]
	if !ok {
		return models.Ballot{}, false
	}
	copied := *ballot
	copied.Candidates = append([]models.ParticipantID(nil), ballot.Candidates...)
	return copied, true
}

/*
Report files a report from a ballot. Every target must still be a candidate on the
ballot. Each target loses ReportPenalty reputation and leaves the ballot, so a
participant can be reported at most once per ballot. A ballot with no candidates
left is discarded, and later reports against it fail with
ValidationErrorUnknownBallot. The filed report is passed to the report sink when
one is configured.
*/
func (e *Engine) Report(rootScope *envelope.Scope, request models.ReportRequest) (models.Report, error) {
	scope := rootScope.NewChildScope("settlement.Report")
	defer scope.Finish()

	if err := request.Validate(e.cfg.ReportReasonMaxLength); err != nil {
		return models.Report{}, err
	}

	ballot, err := e.claimTargets(request)
	if err != nil {
		return models.Report{}, err
	}

	deltas := make([]models.Delta, 0, len(request.Targets))
	if e.cfg.ReportPenalty != 0 {
		deltas = pie.Map(request.Targets, func(target models.ParticipantID) models.Delta {
			return models.Delta{Participant: target, Amount: -e.cfg.ReportPenalty}
		})
	}

	if err = e.store.ApplyDeltas(scope.Ctx, deltas); err != nil {
		e.restoreTargets(ballot, request.Targets)
		return models.Report{}, fmt.Errorf("%w: apply penalty: %w", ErrReportFailed, err)
	}

	report := models.Report{
		ID:       ulid.Make().String(),
		BallotID: ballot.ID,
		MatchID:  ballot.MatchID,
		Reporter: ballot.Reporter,
		Targets:  request.Targets,
		Reason:   request.Reason,
		Deltas:   deltas,
		FiledAt:  e.now().UTC(),
	}

	scope.SetAttributes(envelope.MatchTag, string(report.MatchID))
	scope.SetAttributes(envelope.ParticipantTag, string(report.Reporter))

	e.metrics.AddReportFiled(len(report.Targets))
	for _, delta := range deltas {
		e.metrics.AddReputationChange(constants.ReportFunction, delta.Amount)
	}

	log := scope.Log.WithFields(logrus.Fields{
		"report":   report.ID,
		"match":    report.MatchID,
		"reporter": report.Reporter,
		"targets":  pie.Map(report.Targets, func(id models.ParticipantID) string { return string(id) }),
	})
	if e.sink != nil {
		if err = e.sink.FileReport(scope.Ctx, report); err != nil {
			log.WithError(err).Warn("unable to deliver report to sink")
		}
	}
	log.Info("report filed")

	return report, nil
}

// claimTargets removes the targets from the ballot, or returns why it cannot.
// The ballot is discarded once it has no candidates left.
func (e *Engine) claimTargets(request models.ReportRequest) (models.Ballot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ballot, ok := e.ballots[request.BallotID]
	if !ok {
		return models.Ballot{}, models.ValidationErrorUnknownBallot
	}
	for _, target := range request.Targets {
		if !pie.Contains(ballot.Candidates, target) {
			return models.Ballot{}, fmt.Errorf("%w: %s", models.ValidationErrorNotACandidate, target)
		}
	}

	ballot.Candidates = pie.Filter(ballot.Candidates, func(candidate models.ParticipantID) bool {
		return !pie.Contains(request.Targets, candidate)
	})
	if ballot.Closed() {
		delete(e.ballots, ballot.ID)
	}
	claimed := *ballot
	claimed.Candidates = append([]models.ParticipantID(nil), ballot.Candidates...)
	return claimed, nil
}

// restoreTargets puts targets back on a claimed ballot, storing it again if it was discarded.
func (e *Engine) restoreTargets(ballot models.Ballot, targets []models.ParticipantID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if stored, ok := e.ballots[ballot.ID]; ok {
		stored.Candidates = append(stored.Candidates, targets...)
		return
	}
	restored := ballot
	restored.Candidates = append(append([]models.ParticipantID(nil), ballot.Candidates...), targets...)
	e.ballots[ballot.ID] = &restored
}
