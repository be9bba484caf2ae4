// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

import (
	"time"

	validator "github.com/AccelByte/justice-input-validation-go"
)

// Ballot lets one member of a settled match report the other members.
// Candidates shrink as reports are filed. An empty ballot is closed and discarded.
type Ballot struct {
	ID         string
	MatchID    MatchID
	Reporter   ParticipantID
	Candidates []ParticipantID
	IssuedAt   time.Time
}

func (b Ballot) Closed() bool {
	return len(b.Candidates) == 0
}

// ReportRequest is filed against a ballot.
type ReportRequest struct {
	BallotID string          `json:"ballot_id" valid:"stringlength(1|64)"`
	Targets  []ParticipantID `json:"targets"`
	Reason   string          `json:"reason"    valid:"stringlength(1|4096)"` // upper bound is constants.ReportReasonLengthLimit
}

func (r ReportRequest) Validate(maxReasonLength int) error {
	if r.BallotID == "" {
		return ValidationErrorUnknownBallot
	}
	if r.Reason == "" {
		return ValidationErrorEmptyReason
	}
	if len(r.Targets) == 0 {
		return ValidationErrorNoTarget
	}
	if len(r.Targets) > GroupSize-1 {
		return ValidationErrorTooManyTargets
	}
	if len(r.Reason) > maxReasonLength {
		return ValidationErrorReasonTooLong
	}
	seen := make(map[ParticipantID]struct{}, len(r.Targets))
	for _, target := range r.Targets {
		if target == "" {
			return ValidationErrorEmptyTarget
		}
		if _, ok := seen[target]; ok {
			return ValidationErrorDuplicateTarget
		}
		seen[target] = struct{}{}
	}
	if _, err := validator.ValidateStruct(r); err != nil {
		return err
	}
	return nil
}

// Report is a filed report, handed to the moderation log.
type Report struct {
	ID       string
	BallotID string
	MatchID  MatchID
	Reporter ParticipantID
	Targets  []ParticipantID
	Reason   string
	Deltas   []Delta
	FiledAt  time.Time
}
