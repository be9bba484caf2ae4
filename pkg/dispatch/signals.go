// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package dispatch

import (
	"github.com/AccelByte/extend-trio-queue/pkg/models"
)

// Kind identifies a Signal variant.
type Kind int

const (
	KindJoinRequested Kind = iota + 1
	KindLeaveRequested
	KindEndRequested
	KindEndConfirmed
	KindChannelArchived
	KindReportFiled
	KindReputationQueried
)

func (k Kind) String() string {
	switch k {
	case KindJoinRequested:
		return "join_requested"
	case KindLeaveRequested:
		return "leave_requested"
	case KindEndRequested:
		return "end_requested"
	case KindEndConfirmed:
		return "end_confirmed"
	case KindChannelArchived:
		return "channel_archived"
	case KindReportFiled:
		return "report_filed"
	case KindReputationQueried:
		return "reputation_queried"
	}
	return "unknown"
}

// Signal is an inbound event from the transport. The set is closed: only the
// types in this file implement it.
type Signal interface {
	Kind() Kind
	sealed()
}

type JoinRequested struct {
	Session     models.SessionID
	Role        models.Role
	Participant models.ParticipantID
}

type LeaveRequested struct {
	Session     models.SessionID
	Participant models.ParticipantID
}

// EndRequested is a member asking to end their match.
type EndRequested struct {
	Match       models.MatchID
	Participant models.ParticipantID
}

// EndConfirmed is a member confirming someone else's end request.
type EndConfirmed struct {
	Match       models.MatchID
	Participant models.ParticipantID
}

// ChannelArchived is the match channel being archived without confirmation.
type ChannelArchived struct {
	Match models.MatchID
}

type ReportFiled struct {
	Request models.ReportRequest
}

type ReputationQueried struct {
	Participant models.ParticipantID
}

func (JoinRequested) Kind() Kind     { return KindJoinRequested }
func (LeaveRequested) Kind() Kind    { return KindLeaveRequested }
func (EndRequested) Kind() Kind      { return KindEndRequested }
func (EndConfirmed) Kind() Kind      { return KindEndConfirmed }
func (ChannelArchived) Kind() Kind   { return KindChannelArchived }
func (ReportFiled) Kind() Kind       { return KindReportFiled }
func (ReputationQueried) Kind() Kind { return KindReputationQueried }

func (JoinRequested) sealed()     {}
func (LeaveRequested) sealed()    {}
func (EndRequested) sealed()      {}
func (EndConfirmed) sealed()      {}
func (ChannelArchived) sealed()   {}
func (ReportFiled) sealed()       {}
func (ReputationQueried) sealed() {}

// Result carries the outcome of the handled signal; only the fields of its Kind are set.
type Result struct {
	Kind Kind

	Join  *models.JoinOutcome
	Match *models.Match // set when a join formed a match
	Leave models.LeaveOutcome

	End        *models.EndRequest
	Settlement *models.SettlementOutcome
	Report     *models.Report

	Reputation      int
	ReputationFound bool
}
