// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

// JoinStatus is the result of a join request.
type JoinStatus int

const (
	JoinStatusJoined JoinStatus = iota + 1
	JoinStatusAlreadyQueued
	JoinStatusAlreadyInActiveMatch
	JoinStatusGroupFormed
)

func (s JoinStatus) String() string {
	switch s {
	case JoinStatusJoined:
		return "joined"
	case JoinStatusAlreadyQueued:
		return "already_queued"
	case JoinStatusAlreadyInActiveMatch:
		return "already_in_active_match"
	case JoinStatusGroupFormed:
		return "group_formed"
	}
	return "unknown"
}

// JoinOutcome carries the drafted group when Status is JoinStatusGroupFormed.
type JoinOutcome struct {
	Status JoinStatus
	Role   Role
	Draft  *Draft
}

// LeaveOutcome is the result of a leave request.
type LeaveOutcome int

const (
	LeaveRemoved LeaveOutcome = iota + 1
	LeaveNotQueued
)

func (o LeaveOutcome) String() string {
	switch o {
	case LeaveRemoved:
		return "removed"
	case LeaveNotQueued:
		return "not_queued"
	}
	return "unknown"
}

// Trigger is the event that concluded a match.
type Trigger int

const (
	TriggerConfirmation Trigger = iota + 1
	TriggerArchival
)

func (t Trigger) String() string {
	switch t {
	case TriggerConfirmation:
		return "confirmation"
	case TriggerArchival:
		return "archival"
	}
	return "unknown"
}

// EndStatus is the result of asking to end a match.
type EndStatus int

const (
	EndRequested EndStatus = iota + 1
	EndNoActiveMatch
	EndNotAMember
)

func (s EndStatus) String() string {
	switch s {
	case EndRequested:
		return "end_requested"
	case EndNoActiveMatch:
		return "no_active_match"
	case EndNotAMember:
		return "not_a_member"
	}
	return "unknown"
}

// EndRequest lists who may confirm the end of a match.
type EndRequest struct {
	Status     EndStatus
	MatchID    MatchID
	Requester  ParticipantID
	Confirmers []ParticipantID
}

// SettlementStatus is the result of a conclude call.
type SettlementStatus int

const (
	SettlementSettled SettlementStatus = iota + 1
	SettlementNoActiveMatch
	SettlementConfirmationRejected
)

func (s SettlementStatus) String() string {
	switch s {
	case SettlementSettled:
		return "settled"
	case SettlementNoActiveMatch:
		return "no_active_match"
	case SettlementConfirmationRejected:
		return "confirmation_rejected"
	}
	return "unknown"
}

// SettlementOutcome describes what a conclude call did. Match, Deltas and Ballots
// are only set when Status is SettlementSettled; RejectReason only when the
// confirmation was rejected.
type SettlementOutcome struct {
	Status       SettlementStatus
	Trigger      Trigger
	Match        Match
	Deltas       []Delta
	Ballots      []Ballot
	RejectReason string
}
