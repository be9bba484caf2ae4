// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package constants

import "time"

const (
	// RegistryLockWarnThreshold is how long a join may hold the registry lock before it is logged.
	RegistryLockWarnThreshold = 50 * time.Millisecond

	// JoinMembershipAttempts bounds how often a join rereads membership outside the registry lock.
	JoinMembershipAttempts = 3

	// BallotLifetime is how long an unused ballot stays open.
	BallotLifetime = 24 * time.Hour

	// ReportReasonLengthLimit caps REPORT_REASON_MAX_LENGTH.
	ReportReasonLengthLimit = 4096
)

const (
	ArchiveRuleRecorded  = "recorded"
	ArchiveRuleSymmetric = "symmetric"

	StoreDriverMemory = "memory"
	StoreDriverSQLite = "sqlite"
)

const (
	// reputation change source constants.
	ConcludeFunction = "conclude"
	ReportFunction   = "report"

	// formation failure reason constants.
	FormationFailureChannel = "channel_open_failed"
	FormationFailureStore   = "membership_insert_failed"

	// confirmation rejection reason constants.
	RejectReasonNotAMember     = "not_a_member"
	RejectReasonNoEndRequest   = "no_end_request"
	RejectReasonSelfConfirming = "requester_cannot_confirm"
)
