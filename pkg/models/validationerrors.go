// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

import (
	"errors"
)

var (
	ValidationErrorNoTarget        = errors.New("at least one participant should be reported")
	ValidationErrorTooManyTargets  = errors.New("at most two participants can be reported at once")
	ValidationErrorEmptyTarget     = errors.New("reported participant cannot be empty")
	ValidationErrorDuplicateTarget = errors.New("reported participant is listed twice")
	ValidationErrorEmptyReason     = errors.New("report reason cannot be empty")
	ValidationErrorReasonTooLong   = errors.New("report reason exceeds max length")
	ValidationErrorNotACandidate   = errors.New("reported participant is not on the ballot")
	ValidationErrorUnknownBallot   = errors.New("ballot does not exist")
)

var validationErrorCodeMap = map[error]int{
	ValidationErrorNoTarget:        520101,
	ValidationErrorTooManyTargets:  520102,
	ValidationErrorEmptyTarget:     520103,
	ValidationErrorDuplicateTarget: 520104,
	ValidationErrorEmptyReason:     520109,
	ValidationErrorReasonTooLong:   520105,
	ValidationErrorNotACandidate:   520106,
	ValidationErrorUnknownBallot:   520108,
}

// ValidationErrorCode returns a code for the error.
// It returns 20002 if the error is not registered in the map.
func ValidationErrorCode(err error) int {
	for registered, code := range validationErrorCodeMap {
		if errors.Is(err, registered) {
			return code
		}
	}
	return 20002
}
