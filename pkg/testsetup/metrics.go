// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package testsetup

import (
	"time"

	"github.com/AccelByte/extend-trio-queue/pkg/metrics"
)

type stubMetricsCollection struct{}

func (s stubMetricsCollection) SetQueueLength(session string, role string, length int) {
}

func (s stubMetricsCollection) AddJoinOutcome(role string, outcome string) {
}

func (s stubMetricsCollection) AddMatchFormed(mode string) {
}

func (s stubMetricsCollection) AddFormationFailure(reason string) {
}

func (s stubMetricsCollection) AddSettlement(mode string, trigger string) {
}

func (s stubMetricsCollection) AddSettlementElapsedTimeMs(trigger string, elapsedTime time.Duration) {
}

func (s stubMetricsCollection) AddReputationChange(reason string, delta int) {
}

func (s stubMetricsCollection) AddReportFiled(targets int) {
}

func NewMetrics() metrics.QueueMetrics {
	return stubMetricsCollection{}
}
