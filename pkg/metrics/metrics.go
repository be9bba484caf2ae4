// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type QueueMetrics interface {
	SetQueueLength(session string, role string, length int)
	AddJoinOutcome(role string, outcome string)
	AddMatchFormed(mode string)
	AddFormationFailure(reason string)
	AddSettlement(mode string, trigger string)
	AddSettlementElapsedTimeMs(trigger string, elapsedTime time.Duration)
	AddReputationChange(reason string, delta int)
	AddReportFiled(targets int)
}

func NewMetrics(registry *prometheus.Registry) QueueMetrics {
	return setupPrometheusMetrics(registry)
}
