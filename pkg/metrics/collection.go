// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type prometheusMetrics struct {
	queueLength        prometheus.GaugeVec
	joinOutcomes       prometheus.CounterVec
	matchesFormed      prometheus.CounterVec
	formationFailures  prometheus.CounterVec
	settlements        prometheus.CounterVec
	settlementDuration prometheus.HistogramVec
	reputationChanges  prometheus.CounterVec
	reportsFiled       prometheus.CounterVec
}

func setupPrometheusMetrics(registry *prometheus.Registry) prometheusMetrics {
	factory := promauto.With(registry)

	queueLength := factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trio_queue_length",
			Help: "Number of participants waiting per session and role lane",
		}, []string{"session", "role"})

	joinOutcomes := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trio_queue_join_outcomes_total",
			Help: "Join requests by role and outcome",
		}, []string{"role", "outcome"})

	matchesFormed := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trio_queue_matches_formed_total",
			Help: "Matches committed to the membership store by mode",
		}, []string{"mode"})

	formationFailures := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trio_queue_formation_failures_total",
			Help: "Drafted groups that could not be formed",
		}, []string{"reason"})

	settlements := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trio_queue_settlements_total",
			Help: "Settled matches by mode and trigger",
		}, []string{"mode", "trigger"})

	//nolint:promlinter
	settlementDuration := factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trio_queue_settlement_elapsed_time_ms",
			Help:    "A histogram of settlement elapsed time in milliseconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"trigger"})

	reputationChanges := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trio_queue_reputation_changes_total",
			Help: "Reputation deltas applied by reason and sign",
		}, []string{"reason", "sign"})

	reportsFiled := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trio_queue_reports_filed_total",
			Help: "Reports filed by number of reported participants",
		}, []string{"targets"})

	return prometheusMetrics{
		queueLength:        *queueLength,
		joinOutcomes:       *joinOutcomes,
		matchesFormed:      *matchesFormed,
		formationFailures:  *formationFailures,
		settlements:        *settlements,
		settlementDuration: *settlementDuration,
		reputationChanges:  *reputationChanges,
		reportsFiled:       *reportsFiled,
	}
}

func (metrics prometheusMetrics) SetQueueLength(session string, role string, length int) {
	metrics.queueLength.With(prometheus.Labels{"session": session, "role": role}).Set(float64(length))
}

func (metrics prometheusMetrics) AddJoinOutcome(role string, outcome string) {
	metrics.joinOutcomes.With(prometheus.Labels{"role": role, "outcome": outcome}).Inc()
}

func (metrics prometheusMetrics) AddMatchFormed(mode string) {
	metrics.matchesFormed.With(prometheus.Labels{"mode": mode}).Inc()
}

func (metrics prometheusMetrics) AddFormationFailure(reason string) {
	metrics.formationFailures.With(prometheus.Labels{"reason": reason}).Inc()
}

func (metrics prometheusMetrics) AddSettlement(mode string, trigger string) {
	metrics.settlements.With(prometheus.Labels{"mode": mode, "trigger": trigger}).Inc()
}

func (metrics prometheusMetrics) AddSettlementElapsedTimeMs(trigger string, elapsedTime time.Duration) {
	metrics.settlementDuration.With(prometheus.Labels{"trigger": trigger}).Observe(float64(elapsedTime.Milliseconds()))
}

func (metrics prometheusMetrics) AddReputationChange(reason string, delta int) {
	sign := "positive"
	if delta < 0 {
		sign = "negative"
	}
	metrics.reputationChanges.With(prometheus.Labels{"reason": reason, "sign": sign}).Inc()
}

func (metrics prometheusMetrics) AddReportFiled(targets int) {
	metrics.reportsFiled.With(prometheus.Labels{"targets": strconv.Itoa(targets)}).Inc()
}
