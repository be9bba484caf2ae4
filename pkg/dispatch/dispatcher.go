// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package dispatch turns inbound transport signals into engine calls.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-trio-queue/pkg/config"
	"github.com/AccelByte/extend-trio-queue/pkg/envelope"
	"github.com/AccelByte/extend-trio-queue/pkg/matchmaker"
	"github.com/AccelByte/extend-trio-queue/pkg/membership"
	"github.com/AccelByte/extend-trio-queue/pkg/metrics"
	"github.com/AccelByte/extend-trio-queue/pkg/models"
	"github.com/AccelByte/extend-trio-queue/pkg/settlement"
	"github.com/AccelByte/extend-trio-queue/pkg/storage"
	"github.com/AccelByte/extend-trio-queue/pkg/storage/backend"
	"github.com/AccelByte/extend-trio-queue/pkg/telemetry"
)

// ErrUnknownSignal is returned for a nil signal or a type outside the closed set.
var ErrUnknownSignal = errors.New("unknown signal")

type Dispatcher struct {
	queue   *matchmaker.Engine
	settle  *settlement.Engine
	opener  matchmaker.ChannelOpener
	backend storage.Backend
}

func New(queue *matchmaker.Engine, settle *settlement.Engine, opener matchmaker.ChannelOpener) *Dispatcher {
	return &Dispatcher{queue: queue, settle: settle, opener: opener}
}

/*
Open builds a dispatcher over the storage backend selected by cfg. Both engines
share one membership guard. sink may be nil. Close releases the backend.
*/
func Open(cfg *config.Config, opener matchmaker.ChannelOpener, sink settlement.ReportSink, queueMetrics metrics.QueueMetrics) (*Dispatcher, error) {
	store, err := backend.Open(cfg)
	if err != nil {
		return nil, err
	}
	guard := membership.NewGuard(store)

	d := New(
		matchmaker.New(cfg, guard, queueMetrics),
		settlement.New(cfg, guard, store, sink, queueMetrics),
		opener,
	)
	d.backend = store
	return d, nil
}

func (d *Dispatcher) Close() error {
	if d.backend == nil {
		return nil
	}
	return d.backend.Close()
}

func (d *Dispatcher) Queue() *matchmaker.Engine {
	return d.queue
}

func (d *Dispatcher) Settlement() *settlement.Engine {
	return d.settle
}

// HandleRemote is Handle continuing the trace carried in the transport headers.
func (d *Dispatcher) HandleRemote(ctx context.Context, headers map[string]string, signal Signal) (Result, error) {
	return d.Handle(telemetry.Extract(ctx, headers), signal)
}

// Handle routes one signal. Policy rejections are reported in the Result, errors
// are reserved for collaborator failures and invalid input.
func (d *Dispatcher) Handle(ctx context.Context, signal Signal) (Result, error) {
	if signal == nil {
		return Result{}, ErrUnknownSignal
	}

	scope := envelope.ChildScopeFromRemoteScope(ctx, "dispatch.Handle")
	defer scope.Finish()

	result := Result{Kind: signal.Kind()}
	scope = scope.WithFields(logrus.Fields{"signal": result.Kind.String()})

	var err error
	switch s := signal.(type) {
	case JoinRequested:
		err = d.join(scope, s, &result)
	case LeaveRequested:
		result.Leave = d.queue.Leave(scope, s.Session, s.Participant)
	case EndRequested:
		var end models.EndRequest
		end, err = d.settle.RequestEnd(scope, s.Match, s.Participant)
		result.End = &end
	case EndConfirmed:
		confirmer := s.Participant
		var outcome models.SettlementOutcome
		outcome, err = d.settle.Conclude(scope, s.Match, &confirmer)
		result.Settlement = &outcome
	case ChannelArchived:
		var outcome models.SettlementOutcome
		outcome, err = d.settle.Archive(scope, s.Match)
		result.Settlement = &outcome
	case ReportFiled:
		var report models.Report
		report, err = d.settle.Report(scope, s.Request)
		if err == nil {
			result.Report = &report
		}
	case ReputationQueried:
		result.Reputation, result.ReputationFound, err = d.settle.Reputation(scope, s.Participant)
	default:
		err = fmt.Errorf("%w: %T", ErrUnknownSignal, signal)
	}

	if err != nil {
		scope.Log.WithError(err).Warn("signal failed")
		return result, err
	}
	return result, nil
}

func (d *Dispatcher) join(scope *envelope.Scope, s JoinRequested, result *Result) error {
	outcome, err := d.queue.Join(scope, s.Session, s.Role, s.Participant)
	if err != nil {
		return err
	}
	result.Join = &outcome
	if outcome.Status != models.JoinStatusGroupFormed {
		return nil
	}

	match, err := d.queue.Form(scope, *outcome.Draft, d.opener)
	if err != nil {
		return err
	}
	result.Match = &match
	scope.Log.WithFields(logrus.Fields{
		"match":   match.ID,
		"session": s.Session,
	}).Debug("join formed a match")
	return nil
}
