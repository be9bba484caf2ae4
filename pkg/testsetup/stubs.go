// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package testsetup

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/AccelByte/extend-trio-queue/pkg/models"
)

// StubChannelOpener names every opened channel with a fresh ulid, or fails with Err.
type StubChannelOpener struct {
	Err   error
	Delay time.Duration

	mu     sync.Mutex
	opened []models.Draft
}

func (s *StubChannelOpener) OpenChannel(ctx context.Context, draft models.Draft) (models.MatchID, error) {
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if s.Err != nil {
		return "", s.Err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened = append(s.opened, draft)
	return models.MatchID(ulid.Make().String()), nil
}

// Opened returns the drafts a channel was opened for, in call order.
func (s *StubChannelOpener) Opened() []models.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Draft(nil), s.opened...)
}

// StubReportSink keeps every filed report.
type StubReportSink struct {
	Err error

	mu      sync.Mutex
	reports []models.Report
}

func (s *StubReportSink) FileReport(_ context.Context, report models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report)
	return s.Err
}

func (s *StubReportSink) Reports() []models.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Report(nil), s.reports...)
}

// NewParticipants returns n distinct participant ids.
func NewParticipants(n int) []models.ParticipantID {
	ids := make([]models.ParticipantID, n)
	for i := range ids {
		ids[i] = models.ParticipantID(ulid.Make().String())
	}
	return ids
}
