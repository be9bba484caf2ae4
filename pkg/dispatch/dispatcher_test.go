// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package dispatch

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/AccelByte/extend-trio-queue/pkg/constants"
	"github.com/AccelByte/extend-trio-queue/pkg/matchmaker"
	"github.com/AccelByte/extend-trio-queue/pkg/models"
	"github.com/AccelByte/extend-trio-queue/pkg/testsetup"
)

func openDispatcher(t *testing.T, g testsetup.GomegaWithScope, opener matchmaker.ChannelOpener) (*Dispatcher, *testsetup.StubReportSink) {
	sink := &testsetup.StubReportSink{}
	d, err := Open(g.Config, opener, sink, testsetup.NewMetrics())
	g.Expect(err).ToNot(HaveOccurred())
	t.Cleanup(func() { _ = d.Close() })
	return d, sink
}

// lifecycle drives one asymmetric match from joins to a filed report.
func lifecycle(t *testing.T, g testsetup.GomegaWithScope) {
	ctx := context.Background()
	d, sink := openDispatcher(t, g, &testsetup.StubChannelOpener{})
	p := testsetup.NewParticipants(3)

	result, err := d.Handle(ctx, JoinRequested{Session: "s", Role: models.RoleB, Participant: p[0]})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(result.Kind).To(Equal(KindJoinRequested))
	g.Expect(result.Join.Status).To(Equal(models.JoinStatusJoined))

	_, err = d.Handle(ctx, JoinRequested{Session: "s", Role: models.RoleC, Participant: p[2]})
	g.Expect(err).ToNot(HaveOccurred())

	result, err = d.Handle(ctx, JoinRequested{Session: "s", Role: models.RoleB, Participant: p[1]})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(result.Join.Status).To(Equal(models.JoinStatusGroupFormed))
	g.Expect(result.Match).ToNot(BeNil())
	match := *result.Match
	g.Expect(match.Participants).To(Equal(models.Group{p[0], p[1], p[2]}))

	result, err = d.Handle(ctx, JoinRequested{Session: "s", Role: models.RoleA, Participant: p[0]})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(result.Join.Status).To(Equal(models.JoinStatusAlreadyInActiveMatch))

	result, err = d.Handle(ctx, EndRequested{Match: match.ID, Participant: p[0]})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(result.End.Status).To(Equal(models.EndRequested))

	result, err = d.Handle(ctx, EndConfirmed{Match: match.ID, Participant: p[0]})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(result.Settlement.Status).To(Equal(models.SettlementConfirmationRejected))
	g.Expect(result.Settlement.RejectReason).To(Equal(constants.RejectReasonSelfConfirming))

	result, err = d.Handle(ctx, EndConfirmed{Match: match.ID, Participant: p[1]})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(result.Settlement.Status).To(Equal(models.SettlementSettled))
	ballots := result.Settlement.Ballots

	result, err = d.Handle(ctx, ChannelArchived{Match: match.ID})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(result.Settlement.Status).To(Equal(models.SettlementNoActiveMatch))

	result, err = d.Handle(ctx, ReputationQueried{Participant: p[2]})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(result.ReputationFound).To(BeTrue())
	g.Expect(result.Reputation).To(Equal(2))

	result, err = d.Handle(ctx, ReportFiled{Request: models.ReportRequest{
		BallotID: ballots[0].ID,
		Targets:  []models.ParticipantID{p[2]},
		Reason:   "afk",
	}})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(result.Report).ToNot(BeNil())
	g.Expect(sink.Reports()).To(HaveLen(1))

	result, err = d.Handle(ctx, ReputationQueried{Participant: p[2]})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(result.Reputation).To(Equal(1))

	// settled participants may queue again
	result, err = d.Handle(ctx, JoinRequested{Session: "s", Role: models.RoleA, Participant: p[0]})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(result.Join.Status).To(Equal(models.JoinStatusJoined))

	result, err = d.Handle(ctx, LeaveRequested{Session: "s", Participant: p[0]})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(result.Leave).To(Equal(models.LeaveRemoved))
}

func TestDispatcher_LifecycleInMemory(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	lifecycle(t, g)
}

func TestDispatcher_LifecycleSQLite(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	g.Config.StoreDriver = constants.StoreDriverSQLite
	g.Config.SQLitePath = filepath.Join(t.TempDir(), "trio.db")
	lifecycle(t, g)
}

func TestDispatcher_FormationFailureIsReturned(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	ctx := context.Background()
	d, _ := openDispatcher(t, g, &testsetup.StubChannelOpener{Err: errors.New("missing permission")})
	p := testsetup.NewParticipants(3)

	var (
		result Result
		err    error
	)
	for _, participant := range p {
		result, err = d.Handle(ctx, JoinRequested{Session: "s", Role: models.RoleA, Participant: participant})
	}
	g.Expect(errors.Is(err, matchmaker.ErrFormationFailed)).To(BeTrue())
	g.Expect(result.Join.Status).To(Equal(models.JoinStatusGroupFormed))
	g.Expect(result.Match).To(BeNil())
}

func TestDispatcher_UnknownSignals(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	d, _ := openDispatcher(t, g, &testsetup.StubChannelOpener{})

	_, err := d.Handle(context.Background(), nil)
	g.Expect(errors.Is(err, ErrUnknownSignal)).To(BeTrue())

	_, err = d.Handle(context.Background(), &JoinRequested{Session: "s", Role: models.RoleA, Participant: "p"})
	g.Expect(errors.Is(err, ErrUnknownSignal)).To(BeTrue())
}

func TestOpen_RejectsUnknownDriver(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	g.Config.StoreDriver = "postgres"

	_, err := Open(g.Config, &testsetup.StubChannelOpener{}, nil, testsetup.NewMetrics())
	g.Expect(err).To(HaveOccurred())
}

func TestDispatcher_HandleRemote(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	d, _ := openDispatcher(t, g, &testsetup.StubChannelOpener{})

	headers := map[string]string{
		"x-b3-traceid": "4bf92f3577b34da6a3ce929d0e0e4736",
		"x-b3-spanid":  "00f067aa0ba902b7",
		"x-b3-sampled": "1",
	}
	result, err := d.HandleRemote(context.Background(), headers, LeaveRequested{Session: "s", Participant: "p"})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(result.Leave).To(Equal(models.LeaveNotQueued))
}
