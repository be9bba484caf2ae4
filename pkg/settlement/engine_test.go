// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package settlement

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-trio-queue/pkg/constants"
	"github.com/AccelByte/extend-trio-queue/pkg/membership"
	"github.com/AccelByte/extend-trio-queue/pkg/models"
	"github.com/AccelByte/extend-trio-queue/pkg/storage/memory"
	"github.com/AccelByte/extend-trio-queue/pkg/testsetup"
)

type fixture struct {
	engine *Engine
	guard  *membership.Guard
	sink   *testsetup.StubReportSink
}

func newFixture(g testsetup.GomegaWithScope) fixture {
	store := memory.New()
	guard := membership.NewGuard(store)
	sink := &testsetup.StubReportSink{}
	return fixture{
		engine: New(g.Config, guard, store, sink, testsetup.NewMetrics()),
		guard:  guard,
		sink:   sink,
	}
}

func (f fixture) insert(g testsetup.GomegaWithScope, mode models.Mode) models.Match {
	p := testsetup.NewParticipants(models.GroupSize)
	match := models.Match{
		ID:           models.MatchID("match-" + p[0]),
		Participants: models.Group{p[0], p[1], p[2]},
		Mode:         mode,
		FormedAt:     time.Now().UTC(),
	}
	g.Expect(f.guard.InsertMatch(g.TestScope.Ctx, match)).To(Succeed())
	return match
}

func (f fixture) score(g testsetup.GomegaWithScope, participant models.ParticipantID) int {
	score, _, err := f.engine.Reputation(g.TestScope, participant)
	g.Expect(err).ToNot(HaveOccurred())
	return score
}

func TestConclude_ArchivalSymmetricIsIdempotent(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	f := newFixture(g)
	match := f.insert(g, models.ModeSymmetric)

	outcome, err := f.engine.Archive(g.TestScope, match.ID)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(outcome.Status).To(Equal(models.SettlementSettled))
	g.Expect(outcome.Trigger).To(Equal(models.TriggerArchival))
	g.Expect(outcome.Deltas).To(HaveLen(3))

	again, err := f.engine.Archive(g.TestScope, match.ID)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(again.Status).To(Equal(models.SettlementNoActiveMatch))

	for _, member := range match.Participants {
		g.Expect(f.score(g, member)).To(Equal(1))
	}
	_, ok, err := f.guard.GetMatch(g.TestScope.Ctx, match.ID)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(ok).To(BeFalse())
}

func TestConclude_ArchivalAsymmetric(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	f := newFixture(g)
	match := f.insert(g, models.ModeAsymmetric)

	outcome, err := f.engine.Archive(g.TestScope, match.ID)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(outcome.Deltas).To(Equal([]models.Delta{{Participant: match.Participants[2], Amount: 2}}), spew.Sdump(outcome))

	g.Expect(f.score(g, match.Participants[0])).To(Equal(0))
	g.Expect(f.score(g, match.Participants[1])).To(Equal(0))
	g.Expect(f.score(g, match.Participants[2])).To(Equal(2))
}

func TestConclude_ArchivalLegacySymmetricRule(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	g.Config.ArchiveSettlementRule = constants.ArchiveRuleSymmetric
	f := newFixture(g)
	match := f.insert(g, models.ModeAsymmetric)

	outcome, err := f.engine.Archive(g.TestScope, match.ID)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(outcome.Deltas).To(HaveLen(3))
	for _, member := range match.Participants {
		g.Expect(f.score(g, member)).To(Equal(1))
	}
}

func TestConclude_ConfirmationRules(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	f := newFixture(g)
	match := f.insert(g, models.ModeAsymmetric)
	requester := match.Participants[0]
	outsider := models.ParticipantID("outsider")

	outcome, err := f.engine.Conclude(g.TestScope, match.ID, &match.Participants[1])
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(outcome.Status).To(Equal(models.SettlementConfirmationRejected))
	g.Expect(outcome.RejectReason).To(Equal(constants.RejectReasonNoEndRequest))

	end, err := f.engine.RequestEnd(g.TestScope, match.ID, requester)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(end.Status).To(Equal(models.EndRequested))
	g.Expect(end.Confirmers).To(Equal([]models.ParticipantID{match.Participants[1], match.Participants[2]}))

	outcome, err = f.engine.Conclude(g.TestScope, match.ID, &outsider)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(outcome.RejectReason).To(Equal(constants.RejectReasonNotAMember))

	outcome, err = f.engine.Conclude(g.TestScope, match.ID, &requester)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(outcome.RejectReason).To(Equal(constants.RejectReasonSelfConfirming))

	g.Expect(f.score(g, match.Participants[2])).To(Equal(0))

	outcome, err = f.engine.Conclude(g.TestScope, match.ID, &match.Participants[2])
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(outcome.Status).To(Equal(models.SettlementSettled))
	g.Expect(outcome.Trigger).To(Equal(models.TriggerConfirmation))
	g.Expect(f.score(g, match.Participants[2])).To(Equal(2))

	// archival after confirmation is a no-op
	outcome, err = f.engine.Archive(g.TestScope, match.ID)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(outcome.Status).To(Equal(models.SettlementNoActiveMatch))
	g.Expect(f.score(g, match.Participants[2])).To(Equal(2))
}

func TestConclude_ConfirmingAbsentMatchIsNoOp(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	f := newFixture(g)
	confirmer := models.ParticipantID("p")

	outcome, err := f.engine.Conclude(g.TestScope, "gone", &confirmer)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(outcome.Status).To(Equal(models.SettlementNoActiveMatch))
}

func TestConclude_RejectionIsNotLoggedAsError(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	f := newFixture(g)
	match := f.insert(g, models.ModeSymmetric)
	scope, hook := testsetup.NewTestScopeWithHook()

	_, err := f.engine.Conclude(scope, match.ID, &match.Participants[0])
	g.Expect(err).ToNot(HaveOccurred())

	g.Expect(hook.AllEntries()).ToNot(BeEmpty())
	for _, entry := range hook.AllEntries() {
		g.Expect(entry.Level).To(BeNumerically(">", logrus.ErrorLevel), entry.Message)
	}
}

func TestRequestEnd(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	f := newFixture(g)
	match := f.insert(g, models.ModeSymmetric)

	end, err := f.engine.RequestEnd(g.TestScope, "missing", match.Participants[0])
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(end.Status).To(Equal(models.EndNoActiveMatch))

	end, err = f.engine.RequestEnd(g.TestScope, match.ID, "outsider")
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(end.Status).To(Equal(models.EndNotAMember))
	g.Expect(end.Confirmers).To(BeEmpty())
}

func TestConclude_ConcurrentSignalsSettleOnce(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	f := newFixture(g)
	match := f.insert(g, models.ModeSymmetric)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		settled int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := f.engine.Archive(g.TestScope, match.ID)
			if err == nil && outcome.Status == models.SettlementSettled {
				mu.Lock()
				settled++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	g.Expect(settled).To(Equal(1))
	g.Expect(f.score(g, match.Participants[0])).To(Equal(1))
}

func TestBallotsAndReports(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	f := newFixture(g)
	match := f.insert(g, models.ModeSymmetric)

	outcome, err := f.engine.Archive(g.TestScope, match.ID)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(outcome.Ballots).To(HaveLen(3))
	for i, ballot := range outcome.Ballots {
		g.Expect(ballot.Reporter).To(Equal(match.Participants[i]))
		g.Expect(ballot.Candidates).To(Equal(match.Participants.Others(ballot.Reporter)))
		g.Expect(ballot.MatchID).To(Equal(match.ID))
	}

	ballot := outcome.Ballots[0]
	first, second := ballot.Candidates[0], ballot.Candidates[1]

	report, err := f.engine.Report(g.TestScope, models.ReportRequest{BallotID: ballot.ID, Targets: []models.ParticipantID{first}, Reason: "left early"})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(report.Reporter).To(Equal(match.Participants[0]))
	g.Expect(report.Deltas).To(Equal([]models.Delta{{Participant: first, Amount: -1}}))
	g.Expect(f.score(g, first)).To(Equal(0)) // +1 settlement, -1 report

	remaining, ok := f.engine.Ballot(ballot.ID)
	g.Expect(ok).To(BeTrue())
	g.Expect(remaining.Candidates).To(Equal([]models.ParticipantID{second}))

	_, err = f.engine.Report(g.TestScope, models.ReportRequest{BallotID: ballot.ID, Targets: []models.ParticipantID{first}, Reason: "again"})
	g.Expect(errors.Is(err, models.ValidationErrorNotACandidate)).To(BeTrue())

	_, err = f.engine.Report(g.TestScope, models.ReportRequest{BallotID: ballot.ID, Targets: []models.ParticipantID{second}, Reason: "rude"})
	g.Expect(err).ToNot(HaveOccurred())

	// a ballot with no candidates left is discarded
	_, ok = f.engine.Ballot(ballot.ID)
	g.Expect(ok).To(BeFalse())

	_, err = f.engine.Report(g.TestScope, models.ReportRequest{BallotID: ballot.ID, Targets: []models.ParticipantID{second}, Reason: "rude"})
	g.Expect(errors.Is(err, models.ValidationErrorUnknownBallot)).To(BeTrue())

	g.Expect(f.sink.Reports()).To(HaveLen(2))
}

func TestReport_Validation(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	f := newFixture(g)
	match := f.insert(g, models.ModeSymmetric)

	outcome, err := f.engine.Archive(g.TestScope, match.ID)
	g.Expect(err).ToNot(HaveOccurred())
	ballot := outcome.Ballots[2]

	for _, tc := range []struct {
		request models.ReportRequest
		want    error
	}{
		{models.ReportRequest{BallotID: "nope", Targets: ballot.Candidates[:1], Reason: "r"}, models.ValidationErrorUnknownBallot},
		{models.ReportRequest{BallotID: ballot.ID, Targets: ballot.Candidates[:1]}, models.ValidationErrorEmptyReason},
		{models.ReportRequest{BallotID: ballot.ID, Reason: "r"}, models.ValidationErrorNoTarget},
		{models.ReportRequest{BallotID: ballot.ID, Targets: []models.ParticipantID{match.Participants[2]}, Reason: "r"}, models.ValidationErrorNotACandidate},
		{models.ReportRequest{BallotID: ballot.ID, Targets: []models.ParticipantID{ballot.Candidates[0], ballot.Candidates[0]}, Reason: "r"}, models.ValidationErrorDuplicateTarget},
	} {
		_, err := f.engine.Report(g.TestScope, tc.request)
		g.Expect(errors.Is(err, tc.want)).To(BeTrue(), spew.Sdump(tc.request, err))
	}

	// rejected reports leave the ballot untouched
	untouched, ok := f.engine.Ballot(ballot.ID)
	g.Expect(ok).To(BeTrue())
	g.Expect(untouched.Candidates).To(HaveLen(2))
	g.Expect(f.sink.Reports()).To(BeEmpty())
}

func TestReport_SinkFailureStillFiles(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	f := newFixture(g)
	f.sink.Err = errors.New("channel gone")
	match := f.insert(g, models.ModeSymmetric)

	outcome, err := f.engine.Archive(g.TestScope, match.ID)
	g.Expect(err).ToNot(HaveOccurred())
	ballot := outcome.Ballots[1]

	report, err := f.engine.Report(g.TestScope, models.ReportRequest{BallotID: ballot.ID, Targets: ballot.Candidates, Reason: "griefing"})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(report.Targets).To(HaveLen(2))
	for _, target := range ballot.Candidates {
		g.Expect(f.score(g, target)).To(Equal(0))
	}
}

func TestReputation_Unknown(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	f := newFixture(g)

	score, found, err := f.engine.Reputation(g.TestScope, "nobody")
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(found).To(BeFalse())
	g.Expect(score).To(Equal(0))
}

func TestBallots_ExpireAfterLifetime(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	f := newFixture(g)
	issuedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f.engine.now = func() time.Time { return issuedAt }

	stale, err := f.engine.Archive(g.TestScope, f.insert(g, models.ModeSymmetric).ID)
	g.Expect(err).ToNot(HaveOccurred())

	f.engine.now = func() time.Time { return issuedAt.Add(constants.BallotLifetime + time.Minute) }
	fresh, err := f.engine.Archive(g.TestScope, f.insert(g, models.ModeSymmetric).ID)
	g.Expect(err).ToNot(HaveOccurred())

	for _, ballot := range stale.Ballots {
		_, ok := f.engine.Ballot(ballot.ID)
		g.Expect(ok).To(BeFalse())
	}
	for _, ballot := range fresh.Ballots {
		_, ok := f.engine.Ballot(ballot.ID)
		g.Expect(ok).To(BeTrue())
	}

	_, err = f.engine.Report(g.TestScope, models.ReportRequest{BallotID: stale.Ballots[0].ID, Targets: stale.Ballots[0].Candidates[:1], Reason: "late"})
	g.Expect(errors.Is(err, models.ValidationErrorUnknownBallot)).To(BeTrue())
}
