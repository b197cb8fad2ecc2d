package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fadilmartias/hiring-pipeline/internal/alert"
	"github.com/fadilmartias/hiring-pipeline/internal/apperror"
	"github.com/fadilmartias/hiring-pipeline/internal/logging"
	"github.com/fadilmartias/hiring-pipeline/internal/model"
	"github.com/fadilmartias/hiring-pipeline/internal/scoring"
	"github.com/fadilmartias/hiring-pipeline/internal/service"
	"github.com/fadilmartias/hiring-pipeline/internal/store"
	"github.com/google/uuid"
)

var testStart = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

// stepClock advances one second per reading so records get distinct,
// ordered timestamps.
type stepClock struct {
	mu     sync.Mutex
	now    time.Time
	frozen bool
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.frozen {
		c.now = c.now.Add(time.Second)
	}
	return c.now
}

func (c *stepClock) Freeze() {
	c.mu.Lock()
	c.frozen = true
	c.mu.Unlock()
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type recordingNotifier struct {
	mu    sync.Mutex
	sent  []service.Notification
	fails bool
}

func (n *recordingNotifier) Notify(_ context.Context, msg service.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	if n.fails {
		return errors.New("smtp down")
	}
	return nil
}

func (n *recordingNotifier) kinds() []service.NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]service.NotificationKind, len(n.sent))
	for i, msg := range n.sent {
		out[i] = msg.Kind
	}
	return out
}

type fixture struct {
	uc       *PipelineUsecase
	store    *store.Store
	clock    *stepClock
	notifier *recordingNotifier
	role     model.Role
	req      model.Requirement
	ta       model.TA
}

func newFixture(t *testing.T, vacancies int) *fixture {
	t.Helper()
	ctx := context.Background()
	cache := alert.NewCache(time.Hour)
	st := store.New(store.WithLogger(logging.Discard()), store.WithCommitHook(InvalidateAlerts(cache)))
	clock := &stepClock{now: testStart}
	notifier := &recordingNotifier{}
	uc := NewPipelineUsecase(st,
		WithClock(clock.Now),
		WithLogger(logging.Discard()),
		WithNotifier(notifier),
		WithAlertCache(cache),
	)

	client, err := uc.CreateClient(ctx, "Acme")
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	role, err := uc.CreateRole(ctx, client.ID, "Backend Engineer", vacancies)
	if err != nil {
		t.Fatalf("create role: %v", err)
	}
	req, err := uc.CreateRequirement(ctx, RequirementInput{
		RoleID:     role.ID,
		Vacancies:  vacancies,
		DueDate:    testStart.AddDate(0, 2, 0),
		JDApproved: true,
	})
	if err != nil {
		t.Fatalf("create requirement: %v", err)
	}
	ta, err := uc.CreateTA(ctx, TAInput{Name: "Ari", Email: "ari@acme.test", MaxLoad: 10, EfficiencyScore: 80})
	if err != nil {
		t.Fatalf("create ta: %v", err)
	}
	if req, err = uc.AssignTA(ctx, AssignInput{RequirementID: req.ID, TAID: ta.ID, Actor: "lead"}); err != nil {
		t.Fatalf("assign ta: %v", err)
	}
	return &fixture{uc: uc, store: st, clock: clock, notifier: notifier, role: role, req: req, ta: ta}
}

func (f *fixture) apply(t *testing.T, name string) model.Candidate {
	t.Helper()
	c, err := f.uc.SubmitApplication(context.Background(), CandidateInput{
		Name:          name,
		Email:         "candidate@example.test",
		RequirementID: f.req.ID,
	})
	if err != nil {
		t.Fatalf("submit application: %v", err)
	}
	return c
}

func ratingsFor(t *testing.T, stage model.Stage, rating int) map[string]int {
	t.Helper()
	w, err := scoring.Defaults().For(stage)
	if err != nil {
		t.Fatalf("weights for %s: %v", stage, err)
	}
	out := map[string]int{}
	for _, skill := range w.Skills() {
		out[skill] = rating
	}
	return out
}

func internalSlot(at time.Time, interviewer string) ScheduleDetails {
	return ScheduleDetails{Mode: model.ModeInternal, DateTime: &at, DurationMinutes: 30, InterviewerID: interviewer}
}

// interview schedules, completes and scores the candidate's current stage.
func (f *fixture) interview(t *testing.T, c model.Candidate, rec model.Recommendation) model.ScheduleRecord {
	t.Helper()
	ctx := context.Background()
	slot := testStart.AddDate(0, 0, 1).Add(time.Duration(len(c.StageHistory)) * time.Hour)
	sched, err := f.uc.Schedule(ctx, c.ID, c.Stage, internalSlot(slot, "panel-"+c.ID.String()))
	if err != nil {
		t.Fatalf("schedule %s: %v", c.Stage, err)
	}
	if _, err := f.uc.MarkCompleted(ctx, sched.ID); err != nil {
		t.Fatalf("complete %s: %v", c.Stage, err)
	}
	if _, err := f.uc.SubmitFeedback(ctx, sched.ID, FeedbackInput{
		SkillRatings:   ratingsFor(t, c.Stage, 4),
		OverallRating:  4,
		Recommendation: rec,
		SubmittedBy:    "panel",
	}); err != nil {
		t.Fatalf("feedback %s: %v", c.Stage, err)
	}
	return sched
}

func (f *fixture) advance(t *testing.T, c model.Candidate) model.Candidate {
	t.Helper()
	out, err := f.uc.Advance(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("advance from %s: %v", c.Stage, err)
	}
	return out
}

// verify walks a candidate in background-verification through a clean check.
func (f *fixture) verify(t *testing.T, c model.Candidate) {
	t.Helper()
	ctx := context.Background()
	session, err := f.uc.StartVerification(ctx, c.ID, "CheckFirst", nil)
	if err != nil {
		t.Fatalf("start verification: %v", err)
	}
	for _, dt := range model.RequiredDocuments {
		doc, err := f.uc.UploadDocument(ctx, c.ID, dt, "s3://docs/"+string(dt), 1)
		if err != nil {
			t.Fatalf("upload %s: %v", dt, err)
		}
		if _, err := f.uc.ReviewDocument(ctx, session.ID, doc.ID, model.DocumentVerified); err != nil {
			t.Fatalf("review %s: %v", dt, err)
		}
	}
	for i := 0; i < len(model.VerificationSteps); i++ {
		if session, err = f.uc.CompleteStep(ctx, session.ID); err != nil {
			t.Fatalf("complete step %d: %v", i, err)
		}
	}
	if session.Status != model.VerificationCompleted {
		t.Fatalf("expected completed session, got %s", session.Status)
	}
}

// toFinalReview drives an application up to final-review.
func (f *fixture) toFinalReview(t *testing.T, name string) model.Candidate {
	t.Helper()
	c := f.apply(t, name)
	for c.Stage != model.StageBackgroundVerification {
		f.interview(t, c, model.RecommendProceed)
		c = f.advance(t, c)
	}
	f.verify(t, c)
	return f.advance(t, c)
}

func blockedCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *apperror.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperror.KindStageBlocked {
		t.Fatalf("expected stage blocked error, got %v", err)
	}
	return appErr.Code
}

func TestApplicationToTechnicalEndToEnd(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	c := f.apply(t, "Dana")
	if c.Stage != model.StagePhoneScreening || len(c.StageHistory) != 1 {
		t.Fatalf("expected fresh application in phone-screening, got %s with %d entries", c.Stage, len(c.StageHistory))
	}

	tomorrow := time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)
	sched, err := f.uc.Schedule(ctx, c.ID, model.StagePhoneScreening, internalSlot(tomorrow, "int-1"))
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if sched.Status != model.ScheduleScheduled {
		t.Fatalf("expected scheduled, got %s", sched.Status)
	}
	if _, err := f.uc.MarkCompleted(ctx, sched.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	fb, err := f.uc.SubmitFeedback(ctx, sched.ID, FeedbackInput{
		SkillRatings:   ratingsFor(t, model.StagePhoneScreening, 4),
		OverallRating:  5,
		Recommendation: model.RecommendProceed,
		SubmittedBy:    "int-1",
	})
	if err != nil {
		t.Fatalf("feedback: %v", err)
	}
	if fb.CompositeScore != 4.0 || fb.OverallRating != 5 {
		t.Fatalf("expected composite 4.0 and overall 5, got %.2f and %d", fb.CompositeScore, fb.OverallRating)
	}

	c, err = f.uc.Advance(ctx, c.ID)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if c.Stage != model.StageTechnical || len(c.StageHistory) != 2 {
		t.Fatalf("expected technical with 2 history entries, got %s with %d", c.Stage, len(c.StageHistory))
	}
	if c.StageHistory[0].ExitedAt == nil || c.StageHistory[1].ExitedAt != nil {
		t.Fatalf("expected first entry closed and second open: %+v", c.StageHistory)
	}
	if c.Score == nil || *c.Score != 80 {
		t.Fatalf("expected candidate score 80, got %v", c.Score)
	}

	req, _ := f.uc.GetRequirement(f.req.ID)
	if req.PipelineCounts.Sourced != 1 || req.PipelineCounts.Screened != 1 {
		t.Fatalf("unexpected counts: %+v", req.PipelineCounts)
	}
	kinds := f.notifier.kinds()
	if len(kinds) != 2 || kinds[0] != service.NotifyInterviewScheduled || kinds[1] != service.NotifyFeedbackSubmitted {
		t.Fatalf("unexpected notifications: %v", kinds)
	}
}

func TestAdvanceGating(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	c := f.apply(t, "Eli")

	if code := blockedCode(t, advanceErr(f, c)); code != BlockedNoSchedule {
		t.Fatalf("expected %s, got %s", BlockedNoSchedule, code)
	}

	f.interview(t, c, model.RecommendProceed)
	c = f.advance(t, c)

	// Technical interview scheduled but not completed.
	sched, err := f.uc.Schedule(ctx, c.ID, model.StageTechnical, internalSlot(testStart.AddDate(0, 0, 2), "int-2"))
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if code := blockedCode(t, advanceErr(f, c)); code != BlockedInterviewNotCompleted {
		t.Fatalf("expected %s, got %s", BlockedInterviewNotCompleted, code)
	}
	if _, err := f.uc.MarkCompleted(ctx, sched.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if code := blockedCode(t, advanceErr(f, c)); code != BlockedFeedbackMissing {
		t.Fatalf("expected %s, got %s", BlockedFeedbackMissing, code)
	}

	fb, err := f.uc.SubmitFeedback(ctx, sched.ID, FeedbackInput{
		SkillRatings:   ratingsFor(t, model.StageTechnical, 3),
		OverallRating:  3,
		Recommendation: model.RecommendHold,
		SubmittedBy:    "int-2",
	})
	if err != nil {
		t.Fatalf("feedback: %v", err)
	}
	if code := blockedCode(t, advanceErr(f, c)); code != BlockedFeedbackHold {
		t.Fatalf("expected %s, got %s", BlockedFeedbackHold, code)
	}

	amended, err := f.uc.AmendFeedback(ctx, fb.ID, FeedbackInput{
		SkillRatings:   ratingsFor(t, model.StageTechnical, 2),
		OverallRating:  2,
		Recommendation: model.RecommendReject,
		SubmittedBy:    "int-2",
	})
	if err != nil {
		t.Fatalf("amend: %v", err)
	}
	if code := blockedCode(t, advanceErr(f, c)); code != BlockedFeedbackReject {
		t.Fatalf("expected %s, got %s", BlockedFeedbackReject, code)
	}

	if _, err := f.uc.AmendFeedback(ctx, amended.ID, FeedbackInput{
		SkillRatings:   ratingsFor(t, model.StageTechnical, 4),
		OverallRating:  4,
		Recommendation: model.RecommendProceed,
		SubmittedBy:    "int-2",
	}); err != nil {
		t.Fatalf("second amend: %v", err)
	}
	if c = f.advance(t, c); c.Stage != model.StageClientInterview {
		t.Fatalf("expected client-interview, got %s", c.Stage)
	}

	got, _ := f.uc.GetCandidate(c.ID)
	if got.Stage != model.StageClientInterview {
		t.Fatalf("store disagrees on stage: %s", got.Stage)
	}
}

func advanceErr(f *fixture, c model.Candidate) error {
	_, err := f.uc.Advance(context.Background(), c.ID)
	return err
}

func TestFeedbackAmendmentKeepsHistory(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	c := f.apply(t, "Fay")
	sched := f.interview(t, c, model.RecommendHold)

	history, _ := f.uc.GetFeedbackHistory(c.ID)
	if len(history) != 1 {
		t.Fatalf("expected one record, got %d", len(history))
	}
	first := history[0]

	_, err := f.uc.SubmitFeedback(ctx, sched.ID, FeedbackInput{
		SkillRatings:   ratingsFor(t, model.StagePhoneScreening, 5),
		OverallRating:  5,
		Recommendation: model.RecommendProceed,
		SubmittedBy:    "panel",
	})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected second submit to require amend, got %v", err)
	}

	second, err := f.uc.AmendFeedback(ctx, first.ID, FeedbackInput{
		SkillRatings:   ratingsFor(t, model.StagePhoneScreening, 5),
		OverallRating:  5,
		Recommendation: model.RecommendProceed,
		SubmittedBy:    "panel",
	})
	if err != nil {
		t.Fatalf("amend: %v", err)
	}
	if second.Supersedes == nil || *second.Supersedes != first.ID {
		t.Fatalf("amendment must point at the prior record")
	}

	history, _ = f.uc.GetFeedbackHistory(c.ID)
	if len(history) != 2 || history[0].SupersededBy == nil || *history[0].SupersededBy != second.ID {
		t.Fatalf("prior record must stay in history marked superseded: %+v", history)
	}
	if _, err := f.uc.AmendFeedback(ctx, first.ID, FeedbackInput{
		SkillRatings:   ratingsFor(t, model.StagePhoneScreening, 1),
		OverallRating:  1,
		Recommendation: model.RecommendReject,
		SubmittedBy:    "panel",
	}); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected amending a superseded record to fail, got %v", err)
	}

	got, _ := f.uc.GetCandidate(c.ID)
	if got.Score == nil || *got.Score != 100 {
		t.Fatalf("expected score from amended feedback, got %v", got.Score)
	}
	if audits := f.uc.GetAuditLog(AuditFilter{Action: model.AuditFeedbackAmend}); len(audits) != 1 {
		t.Fatalf("expected one amend audit entry, got %d", len(audits))
	}
}

func TestPrematureFeedback(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	c := f.apply(t, "Gus")
	sched, err := f.uc.Schedule(ctx, c.ID, c.Stage, internalSlot(testStart.AddDate(0, 0, 1), "int-1"))
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	_, err = f.uc.SubmitFeedback(ctx, sched.ID, FeedbackInput{
		SkillRatings:   ratingsFor(t, c.Stage, 4),
		OverallRating:  4,
		Recommendation: model.RecommendProceed,
		SubmittedBy:    "int-1",
	})
	if !errors.Is(err, apperror.ErrPrematureFeedback) {
		t.Fatalf("expected premature feedback, got %v", err)
	}
}

func TestRescheduleKeepsIdentityAndCancelCreatesNewRecord(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	c := f.apply(t, "Hal")
	first, err := f.uc.Schedule(ctx, c.ID, c.Stage, internalSlot(testStart.AddDate(0, 0, 1), "int-1"))
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	later := testStart.AddDate(0, 0, 2)
	moved, err := f.uc.Reschedule(ctx, first.ID, ScheduleDetails{DateTime: &later})
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if moved.ID != first.ID || moved.RescheduleCount != 1 || moved.Status != model.ScheduleScheduled {
		t.Fatalf("unexpected rescheduled record: %+v", moved)
	}
	if !moved.DateTime.Equal(later) || moved.InterviewerID != "int-1" {
		t.Fatalf("reschedule must only change given fields: %+v", moved)
	}

	if _, err := f.uc.Schedule(ctx, c.ID, c.Stage, internalSlot(later, "int-9")); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected duplicate schedule to fail, got %v", err)
	}

	if _, err := f.uc.Cancel(ctx, first.ID, "  "); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected empty cancel reason to fail, got %v", err)
	}
	cancelled, err := f.uc.Cancel(ctx, first.ID, "candidate asked to move")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := f.uc.Reschedule(ctx, cancelled.ID, ScheduleDetails{DateTime: &later}); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected reschedule of cancelled record to fail, got %v", err)
	}
	if _, err := f.uc.MarkCompleted(ctx, cancelled.ID); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected completing a cancelled record to fail, got %v", err)
	}
	if status, _ := f.uc.ScheduleStatus(c.ID, c.Stage); status != model.ScheduleCancelled {
		t.Fatalf("expected cancelled status, got %s", status)
	}

	second, err := f.uc.Schedule(ctx, c.ID, c.Stage, internalSlot(later, "int-1"))
	if err != nil {
		t.Fatalf("schedule after cancel: %v", err)
	}
	if second.ID == first.ID || second.RescheduleCount != 0 {
		t.Fatalf("expected a fresh record, got %+v", second)
	}
	if status, _ := f.uc.ScheduleStatus(c.ID, model.StageTechnical); status != model.ScheduleNotScheduled {
		t.Fatalf("expected not-scheduled for an untouched stage, got %s", status)
	}
}

func TestSlotConflict(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	a := f.apply(t, "Ivy")
	b := f.apply(t, "Jon")
	at := testStart.AddDate(0, 0, 1)

	first, err := f.uc.Schedule(ctx, a.ID, a.Stage, internalSlot(at, "int-1"))
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	overlap := at.Add(15 * time.Minute)
	if _, err := f.uc.Schedule(ctx, b.ID, b.Stage, internalSlot(overlap, "int-1")); !errors.Is(err, apperror.ErrSlotConflict) {
		t.Fatalf("expected slot conflict, got %v", err)
	}
	adjacent := at.Add(30 * time.Minute)
	second, err := f.uc.Schedule(ctx, b.ID, b.Stage, internalSlot(adjacent, "int-1"))
	if err != nil {
		t.Fatalf("back to back slot should be free: %v", err)
	}

	// Moving within its own window is not a conflict with itself.
	nudged := at.Add(5 * time.Minute)
	if _, err := f.uc.Reschedule(ctx, first.ID, ScheduleDetails{DateTime: &nudged, DurationMinutes: 20}); err != nil {
		t.Fatalf("reschedule within own slot: %v", err)
	}
	if _, err := f.uc.Reschedule(ctx, second.ID, ScheduleDetails{DateTime: &nudged}); !errors.Is(err, apperror.ErrSlotConflict) {
		t.Fatalf("expected conflict on reschedule, got %v", err)
	}

	if _, err := f.uc.Cancel(ctx, first.ID, "panel unavailable"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := f.uc.Reschedule(ctx, second.ID, ScheduleDetails{DateTime: &nudged}); err != nil {
		t.Fatalf("cancelled records must not hold slots: %v", err)
	}
}

func TestExternalSchedulingBooksLater(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	c := f.apply(t, "Kai")

	sched, err := f.uc.Schedule(ctx, c.ID, c.Stage, ScheduleDetails{Mode: model.ModeExternal, DurationMinutes: 45})
	if err != nil {
		t.Fatalf("schedule external: %v", err)
	}
	if sched.CandidateEmail != c.Contact.Email || sched.DateTime != nil {
		t.Fatalf("unexpected external record: %+v", sched)
	}
	if _, err := f.uc.MarkCompleted(ctx, sched.ID); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected completion without a slot to fail, got %v", err)
	}

	booked, err := f.uc.BookExternalSlot(ctx, sched.ID, testStart.AddDate(0, 0, 3), "int-4")
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if booked.RescheduleCount != 0 || booked.DateTime == nil || booked.InterviewerID != "int-4" {
		t.Fatalf("unexpected booking: %+v", booked)
	}
	if _, err := f.uc.BookExternalSlot(ctx, sched.ID, testStart.AddDate(0, 0, 4), ""); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected second booking to require reschedule, got %v", err)
	}
	started, err := f.uc.StartInterview(ctx, sched.ID)
	if err != nil || started.Status != model.ScheduleInProgress {
		t.Fatalf("start: %v %+v", err, started)
	}
	if _, err := f.uc.MarkCompleted(ctx, sched.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	kinds := f.notifier.kinds()
	if len(kinds) < 2 || kinds[0] != service.NotifyInterviewInvite {
		t.Fatalf("expected an invite first, got %v", kinds)
	}
}

func TestScheduleValidation(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	c := f.apply(t, "Lee")
	at := testStart.AddDate(0, 0, 1)

	tests := []struct {
		name    string
		stage   model.Stage
		details ScheduleDetails
	}{
		{"wrong stage", model.StageTechnical, internalSlot(at, "int-1")},
		{"internal without interviewer", c.Stage, ScheduleDetails{Mode: model.ModeInternal, DateTime: &at, DurationMinutes: 30}},
		{"internal without time", c.Stage, ScheduleDetails{Mode: model.ModeInternal, InterviewerID: "int-1", DurationMinutes: 30}},
		{"no duration", c.Stage, ScheduleDetails{Mode: model.ModeInternal, DateTime: &at, InterviewerID: "int-1"}},
		{"unknown mode", c.Stage, ScheduleDetails{Mode: "carrier-pigeon", DateTime: &at, DurationMinutes: 30}},
	}
	for _, tc := range tests {
		if _, err := f.uc.Schedule(ctx, c.ID, tc.stage, tc.details); !errors.Is(err, apperror.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
	if _, err := f.uc.Schedule(ctx, uuid.New(), c.Stage, internalSlot(at, "int-1")); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRejectArchivesAndCancelsInterviews(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	c := f.apply(t, "Max")
	sched, err := f.uc.Schedule(ctx, c.ID, c.Stage, internalSlot(testStart.AddDate(0, 0, 1), "int-1"))
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	if _, err := f.uc.Reject(ctx, c.ID, "", "lead"); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected reason to be required, got %v", err)
	}
	rejected, err := f.uc.Reject(ctx, c.ID, "salary mismatch", "lead")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Outcome != model.OutcomeRejected || rejected.ArchivedAt == nil || rejected.OpenEntry() != nil {
		t.Fatalf("unexpected rejected candidate: %+v", rejected)
	}
	got, _ := f.uc.GetSchedule(sched.ID)
	if got.Status != model.ScheduleCancelled {
		t.Fatalf("expected interview cancelled with the candidate, got %s", got.Status)
	}
	if code := blockedCode(t, advanceErr(f, c)); code != BlockedCandidateArchived {
		t.Fatalf("expected %s, got %s", BlockedCandidateArchived, code)
	}
	if _, err := f.uc.Withdraw(ctx, c.ID, "changed mind", "lead"); err == nil {
		t.Fatalf("expected archived candidate to refuse withdraw")
	}
}

func TestReopenIsAlwaysAudited(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	c := f.apply(t, "Nia")
	if _, err := f.uc.Reject(ctx, c.ID, "no show", "lead"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	if _, err := f.uc.Reopen(ctx, c.ID, model.StagePhoneScreening, "", "lead"); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected justification to be required, got %v", err)
	}
	if _, err := f.uc.Reopen(ctx, uuid.New(), model.StagePhoneScreening, "typo", "lead"); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	reopened, err := f.uc.Reopen(ctx, c.ID, model.StagePhoneScreening, "no show was a calendar bug", "lead")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Archived() || reopened.Stage != model.StagePhoneScreening {
		t.Fatalf("unexpected reopened candidate: %+v", reopened)
	}
	last := reopened.StageHistory[len(reopened.StageHistory)-1]
	if !last.Reopened {
		t.Fatalf("expected reopened history entry")
	}

	entries := f.uc.GetAuditLog(AuditFilter{CandidateID: &c.ID, Action: model.AuditReopen})
	if len(entries) != 2 {
		t.Fatalf("expected 2 reopen audit entries for the candidate, got %d", len(entries))
	}
	if entries[0].Success || entries[0].Error == "" {
		t.Fatalf("failed attempt must be audited as failure: %+v", entries[0])
	}
	if !entries[1].Success || entries[1].ToStage != model.StagePhoneScreening || entries[1].Actor != "lead" {
		t.Fatalf("unexpected success entry: %+v", entries[1])
	}
	if all := f.uc.GetAuditLog(AuditFilter{Action: model.AuditReopen}); len(all) != 3 {
		t.Fatalf("expected 3 reopen attempts in total, got %d", len(all))
	}

	// A fresh interview is needed after reopening.
	if code := blockedCode(t, advanceErr(f, reopened)); code != BlockedNoSchedule {
		t.Fatalf("expected %s after reopen, got %s", BlockedNoSchedule, code)
	}
}

func TestReopenIgnoresEarlierVisitUnderFrozenClock(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	f.clock.Freeze()

	c := f.apply(t, "Pia")
	f.interview(t, c, model.RecommendProceed)
	if _, err := f.uc.Reject(ctx, c.ID, "budget", "lead"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	reopened, err := f.uc.Reopen(ctx, c.ID, model.StagePhoneScreening, "budget approved", "lead")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if code := blockedCode(t, advanceErr(f, reopened)); code != BlockedNoSchedule {
		t.Fatalf("expected %s for the reopened visit, got %s", BlockedNoSchedule, code)
	}
	sched := f.interview(t, reopened, model.RecommendProceed)
	if sched.Visit != reopened.Visit() {
		t.Fatalf("schedule visit = %d, want %d", sched.Visit, reopened.Visit())
	}
	if got := f.advance(t, reopened); got.Stage != model.StageTechnical {
		t.Fatalf("expected technical, got %s", got.Stage)
	}
}

func TestReopenedVerificationNeedsNewSession(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	f.clock.Freeze()

	c := f.apply(t, "Quin")
	for c.Stage != model.StageBackgroundVerification {
		f.interview(t, c, model.RecommendProceed)
		c = f.advance(t, c)
	}
	f.verify(t, c)
	if _, err := f.uc.Reject(ctx, c.ID, "reference mismatch", "lead"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	reopened, err := f.uc.Reopen(ctx, c.ID, model.StageBackgroundVerification, "reference corrected", "lead")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if code := blockedCode(t, advanceErr(f, reopened)); code != BlockedVerificationIncomplete {
		t.Fatalf("expected %s, got %s", BlockedVerificationIncomplete, code)
	}
	f.verify(t, reopened)
	if got := f.advance(t, reopened); got.Stage != model.StageFinalReview {
		t.Fatalf("expected final-review, got %s", got.Stage)
	}
}

func TestVerificationGatesAdvance(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	c := f.apply(t, "Oli")
	for c.Stage != model.StageBackgroundVerification {
		f.interview(t, c, model.RecommendProceed)
		c = f.advance(t, c)
	}
	if code := blockedCode(t, advanceErr(f, c)); code != BlockedVerificationIncomplete {
		t.Fatalf("expected %s, got %s", BlockedVerificationIncomplete, code)
	}

	session, err := f.uc.StartVerification(ctx, c.ID, "CheckFirst", nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := f.uc.StartVerification(ctx, c.ID, "Other", nil); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected one active session, got %v", err)
	}
	if _, err := f.uc.CompleteStep(ctx, session.ID); blockedCodeOf(err) != "documents-missing" {
		t.Fatalf("expected missing documents, got %v", err)
	}

	resume, _ := f.uc.UploadDocument(ctx, c.ID, model.DocResume, "s3://docs/resume.pdf", 2)
	if _, err := f.uc.UploadDocument(ctx, c.ID, model.DocIDProof, "s3://docs/id.pdf", 1); err != nil {
		t.Fatalf("upload: %v", err)
	}
	for i := 0; i < len(model.VerificationSteps)-1; i++ {
		if _, err := f.uc.CompleteStep(ctx, session.ID); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if _, err := f.uc.ReviewDocument(ctx, session.ID, resume.ID, model.DocumentRejected); err != nil {
		t.Fatalf("review: %v", err)
	}
	_, err = f.uc.CompleteStep(ctx, session.ID)
	if blockedCodeOf(err) != "documents-unverified" {
		t.Fatalf("expected unverified documents at last step, got %v", err)
	}
	status, err := f.uc.GetVerificationStatus(c.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Status != model.VerificationInProgress || status.StepIndex != 6 || len(status.Blockers) != 2 {
		t.Fatalf("unexpected status: %+v", status)
	}
	if code := blockedCode(t, advanceErr(f, c)); code != BlockedVerificationIncomplete {
		t.Fatalf("expected %s while session is open, got %s", BlockedVerificationIncomplete, code)
	}
}

func blockedCodeOf(err error) string {
	var appErr *apperror.Error
	if errors.As(err, &appErr) && appErr.Kind == apperror.KindStageBlocked {
		return appErr.Code
	}
	return ""
}

func TestHireFillsVacancies(t *testing.T) {
	f := newFixture(t, 1)
	first := f.toFinalReview(t, "Pia")
	second := f.toFinalReview(t, "Quin")

	f.interview(t, first, model.RecommendProceed)
	hired := f.advance(t, first)
	if hired.Outcome != model.OutcomeHired || !hired.Archived() {
		t.Fatalf("expected hired candidate, got %+v", hired)
	}

	req, _ := f.uc.GetRequirement(f.req.ID)
	want := model.PipelineCounts{Sourced: 2, Screened: 2, Interviewed: 2, Offered: 2, Hired: 1}
	if req.PipelineCounts != want {
		t.Fatalf("unexpected counts: %+v", req.PipelineCounts)
	}
	roles := f.uc.ListRoles(nil)
	if len(roles) != 1 || roles[0].FilledPositions != 1 {
		t.Fatalf("expected role to have one filled position: %+v", roles)
	}

	f.interview(t, second, model.RecommendProceed)
	if code := blockedCode(t, advanceErr(f, second)); code != BlockedVacanciesFilled {
		t.Fatalf("expected %s, got %s", BlockedVacanciesFilled, code)
	}

	alertRec, err := f.uc.GetRequirementAlert(f.req.ID)
	if err != nil {
		t.Fatalf("alert: %v", err)
	}
	if alertRec == nil || alertRec.Reason != model.AlertVacanciesFilledOpen || alertRec.CTA != "Close Requirement" {
		t.Fatalf("expected close requirement alert, got %+v", alertRec)
	}
}

func TestAssignTACapacity(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()

	busy, err := f.uc.CreateTA(ctx, TAInput{Name: "Bea", Email: "bea@acme.test", MaxLoad: 10, EfficiencyScore: 70})
	if err != nil {
		t.Fatalf("create ta: %v", err)
	}
	// Give Bea nine requirements of her own.
	for i := 0; i < 9; i++ {
		req, err := f.uc.CreateRequirement(ctx, RequirementInput{RoleID: f.extraRole(t).ID, Vacancies: 1, DueDate: testStart.AddDate(0, 1, 0)})
		if err != nil {
			t.Fatalf("create requirement: %v", err)
		}
		if _, err := f.uc.AssignTA(ctx, AssignInput{RequirementID: req.ID, TAID: busy.ID}); err != nil {
			t.Fatalf("assign %d: %v", i, err)
		}
	}
	summary, _ := f.uc.GetTAWorkload(busy.ID)
	if summary.LoadPercentage != 90 || summary.CanTakeMore {
		t.Fatalf("expected 90%% and no capacity, got %+v", summary)
	}

	_, err = f.uc.AssignTA(ctx, AssignInput{RequirementID: f.req.ID, TAID: busy.ID, Actor: "lead"})
	if !errors.Is(err, apperror.ErrCapacityExceeded) {
		t.Fatalf("expected capacity exceeded, got %v", err)
	}
	original, _ := f.uc.GetTAWorkload(f.ta.ID)
	if original.CurrentLoad != 1 {
		t.Fatalf("failed assignment must not touch loads, got %d", original.CurrentLoad)
	}

	req, err := f.uc.AssignTA(ctx, AssignInput{RequirementID: f.req.ID, TAID: busy.ID, Override: true, Justification: "client asked for Bea", Actor: "lead"})
	if err != nil {
		t.Fatalf("override: %v", err)
	}
	if req.AssignedTA == nil || *req.AssignedTA != busy.ID {
		t.Fatalf("requirement not moved: %+v", req)
	}
	losing, _ := f.uc.GetTAWorkload(f.ta.ID)
	gaining, _ := f.uc.GetTAWorkload(busy.ID)
	if losing.CurrentLoad != 0 || gaining.CurrentLoad != 10 {
		t.Fatalf("expected loads 0 and 10, got %d and %d", losing.CurrentLoad, gaining.CurrentLoad)
	}
	if audits := f.uc.GetAuditLog(AuditFilter{RequirementID: &f.req.ID, Action: model.AuditAssignOverride}); len(audits) != 1 {
		t.Fatalf("expected one override audit entry, got %d", len(audits))
	}

	ok, _ := f.uc.CanAssign(f.ta.ID, f.req.ID)
	if !ok {
		t.Fatalf("idle TA should be able to take the requirement back")
	}
}

// extraRole creates a one-seat role under a fresh client.
func (f *fixture) extraRole(t *testing.T) model.Role {
	t.Helper()
	ctx := context.Background()
	client, err := f.uc.CreateClient(ctx, "Side Client")
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	role, err := f.uc.CreateRole(ctx, client.ID, "Analyst", 1)
	if err != nil {
		t.Fatalf("role: %v", err)
	}
	return role
}

func TestRequirementAlertFollowsState(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	role := f.extraRole(t)
	req, err := f.uc.CreateRequirement(ctx, RequirementInput{RoleID: role.ID, Vacancies: 1, DueDate: testStart.AddDate(0, 0, 3), JDApproved: true})
	if err != nil {
		t.Fatalf("create requirement: %v", err)
	}

	a, err := f.uc.GetRequirementAlert(req.ID)
	if err != nil {
		t.Fatalf("alert: %v", err)
	}
	if a == nil || a.Reason != model.AlertTANotAssigned || a.CTA != "Assign TA" {
		t.Fatalf("expected only the ta-not-assigned alert, got %+v", a)
	}

	if _, err := f.uc.AssignTA(ctx, AssignInput{RequirementID: req.ID, TAID: f.ta.ID}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if a, _ = f.uc.GetRequirementAlert(req.ID); a == nil || a.Reason != model.AlertNoCandidates {
		t.Fatalf("expected no-candidates once a TA is assigned, got %+v", a)
	}

	if _, err := f.uc.SourceCandidate(ctx, CandidateInput{Name: "Rae", Email: "rae@example.test", RequirementID: req.ID}); err != nil {
		t.Fatalf("source: %v", err)
	}
	if a, _ = f.uc.GetRequirementAlert(req.ID); a == nil || a.Reason != model.AlertDueSoon {
		t.Fatalf("expected due-soon, got %+v", a)
	}

	if _, err := f.uc.ExtendDeadline(ctx, req.ID, testStart.AddDate(0, 1, 0)); err != nil {
		t.Fatalf("extend: %v", err)
	}
	if a, _ = f.uc.GetRequirementAlert(req.ID); a != nil {
		t.Fatalf("expected no alert, got %+v", a)
	}

	if _, err := f.uc.SetRequirementStatus(ctx, req.ID, model.RequirementClosed); err != nil {
		t.Fatalf("close: %v", err)
	}
	ta, _ := f.uc.GetTAWorkload(f.ta.ID)
	if ta.CurrentLoad != 1 {
		t.Fatalf("closing must release the requirement from the TA, load %d", ta.CurrentLoad)
	}

	alerts := f.uc.ListAlerts()
	for _, rec := range alerts {
		if rec.RequirementID == req.ID {
			t.Fatalf("closed requirement listed in alerts: %+v", rec)
		}
	}
}

func TestSourcedCandidateStartsInApplication(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	c, err := f.uc.SourceCandidate(ctx, CandidateInput{Name: "Sam", Email: "sam@example.test", RequirementID: f.req.ID, Priority: model.PriorityHigh})
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	if c.Stage != model.StageApplication || c.AssignedTA == nil || *c.AssignedTA != f.ta.ID || c.AppliedRole != "Backend Engineer" {
		t.Fatalf("unexpected sourced candidate: %+v", c)
	}
	c = f.advance(t, c)
	if c.Stage != model.StagePhoneScreening {
		t.Fatalf("application should advance ungated, got %s", c.Stage)
	}

	page, err := f.uc.ListCandidates(CandidateFilter{RequirementID: &f.req.ID, Stage: model.StagePhoneScreening})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 || page.Items[0].ID != c.ID {
		t.Fatalf("unexpected page: %+v", page)
	}

	if _, err := f.uc.SourceCandidate(ctx, CandidateInput{Name: "Tia", Email: "not-an-email", RequirementID: f.req.ID}); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected invalid email to fail, got %v", err)
	}
}

func TestNotificationFailureDoesNotFailCommand(t *testing.T) {
	f := newFixture(t, 1)
	f.notifier.fails = true
	c := f.apply(t, "Uma")
	if _, err := f.uc.Schedule(context.Background(), c.ID, c.Stage, internalSlot(testStart.AddDate(0, 0, 1), "int-1")); err != nil {
		t.Fatalf("schedule must succeed when notify fails: %v", err)
	}
	if status, _ := f.uc.ScheduleStatus(c.ID, c.Stage); status != model.ScheduleScheduled {
		t.Fatalf("expected scheduled, got %s", status)
	}
}

func TestPaginate(t *testing.T) {
	t.Parallel()

	items := []int{1, 2, 3, 4, 5}
	if p := paginate(items, 2, 2); p.Total != 5 || len(p.Items) != 2 || p.Items[0] != 3 {
		t.Fatalf("unexpected page: %+v", p)
	}
	if p := paginate(items, 9, 2); len(p.Items) != 0 {
		t.Fatalf("expected empty page past the end, got %+v", p)
	}
	if p := paginate(items, 0, 0); p.Page != 1 || p.PageSize != defaultPageSize {
		t.Fatalf("unexpected defaults: %+v", p)
	}
}
