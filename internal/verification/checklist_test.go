package verification

import (
	"errors"
	"testing"
	"time"

	"github.com/fadilmartias/hiring-pipeline/internal/apperror"
	"github.com/fadilmartias/hiring-pipeline/internal/model"
	"github.com/google/uuid"
)

var now = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

func newSession() *model.VerificationSession {
	return &model.VerificationSession{
		ID:          uuid.New(),
		CandidateID: uuid.New(),
		Status:      model.VerificationNotStarted,
		CreatedAt:   now,
	}
}

func upload(t *testing.T, s *model.VerificationSession, dt model.DocumentType) model.DocumentRecord {
	t.Helper()
	doc, err := AddDocument(s, dt, "s3://docs/"+string(dt)+".pdf", 1, now)
	if err != nil {
		t.Fatalf("upload %s: %v", dt, err)
	}
	return doc
}

func walkToLastStep(t *testing.T, s *model.VerificationSession) {
	t.Helper()
	for !s.AtLastStep() {
		if err := CompleteStep(s, now); err != nil {
			t.Fatalf("complete step %s: %v", s.Step(), err)
		}
	}
}

func blockersOf(t *testing.T, err error) []Blocker {
	t.Helper()
	var appErr *apperror.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperror.KindStageBlocked {
		t.Fatalf("expected stage blocked, got %v", err)
	}
	blockers, ok := appErr.Details.([]Blocker)
	if !ok {
		t.Fatalf("expected blocker details, got %T", appErr.Details)
	}
	return blockers
}

func TestDocumentCollectionNeedsRequiredUploads(t *testing.T) {
	t.Parallel()

	s := newSession()
	upload(t, s, model.DocResume)
	blockers := blockersOf(t, CompleteStep(s, now))
	if len(blockers) != 1 || blockers[0].Document != model.DocIDProof || blockers[0].Problem != ProblemMissing {
		t.Fatalf("unexpected blockers: %+v", blockers)
	}
	if s.Status != model.VerificationNotStarted || s.StepIndex != 0 {
		t.Fatalf("blocked step must not move the session: %+v", s)
	}

	upload(t, s, model.DocIDProof)
	if err := CompleteStep(s, now); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if s.Status != model.VerificationInProgress || s.StepIndex != 1 {
		t.Fatalf("expected in-progress at identity, got %s at %d", s.Status, s.StepIndex)
	}
}

func TestCompletionGateOnRequiredDocuments(t *testing.T) {
	t.Parallel()

	s := newSession()
	resume := upload(t, s, model.DocResume)
	idProof := upload(t, s, model.DocIDProof)
	walkToLastStep(t, s)

	// Uploaded but unreviewed.
	blockers := blockersOf(t, CompleteStep(s, now))
	if len(blockers) != 2 || blockers[0].Problem != ProblemUnverified {
		t.Fatalf("unexpected blockers: %+v", blockers)
	}

	if _, err := Review(s, resume.ID, model.DocumentVerified, now); err != nil {
		t.Fatalf("review: %v", err)
	}
	if _, err := Review(s, idProof.ID, model.DocumentRejected, now); err != nil {
		t.Fatalf("review: %v", err)
	}
	blockers = blockersOf(t, CompleteStep(s, now))
	if len(blockers) != 1 || blockers[0].Document != model.DocIDProof || blockers[0].Problem != ProblemRejected {
		t.Fatalf("unexpected blockers: %+v", blockers)
	}
	if s.Status == model.VerificationCompleted {
		t.Fatalf("session completed with a rejected required document")
	}

	replacement := upload(t, s, model.DocIDProof)
	if got := len(s.Documents); got != 2 {
		t.Fatalf("re-upload should replace the prior id-proof, have %d documents", got)
	}
	if _, err := Review(s, replacement.ID, model.DocumentVerified, now); err != nil {
		t.Fatalf("review: %v", err)
	}
	if err := CompleteStep(s, now); err != nil {
		t.Fatalf("complete last step: %v", err)
	}
	if s.Status != model.VerificationCompleted || s.CompletedAt == nil || Progress(s) != 100 {
		t.Fatalf("expected completed session, got %+v", s)
	}
	if err := CompleteStep(s, now); !errors.Is(err, apperror.ErrOutOfSequence) {
		t.Fatalf("expected out of sequence on terminal session, got %v", err)
	}
}

func TestHoldResumeFail(t *testing.T) {
	t.Parallel()

	s := newSession()
	if err := Hold(s, "waiting on partner", now); err != nil {
		t.Fatalf("hold: %v", err)
	}
	if err := CompleteStep(s, now); !errors.Is(err, apperror.ErrOutOfSequence) {
		t.Fatalf("expected out of sequence while on hold, got %v", err)
	}
	if err := Resume(s, now); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if err := Resume(s, now); !errors.Is(err, apperror.ErrOutOfSequence) {
		t.Fatalf("expected out of sequence resuming an active session, got %v", err)
	}
	if err := Fail(s, " ", now); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error for blank reason, got %v", err)
	}
	if err := Fail(s, "identity mismatch", now); err != nil {
		t.Fatalf("fail: %v", err)
	}
	if _, err := AddDocument(s, model.DocResume, "s3://x", 0, now); !errors.Is(err, apperror.ErrOutOfSequence) {
		t.Fatalf("expected uploads to a failed session to be refused, got %v", err)
	}
}

func TestOtherDocumentsAccumulate(t *testing.T) {
	t.Parallel()

	s := newSession()
	upload(t, s, model.DocOther)
	upload(t, s, model.DocOther)
	if len(s.Documents) != 2 {
		t.Fatalf("expected both other documents kept, got %d", len(s.Documents))
	}
	if _, err := AddDocument(s, "passport-photo", "s3://x", 0, now); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected unknown type to fail validation, got %v", err)
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	s := newSession()
	sla := now.AddDate(0, 0, -1)
	s.SLADate = &sla
	s.StepIndex = 2
	s.Status = model.VerificationInProgress

	st := Describe(*s, now)
	if !st.SLABreached || st.Step != model.StepEmployment || st.TotalSteps != 7 {
		t.Fatalf("unexpected status: %+v", st)
	}
	if st.Progress != 28.57 {
		t.Fatalf("expected 28.57%% progress, got %.2f", st.Progress)
	}
	if len(st.Blockers) != 2 {
		t.Fatalf("expected both required documents listed as blockers, got %+v", st.Blockers)
	}
}
