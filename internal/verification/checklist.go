// Package verification implements the background check checklist. The
// functions mutate a session value in memory; callers persist it.
package verification

import (
	"math"
	"strings"
	"time"

	"github.com/fadilmartias/hiring-pipeline/internal/apperror"
	"github.com/fadilmartias/hiring-pipeline/internal/model"
	"github.com/google/uuid"
)

// Blocker codes.
const (
	ProblemMissing    = "missing"
	ProblemRejected   = "rejected"
	ProblemUnverified = "unverified"
)

// Blocker is one required document standing in the way of a step.
type Blocker struct {
	Document model.DocumentType `json:"document"`
	Problem  string             `json:"problem"`
}

// CollectionBlockers lists required documents that have not been supplied.
// A rejected upload counts as not supplied.
func CollectionBlockers(s *model.VerificationSession) []Blocker {
	var out []Blocker
	for _, t := range model.RequiredDocuments {
		doc, ok := s.Document(t)
		switch {
		case !ok:
			out = append(out, Blocker{Document: t, Problem: ProblemMissing})
		case doc.Status == model.DocumentRejected:
			out = append(out, Blocker{Document: t, Problem: ProblemRejected})
		}
	}
	return out
}

// CompletionBlockers lists required documents that are not verified.
func CompletionBlockers(s *model.VerificationSession) []Blocker {
	var out []Blocker
	for _, t := range model.RequiredDocuments {
		doc, ok := s.Document(t)
		switch {
		case !ok:
			out = append(out, Blocker{Document: t, Problem: ProblemMissing})
		case doc.Status == model.DocumentRejected:
			out = append(out, Blocker{Document: t, Problem: ProblemRejected})
		case doc.Status != model.DocumentVerified:
			out = append(out, Blocker{Document: t, Problem: ProblemUnverified})
		}
	}
	return out
}

// Progress is the share of checklist steps done, in percent.
func Progress(s *model.VerificationSession) float64 {
	if s.Status == model.VerificationCompleted {
		return 100
	}
	pct := float64(s.StepIndex) * 100 / float64(len(model.VerificationSteps))
	return math.Round(pct*100) / 100
}

// SLABreached reports whether an unfinished session is past its SLA date.
func SLABreached(s *model.VerificationSession, now time.Time) bool {
	if s.SLADate == nil || s.Status.Terminal() {
		return false
	}
	return now.After(*s.SLADate)
}

// CompleteStep finishes the current step. The last step completes the
// session only when every required document is verified.
func CompleteStep(s *model.VerificationSession, now time.Time) error {
	switch s.Status {
	case model.VerificationCompleted, model.VerificationFailed:
		return apperror.OutOfSequence("verification session is %s", s.Status)
	case model.VerificationOnHold:
		return apperror.OutOfSequence("verification session is on hold")
	}

	if s.Step() == model.StepDocumentCollection {
		if blockers := CollectionBlockers(s); len(blockers) > 0 {
			return apperror.StageBlocked("documents-missing", "required documents have not been collected").
				WithDetails(blockers)
		}
	}
	if s.AtLastStep() {
		if blockers := CompletionBlockers(s); len(blockers) > 0 {
			return apperror.StageBlocked("documents-unverified", "required documents are not verified").
				WithDetails(blockers)
		}
		s.Status = model.VerificationCompleted
		s.CompletedAt = &now
		s.UpdatedAt = now
		return nil
	}

	s.StepIndex++
	if s.Status == model.VerificationNotStarted {
		s.Status = model.VerificationInProgress
	}
	s.UpdatedAt = now
	return nil
}

func Hold(s *model.VerificationSession, note string, now time.Time) error {
	if s.Status.Terminal() || s.Status == model.VerificationOnHold {
		return apperror.OutOfSequence("cannot hold a session that is %s", s.Status)
	}
	s.Status = model.VerificationOnHold
	addNote(s, note)
	s.UpdatedAt = now
	return nil
}

// Resume returns a held session to in-progress.
func Resume(s *model.VerificationSession, now time.Time) error {
	if s.Status != model.VerificationOnHold {
		return apperror.OutOfSequence("cannot resume a session that is %s", s.Status)
	}
	s.Status = model.VerificationInProgress
	s.UpdatedAt = now
	return nil
}

func Fail(s *model.VerificationSession, reason string, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apperror.Validation("failure reason is required")
	}
	if s.Status.Terminal() {
		return apperror.OutOfSequence("cannot fail a session that is %s", s.Status)
	}
	s.Status = model.VerificationFailed
	s.FailureReason = reason
	s.UpdatedAt = now
	return nil
}

// AddDocument records uploaded document metadata. A new upload of any type
// other than "other" replaces the earlier record of that type.
func AddDocument(s *model.VerificationSession, t model.DocumentType, storageURL string, pages int, now time.Time) (model.DocumentRecord, error) {
	if !t.IsValid() {
		return model.DocumentRecord{}, apperror.Validation("unknown document type %q", t)
	}
	if strings.TrimSpace(storageURL) == "" {
		return model.DocumentRecord{}, apperror.Validation("storage url is required")
	}
	if s.Status.Terminal() {
		return model.DocumentRecord{}, apperror.OutOfSequence("verification session is %s", s.Status)
	}

	doc := model.DocumentRecord{
		ID:         uuid.New(),
		Type:       t,
		Status:     model.DocumentUploaded,
		StorageURL: storageURL,
		Pages:      pages,
		UploadedAt: now,
	}
	if t != model.DocOther {
		kept := s.Documents[:0:0]
		for _, existing := range s.Documents {
			if existing.Type != t {
				kept = append(kept, existing)
			}
		}
		s.Documents = kept
	}
	s.Documents = append(s.Documents, doc)
	s.UpdatedAt = now
	return doc, nil
}

// Review sets the status of one document.
func Review(s *model.VerificationSession, documentID uuid.UUID, status model.DocumentStatus, now time.Time) (model.DocumentRecord, error) {
	if !status.IsValid() || status == model.DocumentUploaded {
		return model.DocumentRecord{}, apperror.Validation("invalid review status %q", status)
	}
	if s.Status.Terminal() {
		return model.DocumentRecord{}, apperror.OutOfSequence("verification session is %s", s.Status)
	}
	for i := range s.Documents {
		if s.Documents[i].ID != documentID {
			continue
		}
		s.Documents[i].Status = status
		reviewed := now
		s.Documents[i].ReviewedAt = &reviewed
		s.UpdatedAt = now
		return s.Documents[i], nil
	}
	return model.DocumentRecord{}, apperror.NotFound("document", documentID)
}

func addNote(s *model.VerificationSession, note string) {
	if note = strings.TrimSpace(note); note != "" {
		s.Notes = append(s.Notes, note)
	}
}

// Status is the read model returned to callers.
type Status struct {
	SessionID   uuid.UUID                `json:"session_id"`
	CandidateID uuid.UUID                `json:"candidate_id"`
	Status      model.VerificationStatus `json:"status"`
	Step        model.VerificationStep   `json:"step"`
	StepIndex   int                      `json:"step_index"`
	TotalSteps  int                      `json:"total_steps"`
	Progress    float64                  `json:"progress"`
	Blockers    []Blocker                `json:"blockers"`
	SLADate     *time.Time               `json:"sla_date,omitempty"`
	SLABreached bool                     `json:"sla_breached"`
	Partner     string                   `json:"verification_partner"`
	Documents   []model.DocumentRecord   `json:"documents"`
	Notes       []string                 `json:"notes,omitempty"`
}

// Describe builds the read model for a session.
func Describe(s model.VerificationSession, now time.Time) Status {
	blockers := CompletionBlockers(&s)
	if s.Status == model.VerificationCompleted {
		blockers = nil
	}
	return Status{
		SessionID:   s.ID,
		CandidateID: s.CandidateID,
		Status:      s.Status,
		Step:        s.Step(),
		StepIndex:   s.StepIndex,
		TotalSteps:  len(model.VerificationSteps),
		Progress:    Progress(&s),
		Blockers:    blockers,
		SLADate:     s.SLADate,
		SLABreached: SLABreached(&s, now),
		Partner:     s.VerificationPartner,
		Documents:   s.Documents,
		Notes:       s.Notes,
	}
}
