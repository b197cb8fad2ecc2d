package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fadilmartias/hiring-pipeline/internal/apperror"
	"github.com/fadilmartias/hiring-pipeline/internal/model"
	"github.com/fadilmartias/hiring-pipeline/internal/service"
	"github.com/fadilmartias/hiring-pipeline/internal/store"
	"github.com/fadilmartias/hiring-pipeline/internal/verification"
	"github.com/google/uuid"
)

// StartVerification opens the background check of a candidate sitting in
// background-verification.
func (uc *PipelineUsecase) StartVerification(ctx context.Context, candidateID uuid.UUID, partner string, slaDate *time.Time) (model.VerificationSession, error) {
	partner = strings.TrimSpace(partner)
	if partner == "" {
		return model.VerificationSession{}, apperror.Validation("verification partner is required")
	}

	var out model.VerificationSession
	err := uc.store.Update(ctx, func(tx *store.Tx) error {
		c, err := tx.Candidate(candidateID)
		if err != nil {
			return err
		}
		if c.Archived() || c.Stage != model.StageBackgroundVerification {
			return apperror.Validation("candidate is not in background verification")
		}
		if active, ok := tx.ActiveVerification(c.ID); ok {
			return apperror.Validation("candidate already has an active verification session").
				WithDetails(map[string]any{"session_id": active.ID})
		}
		now := uc.now()
		out = model.VerificationSession{
			ID:                  uuid.New(),
			CandidateID:         c.ID,
			Visit:               c.Visit(),
			Status:              model.VerificationNotStarted,
			VerificationPartner: partner,
			SLADate:             slaDate,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		tx.PutVerification(out)
		return nil
	})
	if err != nil {
		return model.VerificationSession{}, err
	}
	uc.logger.Info("verification started", "session_id", out.ID, "candidate_id", out.CandidateID, "partner", partner)
	return out, nil
}

// UploadDocument attaches document metadata to the candidate's active
// session. The file itself lives behind storageURL.
func (uc *PipelineUsecase) UploadDocument(ctx context.Context, candidateID uuid.UUID, docType model.DocumentType, storageURL string, pages int) (model.DocumentRecord, error) {
	var out model.DocumentRecord
	err := uc.store.Update(ctx, func(tx *store.Tx) error {
		if _, err := tx.Candidate(candidateID); err != nil {
			return err
		}
		session, ok := tx.ActiveVerification(candidateID)
		if !ok {
			return apperror.Validation("candidate has no active verification session")
		}
		doc, err := verification.AddDocument(&session, docType, storageURL, pages, uc.now())
		if err != nil {
			return err
		}
		tx.PutVerification(session)
		out = doc
		return nil
	})
	return out, err
}

func (uc *PipelineUsecase) ReviewDocument(ctx context.Context, sessionID, documentID uuid.UUID, status model.DocumentStatus) (model.DocumentRecord, error) {
	var out model.DocumentRecord
	_, err := uc.updateVerification(ctx, sessionID, func(s *model.VerificationSession, now time.Time) error {
		doc, err := verification.Review(s, documentID, status, now)
		out = doc
		return err
	})
	return out, err
}

// CompleteStep finishes the current checklist step.
func (uc *PipelineUsecase) CompleteStep(ctx context.Context, sessionID uuid.UUID) (model.VerificationSession, error) {
	session, err := uc.updateVerification(ctx, sessionID, verification.CompleteStep)
	if err != nil {
		return model.VerificationSession{}, err
	}
	if session.Status == model.VerificationCompleted {
		uc.notify(ctx, service.Notification{
			Kind:        service.NotifyVerificationDone,
			CandidateID: session.CandidateID,
			Stage:       model.StageBackgroundVerification,
			At:          uc.now(),
			Data:        map[string]any{"session_id": session.ID, "partner": session.VerificationPartner},
		})
	}
	return session, nil
}

func (uc *PipelineUsecase) HoldVerification(ctx context.Context, sessionID uuid.UUID, note string) (model.VerificationSession, error) {
	return uc.updateVerification(ctx, sessionID, func(s *model.VerificationSession, now time.Time) error {
		return verification.Hold(s, note, now)
	})
}

func (uc *PipelineUsecase) ResumeVerification(ctx context.Context, sessionID uuid.UUID) (model.VerificationSession, error) {
	return uc.updateVerification(ctx, sessionID, verification.Resume)
}

// FailVerification ends the session as failed. The candidate stays in the
// stage until rejected or a new session is started.
func (uc *PipelineUsecase) FailVerification(ctx context.Context, sessionID uuid.UUID, reason, actor string) (model.VerificationSession, error) {
	session, err := uc.updateVerification(ctx, sessionID, func(s *model.VerificationSession, now time.Time) error {
		return verification.Fail(s, reason, now)
	})
	if err != nil {
		return model.VerificationSession{}, err
	}
	uc.audit(ctx, model.AuditEntry{
		Action:        model.AuditVerificationFail,
		Actor:         actor,
		CandidateID:   uuidPtr(session.CandidateID),
		FromStage:     model.StageBackgroundVerification,
		Justification: session.FailureReason,
	}, nil)
	return session, nil
}

// GetVerificationStatus describes the candidate's newest session.
func (uc *PipelineUsecase) GetVerificationStatus(candidateID uuid.UUID) (verification.Status, error) {
	var out verification.Status
	err := uc.store.View(func(tx *store.Tx) error {
		if _, err := tx.Candidate(candidateID); err != nil {
			return err
		}
		session, ok := tx.LatestVerification(candidateID)
		if !ok {
			return apperror.NotFound("verification session for candidate", candidateID)
		}
		out = verification.Describe(session, uc.now())
		return nil
	})
	return out, err
}

func (uc *PipelineUsecase) updateVerification(ctx context.Context, sessionID uuid.UUID, fn func(s *model.VerificationSession, now time.Time) error) (model.VerificationSession, error) {
	var out model.VerificationSession
	err := uc.store.Update(ctx, func(tx *store.Tx) error {
		session, err := tx.Verification(sessionID)
		if err != nil {
			return err
		}
		if err := fn(&session, uc.now()); err != nil {
			return err
		}
		tx.PutVerification(session)
		out = session
		return nil
	})
	if err != nil {
		return model.VerificationSession{}, err
	}
	uc.logger.Info("verification updated", "session_id", out.ID, "status", out.Status, "step", out.Step())
	return out, nil
}
