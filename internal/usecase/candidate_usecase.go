package usecase

import (
	"context"
	"net/mail"
	"strings"

	"github.com/fadilmartias/hiring-pipeline/internal/apperror"
	"github.com/fadilmartias/hiring-pipeline/internal/model"
	"github.com/fadilmartias/hiring-pipeline/internal/service"
	"github.com/fadilmartias/hiring-pipeline/internal/store"
	"github.com/google/uuid"
)

// Blocked reasons returned by Advance as the error code.
const (
	BlockedNoSchedule             = "no-schedule"
	BlockedInterviewNotCompleted  = "interview-not-completed"
	BlockedFeedbackMissing        = "feedback-missing"
	BlockedFeedbackHold           = "feedback-hold"
	BlockedFeedbackReject         = "feedback-reject"
	BlockedVerificationIncomplete = "verification-incomplete"
	BlockedVacanciesFilled        = "vacancies-filled"
	BlockedCandidateArchived      = "candidate-archived"
)

type CandidateInput struct {
	Name          string
	Email         string
	Phone         string
	RequirementID uuid.UUID
	Priority      model.Priority
}

// SourceCandidate adds a prospect found by a TA. It starts in application.
func (uc *PipelineUsecase) SourceCandidate(ctx context.Context, in CandidateInput) (model.Candidate, error) {
	return uc.createCandidate(ctx, in, model.StageApplication)
}

// SubmitApplication records an inbound application. The submission is the
// application step, so the candidate starts in phone-screening.
func (uc *PipelineUsecase) SubmitApplication(ctx context.Context, in CandidateInput) (model.Candidate, error) {
	return uc.createCandidate(ctx, in, model.StagePhoneScreening)
}

func (uc *PipelineUsecase) createCandidate(ctx context.Context, in CandidateInput, stage model.Stage) (model.Candidate, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" {
		return model.Candidate{}, apperror.Validation("candidate name is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return model.Candidate{}, apperror.Validation("candidate email %q is invalid", in.Email)
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	if !in.Priority.IsValid() {
		return model.Candidate{}, apperror.Validation("unknown priority %q", in.Priority)
	}

	var created model.Candidate
	err := uc.store.Update(ctx, func(tx *store.Tx) error {
		req, err := tx.Requirement(in.RequirementID)
		if err != nil {
			return err
		}
		if req.Status == model.RequirementClosed {
			return apperror.Validation("requirement %s is closed", req.ID)
		}
		role, err := tx.Role(req.RoleID)
		if err != nil {
			return err
		}
		now := uc.now()
		c := model.Candidate{
			ID:            uuid.New(),
			Name:          in.Name,
			Contact:       model.Contact{Email: in.Email, Phone: strings.TrimSpace(in.Phone)},
			AppliedRole:   role.Title,
			RequirementID: req.ID,
			Priority:      in.Priority,
			AssignedTA:    req.AssignedTA,
			CreatedAt:     now,
		}
		c.Enter(stage, now, false)
		tx.PutCandidate(c)
		created = c
		return nil
	})
	if err != nil {
		return model.Candidate{}, err
	}
	uc.logger.Info("candidate created", "candidate_id", created.ID, "requirement_id", created.RequirementID, "stage", created.Stage)
	return created, nil
}

// Advance moves the candidate to the next stage once the current stage's
// gate is satisfied. Advancing out of final-review hires the candidate.
func (uc *PipelineUsecase) Advance(ctx context.Context, candidateID uuid.UUID) (model.Candidate, error) {
	var out model.Candidate
	err := uc.store.Update(ctx, func(tx *store.Tx) error {
		c, err := tx.Candidate(candidateID)
		if err != nil {
			return err
		}
		if c.Archived() {
			return apperror.StageBlocked(BlockedCandidateArchived, "candidate is archived as %s", c.Outcome)
		}
		if err := checkGate(tx, &c); err != nil {
			return err
		}

		now := uc.now()
		if c.Stage.IsFinal() {
			if err := checkVacancy(tx, &c); err != nil {
				return err
			}
			c.Archive(model.OutcomeHired, "", now)
		} else {
			next, _ := c.Stage.Next()
			c.Enter(next, now, false)
		}
		tx.PutCandidate(c)
		out = c
		return nil
	})
	if err != nil {
		return model.Candidate{}, err
	}

	uc.logger.Info("candidate advanced", "candidate_id", out.ID, "stage", out.Stage, "outcome", out.Outcome)
	if out.Outcome == model.OutcomeHired {
		uc.notify(ctx, service.Notification{
			Kind:        service.NotifyCandidateHired,
			CandidateID: out.ID,
			Stage:       out.Stage,
			Recipient:   out.Contact.Email,
			At:          uc.now(),
		})
	}
	return out, nil
}

// checkGate verifies the exit condition of the candidate's current stage.
// Records stamped with an earlier visit of the stage do not count.
func checkGate(tx *store.Tx, c *model.Candidate) error {
	switch c.Stage.Gate() {
	case model.GateInterview:
		sched, ok := currentSchedule(tx, c)
		if !ok {
			return apperror.StageBlocked(BlockedNoSchedule, "no interview scheduled for %s", c.Stage)
		}
		if sched.Status != model.ScheduleCompleted {
			return apperror.StageBlocked(BlockedInterviewNotCompleted, "interview for %s is %s", c.Stage, sched.Status)
		}
		fb, ok := tx.CurrentFeedback(sched.ID)
		if !ok {
			return apperror.StageBlocked(BlockedFeedbackMissing, "no feedback submitted for %s", c.Stage)
		}
		switch fb.Recommendation {
		case model.RecommendHold:
			return apperror.StageBlocked(BlockedFeedbackHold, "feedback for %s recommends hold", c.Stage)
		case model.RecommendReject:
			return apperror.StageBlocked(BlockedFeedbackReject, "feedback for %s recommends reject", c.Stage)
		}
	case model.GateVerification:
		session, ok := tx.LatestVerification(c.ID)
		if !ok || session.Status != model.VerificationCompleted || session.Visit != c.Visit() {
			return apperror.StageBlocked(BlockedVerificationIncomplete, "background verification is not completed")
		}
	}
	return nil
}

func checkVacancy(tx *store.Tx, c *model.Candidate) error {
	req, err := tx.Requirement(c.RequirementID)
	if err != nil {
		return err
	}
	if req.PipelineCounts.Hired >= req.Vacancies {
		return apperror.StageBlocked(BlockedVacanciesFilled, "all %d vacancies of requirement %s are filled", req.Vacancies, req.ID)
	}
	role, err := tx.Role(req.RoleID)
	if err != nil {
		return err
	}
	if role.FilledPositions >= role.TotalVacancies {
		return apperror.StageBlocked(BlockedVacanciesFilled, "all %d positions of role %s are filled", role.TotalVacancies, role.ID)
	}
	return nil
}

// currentSchedule is the newest non-cancelled record for the candidate's
// current stage visit.
func currentSchedule(tx *store.Tx, c *model.Candidate) (model.ScheduleRecord, bool) {
	visit := c.Visit()
	records := tx.Schedules(func(s *model.ScheduleRecord) bool {
		return s.CandidateID == c.ID && s.Stage == c.Stage && s.Visit == visit && s.Status != model.ScheduleCancelled
	})
	if len(records) == 0 {
		return model.ScheduleRecord{}, false
	}
	return records[len(records)-1], true
}

// Reject archives the candidate and cancels their open interviews.
func (uc *PipelineUsecase) Reject(ctx context.Context, candidateID uuid.UUID, reason, actor string) (model.Candidate, error) {
	return uc.archive(ctx, candidateID, model.OutcomeRejected, model.AuditReject, reason, actor)
}

// Withdraw is Reject initiated by the candidate.
func (uc *PipelineUsecase) Withdraw(ctx context.Context, candidateID uuid.UUID, reason, actor string) (model.Candidate, error) {
	return uc.archive(ctx, candidateID, model.OutcomeWithdrawn, model.AuditWithdraw, reason, actor)
}

func (uc *PipelineUsecase) archive(ctx context.Context, candidateID uuid.UUID, outcome model.Outcome, action model.AuditAction, reason, actor string) (model.Candidate, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return model.Candidate{}, apperror.Validation("reason is required")
	}

	var (
		out       model.Candidate
		cancelled []model.ScheduleRecord
	)
	err := uc.store.Update(ctx, func(tx *store.Tx) error {
		c, err := tx.Candidate(candidateID)
		if err != nil {
			return err
		}
		if c.Archived() {
			return apperror.StageBlocked(BlockedCandidateArchived, "candidate is already archived as %s", c.Outcome)
		}
		now := uc.now()
		c.Archive(outcome, reason, now)
		tx.PutCandidate(c)

		for _, s := range tx.Schedules(func(s *model.ScheduleRecord) bool {
			return s.CandidateID == c.ID && !s.Status.Terminal()
		}) {
			s.Status = model.ScheduleCancelled
			s.CancelReason = "candidate " + string(outcome)
			s.UpdatedAt = now
			tx.PutSchedule(s)
			cancelled = append(cancelled, s)
		}
		if session, ok := tx.ActiveVerification(c.ID); ok {
			session.Status = model.VerificationFailed
			session.FailureReason = "candidate " + string(outcome)
			session.UpdatedAt = now
			tx.PutVerification(session)
		}
		out = c
		return nil
	})
	if err != nil {
		return model.Candidate{}, err
	}

	uc.audit(ctx, model.AuditEntry{
		Action:        action,
		Actor:         actor,
		CandidateID:   uuidPtr(out.ID),
		RequirementID: uuidPtr(out.RequirementID),
		FromStage:     out.Stage,
		Justification: reason,
	}, nil)
	for _, s := range cancelled {
		uc.notify(ctx, cancellationNotice(s, uc.now()))
	}
	uc.logger.Info("candidate archived", "candidate_id", out.ID, "outcome", outcome, "cancelled_interviews", len(cancelled))
	return out, nil
}

// Reopen moves a candidate to any stage, archived or not. It bypasses every
// gate, so each attempt is audited whether or not it succeeds.
func (uc *PipelineUsecase) Reopen(ctx context.Context, candidateID uuid.UUID, target model.Stage, justification, actor string) (out model.Candidate, err error) {
	entry := model.AuditEntry{
		Action:        model.AuditReopen,
		Actor:         actor,
		CandidateID:   uuidPtr(candidateID),
		ToStage:       target,
		Justification: justification,
	}
	defer func() {
		uc.audit(ctx, entry, err)
	}()

	if strings.TrimSpace(justification) == "" {
		return model.Candidate{}, apperror.Validation("justification is required to reopen a candidate")
	}
	if !target.IsValid() {
		return model.Candidate{}, apperror.Validation("unknown stage %q", target)
	}

	err = uc.store.Update(ctx, func(tx *store.Tx) error {
		c, err := tx.Candidate(candidateID)
		if err != nil {
			return err
		}
		entry.FromStage = c.Stage
		entry.RequirementID = uuidPtr(c.RequirementID)

		c.Outcome = model.OutcomeNone
		c.RejectionReason = ""
		c.ArchivedAt = nil
		c.Enter(target, uc.now(), true)
		tx.PutCandidate(c)
		out = c
		return nil
	})
	if err != nil {
		return model.Candidate{}, err
	}
	uc.logger.Warn("candidate reopened", "candidate_id", out.ID, "from", entry.FromStage, "to", target, "actor", actor)
	return out, nil
}
