package usecase

import (
	"context"
	"math"
	"strings"

	"github.com/fadilmartias/hiring-pipeline/internal/apperror"
	"github.com/fadilmartias/hiring-pipeline/internal/model"
	"github.com/fadilmartias/hiring-pipeline/internal/service"
	"github.com/fadilmartias/hiring-pipeline/internal/store"
	"github.com/google/uuid"
)

type FeedbackInput struct {
	SkillRatings   map[string]int
	OverallRating  int
	Recommendation model.Recommendation
	Strengths      string
	Concerns       string
	Notes          string
	SubmittedBy    string
}

// CandidateScoreScale maps a 1..5 composite onto the 0..100 candidate score.
const CandidateScoreScale = 20

// SubmitFeedback stores the first feedback of a completed interview.
func (uc *PipelineUsecase) SubmitFeedback(ctx context.Context, scheduleID uuid.UUID, in FeedbackInput) (model.FeedbackRecord, error) {
	if err := validateFeedback(in); err != nil {
		return model.FeedbackRecord{}, err
	}

	var out model.FeedbackRecord
	err := uc.store.Update(ctx, func(tx *store.Tx) error {
		sched, err := tx.Schedule(scheduleID)
		if err != nil {
			return err
		}
		if sched.Status != model.ScheduleCompleted {
			return apperror.PrematureFeedback("interview is %s, feedback opens once it is completed", sched.Status)
		}
		if existing, ok := tx.CurrentFeedback(sched.ID); ok {
			return apperror.Validation("feedback already submitted for this interview, amend it instead").
				WithDetails(map[string]any{"feedback_id": existing.ID})
		}
		rec, err := uc.buildFeedback(sched, in)
		if err != nil {
			return err
		}
		if err := uc.applyScore(tx, rec); err != nil {
			return err
		}
		tx.PutFeedback(rec)
		out = rec
		return nil
	})
	if err != nil {
		return model.FeedbackRecord{}, err
	}

	uc.notify(ctx, service.Notification{
		Kind:        service.NotifyFeedbackSubmitted,
		CandidateID: out.CandidateID,
		ScheduleID:  uuidPtr(out.ScheduleID),
		Stage:       out.Stage,
		At:          out.SubmittedAt,
		Data: map[string]any{
			"composite_score": out.CompositeScore,
			"overall_rating":  out.OverallRating,
			"recommendation":  out.Recommendation,
		},
	})
	uc.logger.Info("feedback submitted", "feedback_id", out.ID, "schedule_id", out.ScheduleID, "composite", out.CompositeScore, "recommendation", out.Recommendation)
	return out, nil
}

// AmendFeedback supersedes a current feedback record with a new one. The
// prior record stays in history.
func (uc *PipelineUsecase) AmendFeedback(ctx context.Context, feedbackID uuid.UUID, in FeedbackInput) (model.FeedbackRecord, error) {
	if err := validateFeedback(in); err != nil {
		return model.FeedbackRecord{}, err
	}

	var (
		out   model.FeedbackRecord
		prior model.FeedbackRecord
	)
	err := uc.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		prior, err = tx.Feedback(feedbackID)
		if err != nil {
			return err
		}
		if !prior.Current() {
			return apperror.Validation("feedback %s was already amended by %s", prior.ID, *prior.SupersededBy)
		}
		sched, err := tx.Schedule(prior.ScheduleID)
		if err != nil {
			return err
		}
		rec, err := uc.buildFeedback(sched, in)
		if err != nil {
			return err
		}
		rec.Supersedes = uuidPtr(prior.ID)
		prior.SupersededBy = uuidPtr(rec.ID)
		if err := uc.applyScore(tx, rec); err != nil {
			return err
		}
		tx.PutFeedback(prior)
		tx.PutFeedback(rec)
		out = rec
		return nil
	})
	if err != nil {
		return model.FeedbackRecord{}, err
	}

	uc.audit(ctx, model.AuditEntry{
		Action:        model.AuditFeedbackAmend,
		Actor:         in.SubmittedBy,
		CandidateID:   uuidPtr(out.CandidateID),
		FromStage:     out.Stage,
		ToStage:       out.Stage,
		Justification: "amended feedback " + prior.ID.String(),
	}, nil)
	return out, nil
}

// GetFeedbackHistory lists every feedback record of a candidate including
// superseded ones, oldest first.
func (uc *PipelineUsecase) GetFeedbackHistory(candidateID uuid.UUID) ([]model.FeedbackRecord, error) {
	var out []model.FeedbackRecord
	err := uc.store.View(func(tx *store.Tx) error {
		if _, err := tx.Candidate(candidateID); err != nil {
			return err
		}
		out = tx.FeedbackWhere(func(f *model.FeedbackRecord) bool { return f.CandidateID == candidateID })
		return nil
	})
	return out, err
}

func (uc *PipelineUsecase) buildFeedback(sched model.ScheduleRecord, in FeedbackInput) (model.FeedbackRecord, error) {
	weights, err := uc.weights.For(sched.Stage)
	if err != nil {
		return model.FeedbackRecord{}, err
	}
	composite, err := weights.Composite(in.SkillRatings)
	if err != nil {
		return model.FeedbackRecord{}, err
	}
	ratings := make(map[string]int, len(in.SkillRatings))
	for k, v := range in.SkillRatings {
		ratings[k] = v
	}
	return model.FeedbackRecord{
		ID:             uuid.New(),
		ScheduleID:     sched.ID,
		CandidateID:    sched.CandidateID,
		Stage:          sched.Stage,
		SkillRatings:   ratings,
		OverallRating:  in.OverallRating,
		CompositeScore: composite,
		Recommendation: in.Recommendation,
		Strengths:      strings.TrimSpace(in.Strengths),
		Concerns:       strings.TrimSpace(in.Concerns),
		Notes:          strings.TrimSpace(in.Notes),
		SubmittedBy:    strings.TrimSpace(in.SubmittedBy),
		SubmittedAt:    uc.now(),
	}, nil
}

// applyScore copies the latest composite onto the candidate.
func (uc *PipelineUsecase) applyScore(tx *store.Tx, rec model.FeedbackRecord) error {
	c, err := tx.Candidate(rec.CandidateID)
	if err != nil {
		return err
	}
	score := math.Round(rec.CompositeScore*CandidateScoreScale*100) / 100
	c.Score = &score
	c.UpdatedAt = rec.SubmittedAt
	tx.PutCandidate(c)
	return nil
}

func validateFeedback(in FeedbackInput) error {
	if in.OverallRating < model.MinRating || in.OverallRating > model.MaxRating {
		return apperror.Validation("overall rating %d is outside %d..%d", in.OverallRating, model.MinRating, model.MaxRating)
	}
	if !in.Recommendation.IsValid() {
		return apperror.Validation("unknown recommendation %q", in.Recommendation)
	}
	if strings.TrimSpace(in.SubmittedBy) == "" {
		return apperror.Validation("submitted by is required")
	}
	return nil
}
