package usecase

import (
	"context"

	"github.com/fadilmartias/hiring-pipeline/internal/apperror"
	"github.com/fadilmartias/hiring-pipeline/internal/model"
	"github.com/fadilmartias/hiring-pipeline/internal/service"
	"github.com/fadilmartias/hiring-pipeline/internal/store"
	"github.com/google/uuid"
)

// SummarizeCandidate asks the configured LLM for a digest of the current
// feedback. The answer is advisory and never stored.
func (uc *PipelineUsecase) SummarizeCandidate(ctx context.Context, candidateID uuid.UUID) (service.CandidateSummary, error) {
	if uc.summarizer == nil {
		return service.CandidateSummary{}, apperror.Validation("no summarizer configured")
	}

	var in service.SummaryInput
	err := uc.store.View(func(tx *store.Tx) error {
		c, err := tx.Candidate(candidateID)
		if err != nil {
			return err
		}
		in.CandidateName = c.Name
		in.AppliedRole = c.AppliedRole
		in.Feedback = tx.FeedbackWhere(func(f *model.FeedbackRecord) bool {
			return f.CandidateID == candidateID && f.Current()
		})
		return nil
	})
	if err != nil {
		return service.CandidateSummary{}, err
	}
	if len(in.Feedback) == 0 {
		return service.CandidateSummary{}, apperror.Validation("candidate has no feedback to summarize")
	}

	summary, err := uc.summarizer.Summarize(ctx, in)
	if err != nil {
		uc.logger.Error("summarize candidate", "candidate_id", candidateID, "error", err)
		return service.CandidateSummary{}, err
	}
	return summary, nil
}
