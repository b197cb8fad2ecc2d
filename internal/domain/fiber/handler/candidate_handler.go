package handler

import (
	"context"
	"errors"

	"github.com/fadilmartias/hiring-pipeline/internal/apperror"
	"github.com/fadilmartias/hiring-pipeline/internal/dto"
	"github.com/fadilmartias/hiring-pipeline/internal/model"
	"github.com/fadilmartias/hiring-pipeline/internal/response"
	"github.com/fadilmartias/hiring-pipeline/internal/usecase"
	"github.com/fadilmartias/hiring-pipeline/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (h *PipelineHandler) SubmitApplication(c *fiber.Ctx) error {
	return h.createCandidate(c, h.uc.SubmitApplication, "Success submit application")
}

func (h *PipelineHandler) SourceCandidate(c *fiber.Ctx) error {
	return h.createCandidate(c, h.uc.SourceCandidate, "Success source candidate")
}

func (h *PipelineHandler) createCandidate(c *fiber.Ctx, create func(ctx context.Context, in usecase.CandidateInput) (model.Candidate, error), message string) error {
	var body dto.CandidateRequest
	if err := bind(c, &body); err != nil {
		return util.AppErrorResponse(c, "failed to create candidate", err)
	}
	in, err := body.ToInput()
	if err != nil {
		return util.AppErrorResponse(c, "failed to create candidate", err)
	}
	cand, err := create(c.UserContext(), in)
	if err != nil {
		return util.AppErrorResponse(c, "failed to create candidate", err)
	}
	return created(c, message, cand)
}

func (h *PipelineHandler) ListCandidates(c *fiber.Ctx) error {
	errs := map[string]string{}
	filter := usecase.CandidateFilter{
		RequirementID:   dto.ParseOptionalID("requirement_id", c.Query("requirement_id"), errs),
		Stage:           model.Stage(c.Query("stage")),
		IncludeArchived: c.QueryBool("include_archived", false),
		Page:            c.QueryInt("page", 1),
		PageSize:        c.QueryInt("page_size", 0),
	}
	if len(errs) > 0 {
		return util.AppErrorResponse(c, "failed to list candidates", util.NewFormError("invalid query", errs))
	}
	page, err := h.uc.ListCandidates(filter)
	if err != nil {
		return util.AppErrorResponse(c, "failed to list candidates", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success list candidates",
		Data:       page.Items,
		Pagination: response.NewPagination(page.Page, page.PageSize, page.Total),
	})
}

// GetCandidate returns the candidate with its interviews, feedback and
// verification status.
func (h *PipelineHandler) GetCandidate(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to get candidate", err)
	}
	cand, err := h.uc.GetCandidate(id)
	if err != nil {
		return util.AppErrorResponse(c, "failed to get candidate", err)
	}
	detail := dto.CandidateDetail{Candidate: cand, Stages: h.uc.Stages()}
	if detail.Schedules, err = h.uc.ListSchedules(id); err != nil {
		return util.AppErrorResponse(c, "failed to get candidate", err)
	}
	if detail.Feedback, err = h.uc.GetFeedbackHistory(id); err != nil {
		return util.AppErrorResponse(c, "failed to get candidate", err)
	}
	status, err := h.uc.GetVerificationStatus(id)
	switch {
	case err == nil:
		detail.Verification = &status
	case !errors.Is(err, apperror.ErrNotFound):
		return util.AppErrorResponse(c, "failed to get candidate", err)
	}
	return ok(c, "Success get candidate", detail)
}

func (h *PipelineHandler) StageHistory(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to get stage history", err)
	}
	history, err := h.uc.GetStageHistory(id)
	if err != nil {
		return util.AppErrorResponse(c, "failed to get stage history", err)
	}
	return ok(c, "Success get stage history", history)
}

func (h *PipelineHandler) FeedbackHistory(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to get feedback", err)
	}
	history, err := h.uc.GetFeedbackHistory(id)
	if err != nil {
		return util.AppErrorResponse(c, "failed to get feedback", err)
	}
	return ok(c, "Success get feedback", history)
}

func (h *PipelineHandler) Advance(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to advance candidate", err)
	}
	cand, err := h.uc.Advance(c.UserContext(), id)
	if err != nil {
		return util.AppErrorResponse(c, "failed to advance candidate", err)
	}
	return ok(c, "Success advance candidate", cand)
}

func (h *PipelineHandler) Reject(c *fiber.Ctx) error {
	return h.archive(c, h.uc.Reject, "reject")
}

func (h *PipelineHandler) Withdraw(c *fiber.Ctx) error {
	return h.archive(c, h.uc.Withdraw, "withdraw")
}

func (h *PipelineHandler) archive(c *fiber.Ctx, fn func(ctx context.Context, id uuid.UUID, reason, actor string) (model.Candidate, error), verb string) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to "+verb+" candidate", err)
	}
	var body dto.ActorRequest
	if err := bind(c, &body); err != nil {
		return util.AppErrorResponse(c, "failed to "+verb+" candidate", err)
	}
	cand, err := fn(c.UserContext(), id, body.Reason, body.Actor)
	if err != nil {
		return util.AppErrorResponse(c, "failed to "+verb+" candidate", err)
	}
	return ok(c, "Success "+verb+" candidate", cand)
}

func (h *PipelineHandler) Reopen(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to reopen candidate", err)
	}
	var body dto.ReopenRequest
	if err := bind(c, &body); err != nil {
		return util.AppErrorResponse(c, "failed to reopen candidate", err)
	}
	cand, err := h.uc.Reopen(c.UserContext(), id, model.Stage(body.Stage), body.Justification, body.Actor)
	if err != nil {
		return util.AppErrorResponse(c, "failed to reopen candidate", err)
	}
	return ok(c, "Success reopen candidate", cand)
}

func (h *PipelineHandler) Summarize(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to summarize candidate", err)
	}
	summary, err := h.uc.SummarizeCandidate(c.UserContext(), id)
	if err != nil {
		return util.AppErrorResponse(c, "failed to summarize candidate", err)
	}
	return ok(c, "Success summarize candidate", summary)
}
