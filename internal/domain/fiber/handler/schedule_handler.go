package handler

import (
	"github.com/fadilmartias/hiring-pipeline/internal/dto"
	"github.com/fadilmartias/hiring-pipeline/internal/model"
	"github.com/fadilmartias/hiring-pipeline/internal/util"
	"github.com/gofiber/fiber/v2"
)

func (h *PipelineHandler) Schedule(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to schedule interview", err)
	}
	var body dto.ScheduleRequest
	if err := bind(c, &body); err != nil {
		return util.AppErrorResponse(c, "failed to schedule interview", err)
	}
	rec, err := h.uc.Schedule(c.UserContext(), id, model.Stage(body.Stage), body.Details())
	if err != nil {
		return util.AppErrorResponse(c, "failed to schedule interview", err)
	}
	return created(c, "Success schedule interview", rec)
}

func (h *PipelineHandler) ListSchedules(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to list interviews", err)
	}
	recs, err := h.uc.ListSchedules(id)
	if err != nil {
		return util.AppErrorResponse(c, "failed to list interviews", err)
	}
	return ok(c, "Success list interviews", recs)
}

func (h *PipelineHandler) ScheduleStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to get interview status", err)
	}
	stage := model.Stage(c.Params("stage"))
	status, err := h.uc.ScheduleStatus(id, stage)
	if err != nil {
		return util.AppErrorResponse(c, "failed to get interview status", err)
	}
	return ok(c, "Success get interview status", fiber.Map{"stage": stage, "status": status})
}

func (h *PipelineHandler) GetSchedule(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to get interview", err)
	}
	rec, err := h.uc.GetSchedule(id)
	if err != nil {
		return util.AppErrorResponse(c, "failed to get interview", err)
	}
	return ok(c, "Success get interview", rec)
}

func (h *PipelineHandler) StartInterview(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to start interview", err)
	}
	rec, err := h.uc.StartInterview(c.UserContext(), id)
	if err != nil {
		return util.AppErrorResponse(c, "failed to start interview", err)
	}
	return ok(c, "Success start interview", rec)
}

func (h *PipelineHandler) Reschedule(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to reschedule interview", err)
	}
	var body dto.ScheduleRequest
	if err := bind(c, &body); err != nil {
		return util.AppErrorResponse(c, "failed to reschedule interview", err)
	}
	rec, err := h.uc.Reschedule(c.UserContext(), id, body.Details())
	if err != nil {
		return util.AppErrorResponse(c, "failed to reschedule interview", err)
	}
	return ok(c, "Success reschedule interview", rec)
}

func (h *PipelineHandler) BookSlot(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to book slot", err)
	}
	var body dto.BookSlotRequest
	if err := bind(c, &body); err != nil {
		return util.AppErrorResponse(c, "failed to book slot", err)
	}
	if body.DateTime.IsZero() {
		return util.AppErrorResponse(c, "failed to book slot", util.NewFormError("invalid request", map[string]string{"date_time": "is required"}))
	}
	rec, err := h.uc.BookExternalSlot(c.UserContext(), id, body.DateTime, body.InterviewerID)
	if err != nil {
		return util.AppErrorResponse(c, "failed to book slot", err)
	}
	return ok(c, "Success book slot", rec)
}

func (h *PipelineHandler) Cancel(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to cancel interview", err)
	}
	var body dto.ActorRequest
	if err := bind(c, &body); err != nil {
		return util.AppErrorResponse(c, "failed to cancel interview", err)
	}
	rec, err := h.uc.Cancel(c.UserContext(), id, body.Reason)
	if err != nil {
		return util.AppErrorResponse(c, "failed to cancel interview", err)
	}
	return ok(c, "Success cancel interview", rec)
}

func (h *PipelineHandler) MarkCompleted(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to complete interview", err)
	}
	rec, err := h.uc.MarkCompleted(c.UserContext(), id)
	if err != nil {
		return util.AppErrorResponse(c, "failed to complete interview", err)
	}
	return ok(c, "Success complete interview", rec)
}

func (h *PipelineHandler) SubmitFeedback(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to submit feedback", err)
	}
	var body dto.FeedbackRequest
	if err := bind(c, &body); err != nil {
		return util.AppErrorResponse(c, "failed to submit feedback", err)
	}
	fb, err := h.uc.SubmitFeedback(c.UserContext(), id, body.ToInput())
	if err != nil {
		return util.AppErrorResponse(c, "failed to submit feedback", err)
	}
	return created(c, "Success submit feedback", fb)
}

func (h *PipelineHandler) AmendFeedback(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to amend feedback", err)
	}
	var body dto.FeedbackRequest
	if err := bind(c, &body); err != nil {
		return util.AppErrorResponse(c, "failed to amend feedback", err)
	}
	fb, err := h.uc.AmendFeedback(c.UserContext(), id, body.ToInput())
	if err != nil {
		return util.AppErrorResponse(c, "failed to amend feedback", err)
	}
	return created(c, "Success amend feedback", fb)
}
