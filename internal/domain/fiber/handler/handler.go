package handler

import (
	"log/slog"
	"time"

	"github.com/fadilmartias/hiring-pipeline/internal/config"
	"github.com/fadilmartias/hiring-pipeline/internal/middleware"
	"github.com/fadilmartias/hiring-pipeline/internal/usecase"
	"github.com/fadilmartias/hiring-pipeline/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PipelineHandler struct {
	uc             *usecase.PipelineUsecase
	uploadDir      string
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewPipelineHandler(uc *usecase.PipelineUsecase, cfg *config.PipelineConfig, logger *slog.Logger) *PipelineHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PipelineHandler{
		uc:             uc,
		uploadDir:      cfg.UploadDir,
		maxUploadBytes: cfg.MaxUploadBytes,
		logger:         logger.With("component", "http"),
	}
}

func (h *PipelineHandler) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/stages", h.Stages)
	api.Get("/alerts", h.ListAlerts)
	api.Get("/audit", h.AuditLog)

	clients := api.Group("/clients")
	clients.Post("/", h.CreateClient)
	clients.Get("/", h.ListClients)

	roles := api.Group("/roles")
	roles.Post("/", h.CreateRole)
	roles.Get("/", h.ListRoles)

	reqs := api.Group("/requirements")
	reqs.Post("/", h.CreateRequirement)
	reqs.Get("/", h.ListRequirements)
	reqs.Get("/:id", h.GetRequirement)
	reqs.Get("/:id/alert", h.RequirementAlert)
	reqs.Post("/:id/approve", h.ApproveRequirement)
	reqs.Patch("/:id/deadline", h.ExtendDeadline)
	reqs.Patch("/:id/status", h.SetRequirementStatus)
	reqs.Post("/:id/assign", h.AssignTA)

	tas := api.Group("/tas")
	tas.Post("/", h.CreateTA)
	tas.Get("/", h.ListWorkloads)
	tas.Get("/:id/workload", h.TAWorkload)
	tas.Get("/:id/can-assign/:requirementId", h.CanAssign)
	tas.Patch("/:id", h.UpdateTA)
	tas.Post("/:id/activity", h.RecordTAActivity)

	cands := api.Group("/candidates")
	cands.Post("/", h.SubmitApplication)
	cands.Post("/source", h.SourceCandidate)
	cands.Get("/", h.ListCandidates)
	cands.Get("/:id", h.GetCandidate)
	cands.Get("/:id/history", h.StageHistory)
	cands.Get("/:id/feedback", h.FeedbackHistory)
	cands.Post("/:id/advance", h.Advance)
	cands.Post("/:id/reject", h.Reject)
	cands.Post("/:id/withdraw", h.Withdraw)
	cands.Post("/:id/reopen", h.Reopen)
	cands.Get("/:id/summary", middleware.RateLimiter(5, 10*time.Second), h.Summarize)
	cands.Get("/:id/schedules", h.ListSchedules)
	cands.Post("/:id/schedules", h.Schedule)
	cands.Get("/:id/schedules/:stage/status", h.ScheduleStatus)
	cands.Get("/:id/verification", h.VerificationStatus)
	cands.Post("/:id/verification", h.StartVerification)
	cands.Post("/:id/documents", middleware.RateLimiter(10, 10*time.Second), h.UploadDocument)

	scheds := api.Group("/schedules")
	scheds.Get("/:id", h.GetSchedule)
	scheds.Post("/:id/start", h.StartInterview)
	scheds.Post("/:id/reschedule", h.Reschedule)
	scheds.Post("/:id/book", h.BookSlot)
	scheds.Post("/:id/cancel", h.Cancel)
	scheds.Post("/:id/complete", h.MarkCompleted)
	scheds.Post("/:id/feedback", h.SubmitFeedback)

	api.Post("/feedback/:id/amend", h.AmendFeedback)

	verifs := api.Group("/verifications")
	verifs.Post("/:id/steps/complete", h.CompleteStep)
	verifs.Post("/:id/hold", h.HoldVerification)
	verifs.Post("/:id/resume", h.ResumeVerification)
	verifs.Post("/:id/fail", h.FailVerification)
	verifs.Post("/:id/documents/:docId/review", h.ReviewDocument)
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, util.NewFormError("invalid path parameter", map[string]string{name: "must be a valid uuid"})
	}
	return id, nil
}

func bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return util.NewFormError("invalid request body", map[string]string{"body": err.Error()})
	}
	return nil
}

func ok(c *fiber.Ctx, message string, data any) error {
	return util.SuccessResponse(c, util.SuccessResponseFormat{Message: message, Data: data})
}

func created(c *fiber.Ctx, message string, data any) error {
	return util.SuccessResponse(c, util.SuccessResponseFormat{Code: fiber.StatusCreated, Message: message, Data: data})
}
