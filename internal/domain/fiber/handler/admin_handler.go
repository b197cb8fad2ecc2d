package handler

import (
	"github.com/fadilmartias/hiring-pipeline/internal/dto"
	"github.com/fadilmartias/hiring-pipeline/internal/model"
	"github.com/fadilmartias/hiring-pipeline/internal/usecase"
	"github.com/fadilmartias/hiring-pipeline/internal/util"
	"github.com/gofiber/fiber/v2"
)

func (h *PipelineHandler) CreateClient(c *fiber.Ctx) error {
	var body dto.ClientRequest
	if err := bind(c, &body); err != nil {
		return util.AppErrorResponse(c, "failed to create client", err)
	}
	client, err := h.uc.CreateClient(c.UserContext(), body.Name)
	if err != nil {
		return util.AppErrorResponse(c, "failed to create client", err)
	}
	return created(c, "Success create client", client)
}

func (h *PipelineHandler) ListClients(c *fiber.Ctx) error {
	return ok(c, "Success list clients", h.uc.ListClients())
}

func (h *PipelineHandler) CreateRole(c *fiber.Ctx) error {
	var body dto.RoleRequest
	if err := bind(c, &body); err != nil {
		return util.AppErrorResponse(c, "failed to create role", err)
	}
	errs := map[string]string{}
	clientID := dto.ParseID("client_id", body.ClientID, errs)
	if len(errs) > 0 {
		return util.AppErrorResponse(c, "failed to create role", util.NewFormError("invalid request", errs))
	}
	role, err := h.uc.CreateRole(c.UserContext(), clientID, body.Title, body.TotalVacancies)
	if err != nil {
		return util.AppErrorResponse(c, "failed to create role", err)
	}
	return created(c, "Success create role", role)
}

func (h *PipelineHandler) ListRoles(c *fiber.Ctx) error {
	errs := map[string]string{}
	clientID := dto.ParseOptionalID("client_id", c.Query("client_id"), errs)
	if len(errs) > 0 {
		return util.AppErrorResponse(c, "failed to list roles", util.NewFormError("invalid query", errs))
	}
	return ok(c, "Success list roles", h.uc.ListRoles(clientID))
}

func (h *PipelineHandler) CreateRequirement(c *fiber.Ctx) error {
	var body dto.RequirementRequest
	if err := bind(c, &body); err != nil {
		return util.AppErrorResponse(c, "failed to create requirement", err)
	}
	in, err := body.ToInput()
	if err != nil {
		return util.AppErrorResponse(c, "failed to create requirement", err)
	}
	req, err := h.uc.CreateRequirement(c.UserContext(), in)
	if err != nil {
		return util.AppErrorResponse(c, "failed to create requirement", err)
	}
	return created(c, "Success create requirement", req)
}

func (h *PipelineHandler) ListRequirements(c *fiber.Ctx) error {
	errs := map[string]string{}
	roleID := dto.ParseOptionalID("role_id", c.Query("role_id"), errs)
	if len(errs) > 0 {
		return util.AppErrorResponse(c, "failed to list requirements", util.NewFormError("invalid query", errs))
	}
	return ok(c, "Success list requirements", h.uc.ListRequirements(roleID))
}

func (h *PipelineHandler) GetRequirement(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to get requirement", err)
	}
	req, err := h.uc.GetRequirement(id)
	if err != nil {
		return util.AppErrorResponse(c, "failed to get requirement", err)
	}
	return ok(c, "Success get requirement", req)
}

func (h *PipelineHandler) RequirementAlert(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to get alert", err)
	}
	alert, err := h.uc.GetRequirementAlert(id)
	if err != nil {
		return util.AppErrorResponse(c, "failed to get alert", err)
	}
	return ok(c, "Success get alert", fiber.Map{"alert": alert})
}

func (h *PipelineHandler) ListAlerts(c *fiber.Ctx) error {
	return ok(c, "Success list alerts", h.uc.ListAlerts())
}

func (h *PipelineHandler) ApproveRequirement(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to approve requirement", err)
	}
	req, err := h.uc.ApproveRequirement(c.UserContext(), id)
	if err != nil {
		return util.AppErrorResponse(c, "failed to approve requirement", err)
	}
	return ok(c, "Success approve requirement", req)
}

func (h *PipelineHandler) ExtendDeadline(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to extend deadline", err)
	}
	var body dto.DeadlineRequest
	if err := bind(c, &body); err != nil {
		return util.AppErrorResponse(c, "failed to extend deadline", err)
	}
	req, err := h.uc.ExtendDeadline(c.UserContext(), id, body.DueDate)
	if err != nil {
		return util.AppErrorResponse(c, "failed to extend deadline", err)
	}
	return ok(c, "Success extend deadline", req)
}

func (h *PipelineHandler) SetRequirementStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to update requirement status", err)
	}
	var body dto.RequirementStatusRequest
	if err := bind(c, &body); err != nil {
		return util.AppErrorResponse(c, "failed to update requirement status", err)
	}
	req, err := h.uc.SetRequirementStatus(c.UserContext(), id, model.RequirementStatus(body.Status))
	if err != nil {
		return util.AppErrorResponse(c, "failed to update requirement status", err)
	}
	return ok(c, "Success update requirement status", req)
}

func (h *PipelineHandler) AssignTA(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to assign ta", err)
	}
	var body dto.AssignRequest
	if err := bind(c, &body); err != nil {
		return util.AppErrorResponse(c, "failed to assign ta", err)
	}
	errs := map[string]string{}
	taID := dto.ParseID("ta_id", body.TAID, errs)
	if len(errs) > 0 {
		return util.AppErrorResponse(c, "failed to assign ta", util.NewFormError("invalid request", errs))
	}
	req, err := h.uc.AssignTA(c.UserContext(), usecase.AssignInput{
		RequirementID: id,
		TAID:          taID,
		Override:      body.Override,
		Justification: body.Justification,
		Actor:         body.Actor,
	})
	if err != nil {
		return util.AppErrorResponse(c, "failed to assign ta", err)
	}
	return ok(c, "Success assign ta", req)
}

func (h *PipelineHandler) CreateTA(c *fiber.Ctx) error {
	var body dto.TARequest
	if err := bind(c, &body); err != nil {
		return util.AppErrorResponse(c, "failed to create ta", err)
	}
	ta, err := h.uc.CreateTA(c.UserContext(), body.ToInput())
	if err != nil {
		return util.AppErrorResponse(c, "failed to create ta", err)
	}
	return created(c, "Success create ta", ta)
}

func (h *PipelineHandler) UpdateTA(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to update ta", err)
	}
	var body dto.TAUpdateRequest
	if err := bind(c, &body); err != nil {
		return util.AppErrorResponse(c, "failed to update ta", err)
	}
	ta, err := h.uc.UpdateTA(c.UserContext(), id, body.ToInput())
	if err != nil {
		return util.AppErrorResponse(c, "failed to update ta", err)
	}
	return ok(c, "Success update ta", ta)
}

func (h *PipelineHandler) RecordTAActivity(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to record activity", err)
	}
	ta, err := h.uc.RecordTAActivity(c.UserContext(), id)
	if err != nil {
		return util.AppErrorResponse(c, "failed to record activity", err)
	}
	return ok(c, "Success record activity", ta)
}

func (h *PipelineHandler) ListWorkloads(c *fiber.Ctx) error {
	return ok(c, "Success list workloads", h.uc.ListWorkloads())
}

func (h *PipelineHandler) TAWorkload(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to get workload", err)
	}
	summary, err := h.uc.GetTAWorkload(id)
	if err != nil {
		return util.AppErrorResponse(c, "failed to get workload", err)
	}
	return ok(c, "Success get workload", summary)
}

func (h *PipelineHandler) CanAssign(c *fiber.Ctx) error {
	taID, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to check assignment", err)
	}
	reqID, err := paramID(c, "requirementId")
	if err != nil {
		return util.AppErrorResponse(c, "failed to check assignment", err)
	}
	allowed, err := h.uc.CanAssign(taID, reqID)
	if err != nil {
		return util.AppErrorResponse(c, "failed to check assignment", err)
	}
	return ok(c, "Success check assignment", fiber.Map{"can_assign": allowed})
}

func (h *PipelineHandler) AuditLog(c *fiber.Ctx) error {
	errs := map[string]string{}
	filter := usecase.AuditFilter{
		CandidateID:   dto.ParseOptionalID("candidate_id", c.Query("candidate_id"), errs),
		RequirementID: dto.ParseOptionalID("requirement_id", c.Query("requirement_id"), errs),
		Action:        model.AuditAction(c.Query("action")),
	}
	if len(errs) > 0 {
		return util.AppErrorResponse(c, "failed to read audit log", util.NewFormError("invalid query", errs))
	}
	return ok(c, "Success read audit log", h.uc.GetAuditLog(filter))
}

func (h *PipelineHandler) Stages(c *fiber.Ctx) error {
	return ok(c, "Success list stages", h.uc.Stages())
}
