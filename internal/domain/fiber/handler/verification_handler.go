package handler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fadilmartias/hiring-pipeline/internal/dto"
	"github.com/fadilmartias/hiring-pipeline/internal/model"
	"github.com/fadilmartias/hiring-pipeline/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (h *PipelineHandler) StartVerification(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to start verification", err)
	}
	var body dto.StartVerificationRequest
	if err := bind(c, &body); err != nil {
		return util.AppErrorResponse(c, "failed to start verification", err)
	}
	session, err := h.uc.StartVerification(c.UserContext(), id, body.Partner, body.SLADate)
	if err != nil {
		return util.AppErrorResponse(c, "failed to start verification", err)
	}
	return created(c, "Success start verification", session)
}

func (h *PipelineHandler) VerificationStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to get verification status", err)
	}
	status, err := h.uc.GetVerificationStatus(id)
	if err != nil {
		return util.AppErrorResponse(c, "failed to get verification status", err)
	}
	return ok(c, "Success get verification status", status)
}

// UploadDocument stores a multipart "file" under the upload directory and
// attaches it as document_type to the candidate's active session.
func (h *PipelineHandler) UploadDocument(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to upload document", err)
	}
	docType := model.DocumentType(strings.TrimSpace(c.FormValue("document_type")))
	if !docType.IsValid() {
		return util.AppErrorResponse(c, "failed to upload document",
			util.NewFormError("invalid request", map[string]string{"document_type": "unknown document type"}))
	}

	savePath, pages, err := h.processFile(c, "file", filepath.Join(h.uploadDir, id.String()), docType)
	if err != nil {
		return util.AppErrorResponse(c, "failed to upload document", err)
	}

	doc, err := h.uc.UploadDocument(c.UserContext(), id, docType, savePath, pages)
	if err != nil {
		if rmErr := os.Remove(savePath); rmErr != nil {
			h.logger.Warn("remove orphaned upload", "path", savePath, "error", rmErr)
		}
		return util.AppErrorResponse(c, "failed to upload document", err)
	}
	return created(c, "Success upload document", doc)
}

func (h *PipelineHandler) processFile(c *fiber.Ctx, fieldName, uploadDir string, docType model.DocumentType) (string, int, error) {
	file, err := c.FormFile(fieldName)
	if err != nil {
		return "", 0, util.NewFormError(fmt.Sprintf("%s file is required", fieldName), map[string]string{fieldName: "is required"})
	}

	if h.maxUploadBytes > 0 && file.Size > h.maxUploadBytes {
		return "", 0, util.NewFormError(
			fmt.Sprintf("%s file size is too large (max %d bytes)", fieldName, h.maxUploadBytes),
			map[string]string{fieldName: "too large"})
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !util.DocumentExtensions[ext] {
		return "", 0, util.NewFormError(fmt.Sprintf("unsupported %s file type", fieldName), map[string]string{fieldName: "unsupported type " + ext})
	}

	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create upload dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s-%s", docType, uuid.NewString()[:8], util.SafeFilename(file.Filename))
	savePath := filepath.Join(uploadDir, name)
	if err := c.SaveFile(file, savePath); err != nil {
		return "", 0, fmt.Errorf("cannot save %s file: %w", fieldName, err)
	}

	pages, err := util.PageCount(savePath)
	if err != nil {
		_ = os.Remove(savePath)
		return "", 0, util.NewFormError(fmt.Sprintf("unreadable %s file", fieldName), map[string]string{fieldName: err.Error()})
	}
	h.logger.Info("document stored", "path", savePath, "pages", pages, "bytes", file.Size)
	return savePath, pages, nil
}

func (h *PipelineHandler) ReviewDocument(c *fiber.Ctx) error {
	sessionID, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to review document", err)
	}
	docID, err := paramID(c, "docId")
	if err != nil {
		return util.AppErrorResponse(c, "failed to review document", err)
	}
	var body dto.ReviewDocumentRequest
	if err := bind(c, &body); err != nil {
		return util.AppErrorResponse(c, "failed to review document", err)
	}
	doc, err := h.uc.ReviewDocument(c.UserContext(), sessionID, docID, model.DocumentStatus(body.Status))
	if err != nil {
		return util.AppErrorResponse(c, "failed to review document", err)
	}
	return ok(c, "Success review document", doc)
}

func (h *PipelineHandler) CompleteStep(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to complete step", err)
	}
	session, err := h.uc.CompleteStep(c.UserContext(), id)
	if err != nil {
		return util.AppErrorResponse(c, "failed to complete step", err)
	}
	return ok(c, "Success complete step", session)
}

func (h *PipelineHandler) HoldVerification(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to hold verification", err)
	}
	var body dto.HoldRequest
	if err := bind(c, &body); err != nil {
		return util.AppErrorResponse(c, "failed to hold verification", err)
	}
	session, err := h.uc.HoldVerification(c.UserContext(), id, body.Note)
	if err != nil {
		return util.AppErrorResponse(c, "failed to hold verification", err)
	}
	return ok(c, "Success hold verification", session)
}

func (h *PipelineHandler) ResumeVerification(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to resume verification", err)
	}
	session, err := h.uc.ResumeVerification(c.UserContext(), id)
	if err != nil {
		return util.AppErrorResponse(c, "failed to resume verification", err)
	}
	return ok(c, "Success resume verification", session)
}

func (h *PipelineHandler) FailVerification(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return util.AppErrorResponse(c, "failed to fail verification", err)
	}
	var body dto.ActorRequest
	if err := bind(c, &body); err != nil {
		return util.AppErrorResponse(c, "failed to fail verification", err)
	}
	session, err := h.uc.FailVerification(c.UserContext(), id, body.Reason, body.Actor)
	if err != nil {
		return util.AppErrorResponse(c, "failed to fail verification", err)
	}
	return ok(c, "Success fail verification", session)
}
