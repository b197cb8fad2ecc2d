package usecase

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/fadilmartias/hiring-pipeline/internal/apperror"
	"github.com/fadilmartias/hiring-pipeline/internal/model"
	"github.com/fadilmartias/hiring-pipeline/internal/store"
	"github.com/google/uuid"
)

func (uc *PipelineUsecase) CreateClient(ctx context.Context, name string) (model.Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Client{}, apperror.Validation("client name is required")
	}
	client := model.Client{ID: uuid.New(), Name: name, CreatedAt: uc.now()}
	err := uc.store.Update(ctx, func(tx *store.Tx) error {
		tx.PutClient(client)
		return nil
	})
	if err != nil {
		return model.Client{}, err
	}
	return client, nil
}

func (uc *PipelineUsecase) CreateRole(ctx context.Context, clientID uuid.UUID, title string, totalVacancies int) (model.Role, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Role{}, apperror.Validation("role title is required")
	}
	if totalVacancies <= 0 {
		return model.Role{}, apperror.Validation("total vacancies must be positive")
	}
	var out model.Role
	err := uc.store.Update(ctx, func(tx *store.Tx) error {
		if _, err := tx.Client(clientID); err != nil {
			return err
		}
		out = model.Role{ID: uuid.New(), ClientID: clientID, Title: title, TotalVacancies: totalVacancies, CreatedAt: uc.now()}
		tx.PutRole(out)
		return nil
	})
	return out, err
}

type RequirementInput struct {
	RoleID     uuid.UUID
	Title      string
	Priority   model.Priority
	Vacancies  int
	DueDate    time.Time
	JDApproved bool
}

// CreateRequirement opens a hiring need under a role. The vacancies of all
// open requirements of a role may not exceed the role's total.
func (uc *PipelineUsecase) CreateRequirement(ctx context.Context, in RequirementInput) (model.Requirement, error) {
	if in.Vacancies <= 0 {
		return model.Requirement{}, apperror.Validation("vacancies must be positive")
	}
	if in.DueDate.IsZero() {
		return model.Requirement{}, apperror.Validation("due date is required")
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	if !in.Priority.IsValid() {
		return model.Requirement{}, apperror.Validation("unknown priority %q", in.Priority)
	}

	var out model.Requirement
	err := uc.store.Update(ctx, func(tx *store.Tx) error {
		role, err := tx.Role(in.RoleID)
		if err != nil {
			return err
		}
		committed := 0
		for _, r := range tx.Requirements(func(r *model.Requirement) bool { return r.RoleID == role.ID }) {
			if r.Status == model.RequirementClosed {
				committed += r.PipelineCounts.Hired
			} else {
				committed += r.Vacancies
			}
		}
		if committed+in.Vacancies > role.TotalVacancies {
			return apperror.Validation("role %s has %d of %d vacancies committed, cannot add %d",
				role.Title, committed, role.TotalVacancies, in.Vacancies)
		}
		title := strings.TrimSpace(in.Title)
		if title == "" {
			title = role.Title
		}
		now := uc.now()
		out = model.Requirement{
			ID:         uuid.New(),
			RoleID:     role.ID,
			Title:      title,
			Status:     model.RequirementOpen,
			Priority:   in.Priority,
			Vacancies:  in.Vacancies,
			JDApproved: in.JDApproved,
			DueDate:    in.DueDate.UTC(),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		tx.PutRequirement(out)
		return nil
	})
	return out, err
}

// ApproveRequirement marks the job description approved.
func (uc *PipelineUsecase) ApproveRequirement(ctx context.Context, requirementID uuid.UUID) (model.Requirement, error) {
	return uc.updateRequirement(ctx, requirementID, func(tx *store.Tx, req *model.Requirement) error {
		req.JDApproved = true
		return nil
	})
}

func (uc *PipelineUsecase) ExtendDeadline(ctx context.Context, requirementID uuid.UUID, due time.Time) (model.Requirement, error) {
	return uc.updateRequirement(ctx, requirementID, func(tx *store.Tx, req *model.Requirement) error {
		if !due.After(uc.now()) {
			return apperror.Validation("new due date must be in the future")
		}
		req.DueDate = due.UTC()
		return nil
	})
}

// SetRequirementStatus changes the lifecycle status. Closing releases the
// requirement from its TA's load.
func (uc *PipelineUsecase) SetRequirementStatus(ctx context.Context, requirementID uuid.UUID, status model.RequirementStatus) (model.Requirement, error) {
	if !status.IsValid() {
		return model.Requirement{}, apperror.Validation("unknown requirement status %q", status)
	}
	return uc.updateRequirement(ctx, requirementID, func(tx *store.Tx, req *model.Requirement) error {
		if req.Status == model.RequirementClosed && status != model.RequirementClosed {
			return apperror.Validation("closed requirements cannot be reopened")
		}
		req.Status = status
		if status == model.RequirementClosed && req.AssignedTA != nil {
			ta, err := tx.TA(*req.AssignedTA)
			if err != nil {
				return err
			}
			ta.Release(req.ID)
			tx.PutTA(ta)
			req.AssignedTA = nil
		}
		return nil
	})
}

func (uc *PipelineUsecase) updateRequirement(ctx context.Context, requirementID uuid.UUID, fn func(tx *store.Tx, req *model.Requirement) error) (model.Requirement, error) {
	var out model.Requirement
	err := uc.store.Update(ctx, func(tx *store.Tx) error {
		req, err := tx.Requirement(requirementID)
		if err != nil {
			return err
		}
		if err := fn(tx, &req); err != nil {
			return err
		}
		req.UpdatedAt = uc.now()
		tx.PutRequirement(req)
		out = req
		return nil
	})
	return out, err
}

type TAInput struct {
	Name            string
	Email           string
	MaxLoad         int
	EfficiencyScore int
}

func (uc *PipelineUsecase) CreateTA(ctx context.Context, in TAInput) (model.TA, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return model.TA{}, apperror.Validation("ta name is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return model.TA{}, apperror.Validation("ta email %q is invalid", in.Email)
	}
	if in.MaxLoad <= 0 {
		return model.TA{}, apperror.Validation("max load must be positive")
	}
	if in.EfficiencyScore < 0 || in.EfficiencyScore > 100 {
		return model.TA{}, apperror.Validation("efficiency score must be within 0..100")
	}
	now := uc.now()
	ta := model.TA{
		ID:              uuid.New(),
		Name:            in.Name,
		Email:           strings.TrimSpace(in.Email),
		Active:          true,
		MaxLoad:         in.MaxLoad,
		EfficiencyScore: in.EfficiencyScore,
		LastActivityAt:  now,
		CreatedAt:       now,
	}
	err := uc.store.Update(ctx, func(tx *store.Tx) error {
		tx.PutTA(ta)
		return nil
	})
	if err != nil {
		return model.TA{}, err
	}
	return ta, nil
}

// TAUpdate fields left nil are unchanged.
type TAUpdate struct {
	Active          *bool
	MaxLoad         *int
	EfficiencyScore *int
}

func (uc *PipelineUsecase) UpdateTA(ctx context.Context, taID uuid.UUID, in TAUpdate) (model.TA, error) {
	if in.MaxLoad != nil && *in.MaxLoad <= 0 {
		return model.TA{}, apperror.Validation("max load must be positive")
	}
	if in.EfficiencyScore != nil && (*in.EfficiencyScore < 0 || *in.EfficiencyScore > 100) {
		return model.TA{}, apperror.Validation("efficiency score must be within 0..100")
	}
	return uc.updateTA(ctx, taID, func(ta *model.TA) {
		if in.Active != nil {
			ta.Active = *in.Active
		}
		if in.MaxLoad != nil {
			ta.MaxLoad = *in.MaxLoad
		}
		if in.EfficiencyScore != nil {
			ta.EfficiencyScore = *in.EfficiencyScore
		}
	})
}

// RecordTAActivity stamps the TA as active now.
func (uc *PipelineUsecase) RecordTAActivity(ctx context.Context, taID uuid.UUID) (model.TA, error) {
	return uc.updateTA(ctx, taID, func(ta *model.TA) {
		ta.LastActivityAt = uc.now()
	})
}

func (uc *PipelineUsecase) updateTA(ctx context.Context, taID uuid.UUID, fn func(ta *model.TA)) (model.TA, error) {
	var out model.TA
	err := uc.store.Update(ctx, func(tx *store.Tx) error {
		ta, err := tx.TA(taID)
		if err != nil {
			return err
		}
		fn(&ta)
		tx.PutTA(ta)
		out = ta
		return nil
	})
	return out, err
}
