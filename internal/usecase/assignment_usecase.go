package usecase

import (
	"context"

	"github.com/fadilmartias/hiring-pipeline/internal/apperror"
	"github.com/fadilmartias/hiring-pipeline/internal/model"
	"github.com/fadilmartias/hiring-pipeline/internal/store"
	"github.com/fadilmartias/hiring-pipeline/internal/workload"
	"github.com/google/uuid"
)

type AssignInput struct {
	RequirementID uuid.UUID
	TAID          uuid.UUID
	Override      bool
	Justification string
	Actor         string
}

// AssignTA moves a requirement to a TA. The losing TA, the gaining TA and
// the requirement pointer change in one transaction. Without Override an
// assignment the balancer refuses fails with a capacity error.
func (uc *PipelineUsecase) AssignTA(ctx context.Context, in AssignInput) (model.Requirement, error) {
	var (
		out        model.Requirement
		overridden bool
		previous   *uuid.UUID
	)
	err := uc.store.Update(ctx, func(tx *store.Tx) error {
		req, err := tx.Requirement(in.RequirementID)
		if err != nil {
			return err
		}
		if req.Status == model.RequirementClosed {
			return apperror.Validation("requirement %s is closed", req.ID)
		}
		gaining, err := tx.TA(in.TAID)
		if err != nil {
			return err
		}
		if req.AssignedTA != nil && *req.AssignedTA == gaining.ID {
			out = req
			return nil
		}
		if !workload.CanAssign(gaining, req.ID) {
			if !in.Override {
				return apperror.CapacityExceeded("ta %s cannot take requirement %s", gaining.Name, req.ID).
					WithDetails(workload.Summarize(gaining))
			}
			overridden = true
		}

		previous = req.AssignedTA
		if previous != nil {
			losing, err := tx.TA(*previous)
			if err != nil {
				return err
			}
			losing.Release(req.ID)
			tx.PutTA(losing)
		}
		gaining.Take(req.ID)
		gaining.LastActivityAt = uc.now()
		tx.PutTA(gaining)

		req.AssignedTA = uuidPtr(gaining.ID)
		req.UpdatedAt = uc.now()
		tx.PutRequirement(req)

		for _, c := range tx.CandidatesFor(req.ID) {
			if c.Archived() {
				continue
			}
			if c.AssignedTA == nil || (previous != nil && *c.AssignedTA == *previous) {
				c.AssignedTA = uuidPtr(gaining.ID)
				tx.PutCandidate(c)
			}
		}
		out = req
		return nil
	})
	if err != nil {
		return model.Requirement{}, err
	}

	if overridden {
		uc.audit(ctx, model.AuditEntry{
			Action:        model.AuditAssignOverride,
			Actor:         in.Actor,
			RequirementID: uuidPtr(in.RequirementID),
			Justification: in.Justification,
		}, nil)
	}
	uc.logger.Info("ta assigned", "requirement_id", out.ID, "ta_id", in.TAID, "previous", previous, "override", overridden)
	return out, nil
}

// CanAssign asks the balancer without changing anything.
func (uc *PipelineUsecase) CanAssign(taID, requirementID uuid.UUID) (bool, error) {
	var ok bool
	err := uc.store.View(func(tx *store.Tx) error {
		ta, err := tx.TA(taID)
		if err != nil {
			return err
		}
		if _, err := tx.Requirement(requirementID); err != nil {
			return err
		}
		ok = workload.CanAssign(ta, requirementID)
		return nil
	})
	return ok, err
}

func (uc *PipelineUsecase) GetTAWorkload(taID uuid.UUID) (workload.Summary, error) {
	var out workload.Summary
	err := uc.store.View(func(tx *store.Tx) error {
		ta, err := tx.TA(taID)
		if err != nil {
			return err
		}
		out = workload.Summarize(ta)
		return nil
	})
	return out, err
}

// ListWorkloads summarizes every TA ordered by name.
func (uc *PipelineUsecase) ListWorkloads() []workload.Summary {
	var out []workload.Summary
	uc.store.Read(func(tx *store.Tx) {
		for _, ta := range tx.TAs() {
			out = append(out, workload.Summarize(ta))
		}
	})
	return out
}
