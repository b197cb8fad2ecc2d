package usecase

import (
	"sort"
	"time"

	"github.com/fadilmartias/hiring-pipeline/internal/alert"
	"github.com/fadilmartias/hiring-pipeline/internal/apperror"
	"github.com/fadilmartias/hiring-pipeline/internal/model"
	"github.com/fadilmartias/hiring-pipeline/internal/store"
	"github.com/google/uuid"
)

func (uc *PipelineUsecase) GetCandidate(id uuid.UUID) (model.Candidate, error) {
	var out model.Candidate
	err := uc.store.View(func(tx *store.Tx) error {
		var err error
		out, err = tx.Candidate(id)
		return err
	})
	return out, err
}

func (uc *PipelineUsecase) GetStageHistory(id uuid.UUID) ([]model.StageEntry, error) {
	c, err := uc.GetCandidate(id)
	if err != nil {
		return nil, err
	}
	return c.StageHistory, nil
}

type CandidateFilter struct {
	RequirementID   *uuid.UUID
	Stage           model.Stage
	IncludeArchived bool
	Page            int
	PageSize        int
}

// Page is one slice of a listing plus the total match count.
type Page[T any] struct {
	Items    []T
	Total    int
	Page     int
	PageSize int
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func (uc *PipelineUsecase) ListCandidates(f CandidateFilter) (Page[model.Candidate], error) {
	if f.Stage != "" && !f.Stage.IsValid() {
		return Page[model.Candidate]{}, apperror.Validation("unknown stage %q", f.Stage)
	}
	var matched []model.Candidate
	err := uc.store.View(func(tx *store.Tx) error {
		if f.RequirementID != nil {
			if _, err := tx.Requirement(*f.RequirementID); err != nil {
				return err
			}
		}
		matched = tx.Candidates(func(c *model.Candidate) bool {
			if f.RequirementID != nil && c.RequirementID != *f.RequirementID {
				return false
			}
			if f.Stage != "" && c.Stage != f.Stage {
				return false
			}
			return f.IncludeArchived || !c.Archived()
		})
		return nil
	})
	if err != nil {
		return Page[model.Candidate]{}, err
	}
	return paginate(matched, f.Page, f.PageSize), nil
}

func paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	if page <= 0 {
		page = 1
	}
	out := Page[T]{Total: len(items), Page: page, PageSize: size, Items: []T{}}
	start := (page - 1) * size
	if start >= len(items) {
		return out
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	out.Items = items[start:end]
	return out
}

// GetRequirementAlert returns the single active alert of a requirement, or
// nil when nothing is due.
func (uc *PipelineUsecase) GetRequirementAlert(requirementID uuid.UUID) (*model.AlertRecord, error) {
	now := uc.now()
	revision := uc.store.Revision(requirementID)
	if cached, hit := uc.alerts.Get(requirementID, revision, now); hit {
		return cached, nil
	}

	var result *model.AlertRecord
	err := uc.store.View(func(tx *store.Tx) error {
		req, err := tx.Requirement(requirementID)
		if err != nil {
			return err
		}
		result = uc.evaluate(tx, req, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.alerts.Put(requirementID, revision, now, result)
	return result, nil
}

// ListAlerts evaluates every requirement and returns the active alerts,
// highest priority first.
func (uc *PipelineUsecase) ListAlerts() []model.AlertRecord {
	now := uc.now()
	var out []model.AlertRecord
	uc.store.Read(func(tx *store.Tx) {
		for _, req := range tx.Requirements(nil) {
			if a := uc.evaluate(tx, req, now); a != nil {
				out = append(out, *a)
			}
		}
	})
	rank := map[model.Priority]int{model.PriorityHigh: 0, model.PriorityMedium: 1, model.PriorityLow: 2}
	sort.SliceStable(out, func(i, j int) bool { return rank[out[i].Priority] < rank[out[j].Priority] })
	return out
}

func (uc *PipelineUsecase) evaluate(tx *store.Tx, req model.Requirement, now time.Time) *model.AlertRecord {
	in := alert.Input{
		Requirement: req,
		Candidates:  tx.CandidatesFor(req.ID),
		Now:         now,
	}
	if role, err := tx.Role(req.RoleID); err == nil {
		in.Role = &role
	}
	if req.AssignedTA != nil {
		if ta, err := tx.TA(*req.AssignedTA); err == nil {
			in.TA = &ta
		}
	}
	a, ok := alert.Evaluate(in, uc.policy)
	if !ok {
		return nil
	}
	return &a
}

type AuditFilter struct {
	CandidateID   *uuid.UUID
	RequirementID *uuid.UUID
	Action        model.AuditAction
}

func (uc *PipelineUsecase) GetAuditLog(f AuditFilter) []model.AuditEntry {
	return uc.store.Audit(func(e model.AuditEntry) bool {
		if f.CandidateID != nil && (e.CandidateID == nil || *e.CandidateID != *f.CandidateID) {
			return false
		}
		if f.RequirementID != nil && (e.RequirementID == nil || *e.RequirementID != *f.RequirementID) {
			return false
		}
		return f.Action == "" || e.Action == f.Action
	})
}

func (uc *PipelineUsecase) ListClients() []model.Client {
	var out []model.Client
	uc.store.Read(func(tx *store.Tx) {
		out = tx.Clients()
	})
	return out
}

func (uc *PipelineUsecase) ListRoles(clientID *uuid.UUID) []model.Role {
	var out []model.Role
	uc.store.Read(func(tx *store.Tx) {
		out = tx.Roles(clientID)
	})
	return out
}

func (uc *PipelineUsecase) GetRequirement(id uuid.UUID) (model.Requirement, error) {
	var out model.Requirement
	err := uc.store.View(func(tx *store.Tx) error {
		var err error
		out, err = tx.Requirement(id)
		return err
	})
	return out, err
}

// ListRequirements lists requirements, optionally of one role.
func (uc *PipelineUsecase) ListRequirements(roleID *uuid.UUID) []model.Requirement {
	var out []model.Requirement
	uc.store.Read(func(tx *store.Tx) {
		out = tx.Requirements(func(r *model.Requirement) bool {
			return roleID == nil || r.RoleID == *roleID
		})
	})
	return out
}

// Stages returns the pipeline table for presentation.
func (uc *PipelineUsecase) Stages() []model.StageInfo {
	return append([]model.StageInfo(nil), model.Pipeline...)
}
