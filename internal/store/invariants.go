package store

import (
	"github.com/fadilmartias/hiring-pipeline/internal/apperror"
	"github.com/fadilmartias/hiring-pipeline/internal/model"
	"github.com/google/uuid"
)

// recompute refreshes derived aggregates for the touched requirements and
// checks cross-entity invariants. A violation means a bug in the caller, so
// values are never clamped.
func (s *Store) recompute(tx *Tx, touched []uuid.UUID) error {
	roles := map[uuid.UUID]bool{}
	for _, r := range tx.roles.pending() {
		roles[r.ID] = true
	}

	for _, id := range touched {
		req, ok := tx.requirements.get(id)
		if !ok {
			continue
		}
		var counts model.PipelineCounts
		for _, c := range tx.CandidatesFor(id) {
			counts.Tally(&c)
		}
		if err := counts.Validate(); err != nil {
			return apperror.InvariantViolation("requirement %s: %v", id, err)
		}
		if counts.Hired > req.Vacancies {
			return apperror.InvariantViolation("requirement %s: hired %d exceeds vacancies %d", id, counts.Hired, req.Vacancies)
		}
		if counts != req.PipelineCounts {
			req.PipelineCounts = counts
			tx.requirements.put(req.ID, req)
		}
		roles[req.RoleID] = true
	}

	for roleID := range roles {
		role, ok := tx.roles.get(roleID)
		if !ok {
			continue
		}
		filled := 0
		for _, req := range tx.Requirements(func(r *model.Requirement) bool { return r.RoleID == roleID }) {
			filled += req.PipelineCounts.Hired
		}
		if filled > role.TotalVacancies {
			return apperror.InvariantViolation("role %s: filled positions %d exceed total vacancies %d", roleID, filled, role.TotalVacancies)
		}
		if filled != role.FilledPositions {
			role.FilledPositions = filled
			tx.roles.put(role.ID, role)
		}
	}

	for _, ta := range tx.tas.pending() {
		if ta.CurrentLoad < 0 || ta.CurrentLoad != len(ta.AssignedRequirementIDs) {
			return apperror.InvariantViolation("ta %s: current load %d does not match %d assigned requirements",
				ta.ID, ta.CurrentLoad, len(ta.AssignedRequirementIDs))
		}
		for _, reqID := range ta.AssignedRequirementIDs {
			req, ok := tx.requirements.get(reqID)
			if !ok || req.AssignedTA == nil || *req.AssignedTA != ta.ID {
				return apperror.InvariantViolation("ta %s holds requirement %s that is not assigned to it", ta.ID, reqID)
			}
		}
	}

	for _, req := range tx.requirements.pending() {
		if req.AssignedTA == nil {
			continue
		}
		ta, ok := tx.tas.get(*req.AssignedTA)
		if !ok || !ta.Holds(req.ID) {
			return apperror.InvariantViolation("requirement %s points at ta %s which does not hold it", req.ID, *req.AssignedTA)
		}
	}

	for _, c := range tx.candidates.pending() {
		if !c.Stage.IsValid() {
			return apperror.InvariantViolation("candidate %s has unknown stage %q", c.ID, c.Stage)
		}
		if len(c.StageHistory) == 0 || c.StageHistory[len(c.StageHistory)-1].Stage != c.Stage {
			return apperror.InvariantViolation("candidate %s stage history does not end at %s", c.ID, c.Stage)
		}
	}
	return nil
}
