package model

import (
	"time"

	"github.com/google/uuid"
)

// TA is a talent acquisition specialist owning one or more requirements.
type TA struct {
	ID                     uuid.UUID   `json:"id"`
	Name                   string      `json:"name"`
	Email                  string      `json:"email"`
	Active                 bool        `json:"active"`
	CurrentLoad            int         `json:"current_load"`
	MaxLoad                int         `json:"max_load"`
	EfficiencyScore        int         `json:"efficiency_score"`
	AssignedRequirementIDs []uuid.UUID `json:"assigned_requirement_ids"`
	LastActivityAt         time.Time   `json:"last_activity_at"`
	CreatedAt              time.Time   `json:"created_at"`
}

// Holds reports whether the TA currently owns the requirement.
func (t *TA) Holds(requirementID uuid.UUID) bool {
	for _, id := range t.AssignedRequirementIDs {
		if id == requirementID {
			return true
		}
	}
	return false
}

// Take adds the requirement and bumps the load.
func (t *TA) Take(requirementID uuid.UUID) {
	if t.Holds(requirementID) {
		return
	}
	t.AssignedRequirementIDs = append(t.AssignedRequirementIDs, requirementID)
	t.CurrentLoad++
}

// Release removes the requirement and lowers the load.
func (t *TA) Release(requirementID uuid.UUID) {
	for i, id := range t.AssignedRequirementIDs {
		if id == requirementID {
			t.AssignedRequirementIDs = append(t.AssignedRequirementIDs[:i:i], t.AssignedRequirementIDs[i+1:]...)
			t.CurrentLoad--
			return
		}
	}
}

func (t TA) Clone() TA {
	out := t
	out.AssignedRequirementIDs = append([]uuid.UUID(nil), t.AssignedRequirementIDs...)
	return out
}
