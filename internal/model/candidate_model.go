package model

import (
	"time"

	"github.com/google/uuid"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// Outcome is the exit flag of a candidate. OutcomeNone means still in the pipeline.
type Outcome string

const (
	OutcomeNone      Outcome = ""
	OutcomeHired     Outcome = "hired"
	OutcomeRejected  Outcome = "rejected"
	OutcomeWithdrawn Outcome = "withdrawn"
)

// StageEntry records one visit of a candidate to a stage.
type StageEntry struct {
	Stage     Stage      `json:"stage"`
	EnteredAt time.Time  `json:"entered_at"`
	ExitedAt  *time.Time `json:"exited_at,omitempty"`
	Reopened  bool       `json:"reopened,omitempty"`
}

type Contact struct {
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type Candidate struct {
	ID              uuid.UUID    `json:"id"`
	Name            string       `json:"name"`
	Contact         Contact      `json:"contact"`
	AppliedRole     string       `json:"applied_role"`
	RequirementID   uuid.UUID    `json:"requirement_id"`
	Stage           Stage        `json:"stage"`
	StageHistory    []StageEntry `json:"stage_history"`
	Priority        Priority     `json:"priority"`
	Score           *float64     `json:"score"`
	AssignedTA      *uuid.UUID   `json:"assigned_ta,omitempty"`
	Outcome         Outcome      `json:"outcome,omitempty"`
	RejectionReason string       `json:"rejection_reason,omitempty"`
	ArchivedAt      *time.Time   `json:"archived_at,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// Archived reports whether the candidate has left the pipeline.
func (c *Candidate) Archived() bool {
	return c.Outcome != OutcomeNone
}

// OpenEntry returns the history entry for the current stage, if any.
func (c *Candidate) OpenEntry() *StageEntry {
	if len(c.StageHistory) == 0 {
		return nil
	}
	last := &c.StageHistory[len(c.StageHistory)-1]
	if last.ExitedAt != nil {
		return nil
	}
	return last
}

// Visit is the stage history index of the current stage visit. Schedules and
// verification sessions are stamped with it.
func (c *Candidate) Visit() int {
	return len(c.StageHistory) - 1
}

// Enter closes the open entry (if any) and opens one for stage.
func (c *Candidate) Enter(stage Stage, at time.Time, reopened bool) {
	c.closeEntry(at)
	c.Stage = stage
	c.StageHistory = append(c.StageHistory, StageEntry{Stage: stage, EnteredAt: at, Reopened: reopened})
	c.UpdatedAt = at
}

// Archive closes the open entry and sets the exit flag.
func (c *Candidate) Archive(outcome Outcome, reason string, at time.Time) {
	c.closeEntry(at)
	c.Outcome = outcome
	c.RejectionReason = reason
	c.ArchivedAt = &at
	c.UpdatedAt = at
}

// FurthestStage is the highest stage the candidate has ever reached.
func (c *Candidate) FurthestStage() Stage {
	furthest := c.Stage
	for _, entry := range c.StageHistory {
		if entry.Stage.Order() > furthest.Order() {
			furthest = entry.Stage
		}
	}
	return furthest
}

// LastMovedAt is the latest stage entry or exit timestamp.
func (c *Candidate) LastMovedAt() time.Time {
	latest := c.CreatedAt
	for _, entry := range c.StageHistory {
		if entry.EnteredAt.After(latest) {
			latest = entry.EnteredAt
		}
		if entry.ExitedAt != nil && entry.ExitedAt.After(latest) {
			latest = *entry.ExitedAt
		}
	}
	return latest
}

func (c *Candidate) closeEntry(at time.Time) {
	if open := c.OpenEntry(); open != nil {
		exited := at
		open.ExitedAt = &exited
	}
}

// Clone returns a deep copy.
func (c Candidate) Clone() Candidate {
	out := c
	out.StageHistory = make([]StageEntry, len(c.StageHistory))
	for i, entry := range c.StageHistory {
		out.StageHistory[i] = entry
		if entry.ExitedAt != nil {
			exited := *entry.ExitedAt
			out.StageHistory[i].ExitedAt = &exited
		}
	}
	out.Score = clonePtr(c.Score)
	out.AssignedTA = clonePtr(c.AssignedTA)
	out.ArchivedAt = clonePtr(c.ArchivedAt)
	return out
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
