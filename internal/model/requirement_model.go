package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Client struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Role struct {
	ID              uuid.UUID `json:"id"`
	ClientID        uuid.UUID `json:"client_id"`
	Title           string    `json:"title"`
	TotalVacancies  int       `json:"total_vacancies"`
	FilledPositions int       `json:"filled_positions"`
	CreatedAt       time.Time `json:"created_at"`
}

type RequirementStatus string

const (
	RequirementOpen       RequirementStatus = "open"
	RequirementInProgress RequirementStatus = "in_progress"
	RequirementOnHold     RequirementStatus = "on_hold"
	RequirementClosed     RequirementStatus = "closed"
)

func (s RequirementStatus) IsValid() bool {
	switch s {
	case RequirementOpen, RequirementInProgress, RequirementOnHold, RequirementClosed:
		return true
	default:
		return false
	}
}

// PipelineCounts are derived from the requirement's candidates.
type PipelineCounts struct {
	Sourced     int `json:"sourced"`
	Screened    int `json:"screened"`
	Interviewed int `json:"interviewed"`
	Offered     int `json:"offered"`
	Hired       int `json:"hired"`
}

// Validate checks hired <= offered <= interviewed <= screened <= sourced.
func (p PipelineCounts) Validate() error {
	ordered := []struct {
		name  string
		value int
	}{
		{"hired", p.Hired},
		{"offered", p.Offered},
		{"interviewed", p.Interviewed},
		{"screened", p.Screened},
		{"sourced", p.Sourced},
	}
	for i := 0; i+1 < len(ordered); i++ {
		if ordered[i].value > ordered[i+1].value {
			return fmt.Errorf("pipeline counts out of order: %s=%d > %s=%d",
				ordered[i].name, ordered[i].value, ordered[i+1].name, ordered[i+1].value)
		}
	}
	return nil
}

// Tally adds one candidate to the counts according to how far it got.
func (p *PipelineCounts) Tally(c *Candidate) {
	furthest := c.FurthestStage()
	p.Sourced++
	if furthest.AtLeast(StageTechnical) {
		p.Screened++
	}
	if furthest.AtLeast(StageBackgroundVerification) {
		p.Interviewed++
	}
	if furthest.AtLeast(StageFinalReview) {
		p.Offered++
	}
	if c.Outcome == OutcomeHired {
		p.Hired++
	}
}

type Requirement struct {
	ID             uuid.UUID         `json:"id"`
	RoleID         uuid.UUID         `json:"role_id"`
	Title          string            `json:"title"`
	Status         RequirementStatus `json:"status"`
	Priority       Priority          `json:"priority"`
	Vacancies      int               `json:"vacancies"`
	AssignedTA     *uuid.UUID        `json:"assigned_ta,omitempty"`
	JDApproved     bool              `json:"jd_approved"`
	DueDate        time.Time         `json:"due_date"`
	PipelineCounts PipelineCounts    `json:"pipeline_counts"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// Filled reports whether every vacancy has been hired.
func (r *Requirement) Filled() bool {
	return r.PipelineCounts.Hired >= r.Vacancies
}

func (r Requirement) Clone() Requirement {
	out := r
	out.AssignedTA = clonePtr(r.AssignedTA)
	return out
}
