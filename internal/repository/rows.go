package repository

import (
	"time"

	"github.com/fadilmartias/hiring-pipeline/internal/model"
	"github.com/google/uuid"
)

// Each row keeps the columns worth filtering on next to the full entity as
// a JSON payload. CreatedAt preserves insertion order on load.

type ClientRow struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey"`
	Name      string       `gorm:"size:255"`
	Payload   model.Client `gorm:"type:jsonb;serializer:json"`
	CreatedAt time.Time    `gorm:"index"`
}

func (ClientRow) TableName() string { return "clients" }

type RoleRow struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ClientID  uuid.UUID  `gorm:"type:uuid;index"`
	Payload   model.Role `gorm:"type:jsonb;serializer:json"`
	CreatedAt time.Time  `gorm:"index"`
}

func (RoleRow) TableName() string { return "roles" }

type RequirementRow struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey"`
	RoleID     uuid.UUID         `gorm:"type:uuid;index"`
	Status     string            `gorm:"size:32;index"`
	AssignedTA *uuid.UUID        `gorm:"type:uuid;index"`
	DueDate    time.Time
	Payload    model.Requirement `gorm:"type:jsonb;serializer:json"`
	CreatedAt  time.Time         `gorm:"index"`
	UpdatedAt  time.Time
}

func (RequirementRow) TableName() string { return "requirements" }

type TARow struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"size:255;index"`
	Active    bool
	Payload   model.TA  `gorm:"type:jsonb;serializer:json"`
	CreatedAt time.Time `gorm:"index"`
}

func (TARow) TableName() string { return "tas" }

type CandidateRow struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	RequirementID uuid.UUID       `gorm:"type:uuid;index"`
	Stage         string          `gorm:"size:32;index"`
	Outcome       string          `gorm:"size:16"`
	Payload       model.Candidate `gorm:"type:jsonb;serializer:json"`
	CreatedAt     time.Time       `gorm:"index"`
	UpdatedAt     time.Time
}

func (CandidateRow) TableName() string { return "candidates" }

type ScheduleRow struct {
	ID            uuid.UUID            `gorm:"type:uuid;primaryKey"`
	CandidateID   uuid.UUID            `gorm:"type:uuid;index"`
	Stage         string               `gorm:"size:32"`
	Status        string               `gorm:"size:16;index"`
	InterviewerID string               `gorm:"size:255;index"`
	DateTime      *time.Time
	Payload       model.ScheduleRecord `gorm:"type:jsonb;serializer:json"`
	CreatedAt     time.Time            `gorm:"index"`
	UpdatedAt     time.Time
}

func (ScheduleRow) TableName() string { return "schedules" }

type FeedbackRow struct {
	ID          uuid.UUID            `gorm:"type:uuid;primaryKey"`
	ScheduleID  uuid.UUID            `gorm:"type:uuid;index"`
	CandidateID uuid.UUID            `gorm:"type:uuid;index"`
	Payload     model.FeedbackRecord `gorm:"type:jsonb;serializer:json"`
	CreatedAt   time.Time            `gorm:"index"`
}

func (FeedbackRow) TableName() string { return "feedback" }

type VerificationRow struct {
	ID          uuid.UUID                 `gorm:"type:uuid;primaryKey"`
	CandidateID uuid.UUID                 `gorm:"type:uuid;index"`
	Status      string                    `gorm:"size:16"`
	Payload     model.VerificationSession `gorm:"type:jsonb;serializer:json"`
	CreatedAt   time.Time                 `gorm:"index"`
	UpdatedAt   time.Time
}

func (VerificationRow) TableName() string { return "verification_sessions" }

type AuditRow struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Action      string           `gorm:"size:32;index"`
	CandidateID *uuid.UUID       `gorm:"type:uuid;index"`
	Success     bool
	Payload     model.AuditEntry `gorm:"type:jsonb;serializer:json"`
	At          time.Time        `gorm:"index"`
}

func (AuditRow) TableName() string { return "audit_log" }

// Rows is one commit converted to table rows.
type Rows struct {
	Clients       []ClientRow
	Roles         []RoleRow
	Requirements  []RequirementRow
	TAs           []TARow
	Candidates    []CandidateRow
	Schedules     []ScheduleRow
	Feedback      []FeedbackRow
	Verifications []VerificationRow
}

func clientRow(v model.Client) ClientRow {
	return ClientRow{ID: v.ID, Name: v.Name, Payload: v, CreatedAt: v.CreatedAt}
}

func roleRow(v model.Role) RoleRow {
	return RoleRow{ID: v.ID, ClientID: v.ClientID, Payload: v, CreatedAt: v.CreatedAt}
}

func requirementRow(v model.Requirement) RequirementRow {
	return RequirementRow{
		ID:         v.ID,
		RoleID:     v.RoleID,
		Status:     string(v.Status),
		AssignedTA: v.AssignedTA,
		DueDate:    v.DueDate,
		Payload:    v,
		CreatedAt:  v.CreatedAt,
		UpdatedAt:  v.UpdatedAt,
	}
}

func taRow(v model.TA) TARow {
	return TARow{ID: v.ID, Email: v.Email, Active: v.Active, Payload: v, CreatedAt: v.CreatedAt}
}

func candidateRow(v model.Candidate) CandidateRow {
	return CandidateRow{
		ID:            v.ID,
		RequirementID: v.RequirementID,
		Stage:         string(v.Stage),
		Outcome:       string(v.Outcome),
		Payload:       v,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

func scheduleRow(v model.ScheduleRecord) ScheduleRow {
	return ScheduleRow{
		ID:            v.ID,
		CandidateID:   v.CandidateID,
		Stage:         string(v.Stage),
		Status:        string(v.Status),
		InterviewerID: v.InterviewerID,
		DateTime:      v.DateTime,
		Payload:       v,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

func feedbackRow(v model.FeedbackRecord) FeedbackRow {
	return FeedbackRow{ID: v.ID, ScheduleID: v.ScheduleID, CandidateID: v.CandidateID, Payload: v, CreatedAt: v.SubmittedAt}
}

func verificationRow(v model.VerificationSession) VerificationRow {
	return VerificationRow{
		ID:          v.ID,
		CandidateID: v.CandidateID,
		Status:      string(v.Status),
		Payload:     v,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

func auditRow(v model.AuditEntry) AuditRow {
	return AuditRow{ID: v.ID, Action: string(v.Action), CandidateID: v.CandidateID, Success: v.Success, Payload: v, At: v.At}
}

func mapRows[T, R any](items []T, fn func(T) R) []R {
	if len(items) == 0 {
		return nil
	}
	out := make([]R, len(items))
	for i, item := range items {
		out[i] = fn(item)
	}
	return out
}

func payloads[R, T any](rows []R, fn func(R) T) []T {
	out := make([]T, len(rows))
	for i, row := range rows {
		out[i] = fn(row)
	}
	return out
}
