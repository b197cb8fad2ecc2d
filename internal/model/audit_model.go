package model

import (
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	AuditReopen           AuditAction = "reopen"
	AuditReject           AuditAction = "reject"
	AuditWithdraw         AuditAction = "withdraw"
	AuditAssignOverride   AuditAction = "assign-override"
	AuditFeedbackAmend    AuditAction = "feedback-amend"
	AuditVerificationFail AuditAction = "verification-fail"
)

// AuditEntry is append-only. Entries for failed attempts carry Success=false
// and the error text.
type AuditEntry struct {
	ID            uuid.UUID   `json:"id"`
	Action        AuditAction `json:"action"`
	Actor         string      `json:"actor"`
	CandidateID   *uuid.UUID  `json:"candidate_id,omitempty"`
	RequirementID *uuid.UUID  `json:"requirement_id,omitempty"`
	FromStage     Stage       `json:"from_stage,omitempty"`
	ToStage       Stage       `json:"to_stage,omitempty"`
	Justification string      `json:"justification,omitempty"`
	Success       bool        `json:"success"`
	Error         string      `json:"error,omitempty"`
	At            time.Time   `json:"at"`
}
