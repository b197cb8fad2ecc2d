package model

import "github.com/google/uuid"

type AlertReason string

const (
	AlertTANotAssigned       AlertReason = "ta-not-assigned"
	AlertJDNotApproved       AlertReason = "jd-not-approved"
	AlertNoCandidates        AlertReason = "no-candidates"
	AlertOverdue             AlertReason = "overdue"
	AlertDueSoon             AlertReason = "due-soon"
	AlertTAInactive          AlertReason = "ta-inactive"
	AlertLowInterviewToOffer AlertReason = "low-interview-to-offer"
	AlertPendingNoProgress   AlertReason = "pending-no-progress"
	AlertVacanciesFilledOpen AlertReason = "vacancies-filled-open"
)

// AlertRecord is derived on demand and never stored as authoritative state.
type AlertRecord struct {
	RequirementID uuid.UUID   `json:"requirement_id"`
	Reason        AlertReason `json:"reason"`
	Message       string      `json:"message"`
	Priority      Priority    `json:"priority"`
	CTA           string      `json:"cta"`
}
