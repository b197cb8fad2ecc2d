package dto

import "time"

type StartVerificationRequest struct {
	Partner string     `json:"verification_partner"`
	SLADate *time.Time `json:"sla_date"`
}

type ReviewDocumentRequest struct {
	Status string `json:"status"`
}

type HoldRequest struct {
	Note string `json:"note"`
}
