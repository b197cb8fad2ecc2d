package dto

import (
	"github.com/fadilmartias/hiring-pipeline/internal/model"
	"github.com/fadilmartias/hiring-pipeline/internal/usecase"
	"github.com/fadilmartias/hiring-pipeline/internal/verification"
)

type CandidateRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	RequirementID string `json:"requirement_id"`
	Priority      string `json:"priority"`
}

func (r CandidateRequest) ToInput() (usecase.CandidateInput, error) {
	errs := map[string]string{}
	in := usecase.CandidateInput{
		Name:          r.Name,
		Email:         r.Email,
		Phone:         r.Phone,
		RequirementID: ParseID("requirement_id", r.RequirementID, errs),
		Priority:      model.Priority(r.Priority),
	}
	return in, formError(errs)
}

type ReopenRequest struct {
	Stage         string `json:"stage"`
	Justification string `json:"justification"`
	Actor         string `json:"actor"`
}

// CandidateDetail bundles a candidate with everything recorded about it.
type CandidateDetail struct {
	Candidate    model.Candidate        `json:"candidate"`
	Schedules    []model.ScheduleRecord `json:"schedules"`
	Feedback     []model.FeedbackRecord `json:"feedback"`
	Verification *verification.Status  `json:"verification,omitempty"`
	Stages       []model.StageInfo      `json:"stages"`
}
