package dto

import (
	"time"

	"github.com/fadilmartias/hiring-pipeline/internal/model"
	"github.com/fadilmartias/hiring-pipeline/internal/usecase"
)

type ClientRequest struct {
	Name string `json:"name"`
}

type RoleRequest struct {
	ClientID       string `json:"client_id"`
	Title          string `json:"title"`
	TotalVacancies int    `json:"total_vacancies"`
}

type RequirementRequest struct {
	RoleID     string    `json:"role_id"`
	Title      string    `json:"title"`
	Priority   string    `json:"priority"`
	Vacancies  int       `json:"vacancies"`
	DueDate    time.Time `json:"due_date"`
	JDApproved bool      `json:"jd_approved"`
}

func (r RequirementRequest) ToInput() (usecase.RequirementInput, error) {
	errs := map[string]string{}
	in := usecase.RequirementInput{
		RoleID:     ParseID("role_id", r.RoleID, errs),
		Title:      r.Title,
		Priority:   model.Priority(r.Priority),
		Vacancies:  r.Vacancies,
		DueDate:    r.DueDate,
		JDApproved: r.JDApproved,
	}
	return in, formError(errs)
}

type RequirementStatusRequest struct {
	Status string `json:"status"`
}

type DeadlineRequest struct {
	DueDate time.Time `json:"due_date"`
}

type AssignRequest struct {
	TAID          string `json:"ta_id"`
	Override      bool   `json:"override"`
	Justification string `json:"justification"`
	Actor         string `json:"actor"`
}

type TARequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	MaxLoad         int    `json:"max_load"`
	EfficiencyScore int    `json:"efficiency_score"`
}

func (r TARequest) ToInput() usecase.TAInput {
	return usecase.TAInput{Name: r.Name, Email: r.Email, MaxLoad: r.MaxLoad, EfficiencyScore: r.EfficiencyScore}
}

// TAUpdateRequest fields left out of the body are unchanged.
type TAUpdateRequest struct {
	Active          *bool `json:"active"`
	MaxLoad         *int  `json:"max_load"`
	EfficiencyScore *int  `json:"efficiency_score"`
}

func (r TAUpdateRequest) ToInput() usecase.TAUpdate {
	return usecase.TAUpdate{Active: r.Active, MaxLoad: r.MaxLoad, EfficiencyScore: r.EfficiencyScore}
}
