package dto

import (
	"time"

	"github.com/fadilmartias/hiring-pipeline/internal/model"
	"github.com/fadilmartias/hiring-pipeline/internal/usecase"
)

type ScheduleRequest struct {
	Stage           string     `json:"stage"`
	Mode            string     `json:"mode"`
	DateTime        *time.Time `json:"date_time"`
	DurationMinutes int        `json:"duration_minutes"`
	InterviewerID   string     `json:"interviewer_id"`
	MeetingLink     string     `json:"meeting_link"`
	CandidateEmail  string     `json:"candidate_email"`
}

func (r ScheduleRequest) Details() usecase.ScheduleDetails {
	return usecase.ScheduleDetails{
		Mode:            model.ScheduleMode(r.Mode),
		DateTime:        r.DateTime,
		DurationMinutes: r.DurationMinutes,
		InterviewerID:   r.InterviewerID,
		MeetingLink:     r.MeetingLink,
		CandidateEmail:  r.CandidateEmail,
	}
}

type BookSlotRequest struct {
	DateTime      time.Time `json:"date_time"`
	InterviewerID string    `json:"interviewer_id"`
}

type FeedbackRequest struct {
	SkillRatings   map[string]int `json:"skill_ratings"`
	OverallRating  int            `json:"overall_rating"`
	Recommendation string         `json:"recommendation"`
	Strengths      string         `json:"strengths"`
	Concerns       string         `json:"concerns"`
	Notes          string         `json:"notes"`
	SubmittedBy    string         `json:"submitted_by"`
}

func (r FeedbackRequest) ToInput() usecase.FeedbackInput {
	return usecase.FeedbackInput{
		SkillRatings:   r.SkillRatings,
		OverallRating:  r.OverallRating,
		Recommendation: model.Recommendation(r.Recommendation),
		Strengths:      r.Strengths,
		Concerns:       r.Concerns,
		Notes:          r.Notes,
		SubmittedBy:    r.SubmittedBy,
	}
}
