package model

import (
	"time"

	"github.com/google/uuid"
)

type Recommendation string

const (
	RecommendProceed Recommendation = "proceed"
	RecommendHold    Recommendation = "hold"
	RecommendReject  Recommendation = "reject"
)

func (r Recommendation) IsValid() bool {
	switch r {
	case RecommendProceed, RecommendHold, RecommendReject:
		return true
	default:
		return false
	}
}

const (
	MinRating = 1
	MaxRating = 5
)

// FeedbackRecord is immutable once stored. Amendments create a new record
// pointing at the prior one through Supersedes.
type FeedbackRecord struct {
	ID             uuid.UUID      `json:"id"`
	ScheduleID     uuid.UUID      `json:"schedule_id"`
	CandidateID    uuid.UUID      `json:"candidate_id"`
	Stage          Stage          `json:"stage"`
	SkillRatings   map[string]int `json:"skill_ratings"`
	OverallRating  int            `json:"overall_rating"`
	CompositeScore float64        `json:"composite_score"`
	Recommendation Recommendation `json:"recommendation"`
	Strengths      string         `json:"strengths,omitempty"`
	Concerns       string         `json:"concerns,omitempty"`
	Notes          string         `json:"notes,omitempty"`
	SubmittedBy    string         `json:"submitted_by"`
	SubmittedAt    time.Time      `json:"submitted_at"`
	Supersedes     *uuid.UUID     `json:"supersedes,omitempty"`
	SupersededBy   *uuid.UUID     `json:"superseded_by,omitempty"`
}

// Current reports whether the record has not been amended.
func (f *FeedbackRecord) Current() bool {
	return f.SupersededBy == nil
}

func (f FeedbackRecord) Clone() FeedbackRecord {
	out := f
	out.SkillRatings = make(map[string]int, len(f.SkillRatings))
	for k, v := range f.SkillRatings {
		out.SkillRatings[k] = v
	}
	out.Supersedes = clonePtr(f.Supersedes)
	out.SupersededBy = clonePtr(f.SupersededBy)
	return out
}
