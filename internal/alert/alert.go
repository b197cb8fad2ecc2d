// Package alert derives the single call-to-action for a requirement from
// pipeline state. Evaluation is pure and deterministic.
package alert

import (
	"time"

	"github.com/fadilmartias/hiring-pipeline/internal/model"
)

// Policy holds the thresholds the rules use.
type Policy struct {
	DueSoonWindow   time.Duration `yaml:"dueSoonWindow"`
	TAInactiveAfter time.Duration `yaml:"taInactiveAfter"`
	MinEfficiency   int           `yaml:"minEfficiency"`
	MinInterviewed  int           `yaml:"minInterviewed"`
	MinOfferRatio   float64       `yaml:"minOfferRatio"`
	StaleAfter      time.Duration `yaml:"staleAfter"`
}

// DefaultPolicy mirrors the dashboard defaults.
func DefaultPolicy() Policy {
	return Policy{
		DueSoonWindow:   7 * 24 * time.Hour,
		TAInactiveAfter: 3 * 24 * time.Hour,
		MinEfficiency:   40,
		MinInterviewed:  3,
		MinOfferRatio:   0.2,
		StaleAfter:      7 * 24 * time.Hour,
	}
}

// Input is everything a rule may look at.
type Input struct {
	Requirement model.Requirement
	Role        *model.Role
	Candidates  []model.Candidate
	TA          *model.TA
	Now         time.Time
}

func (in Input) counts() model.PipelineCounts {
	var counts model.PipelineCounts
	for i := range in.Candidates {
		counts.Tally(&in.Candidates[i])
	}
	return counts
}

// Rule pairs a condition with its fixed priority and call-to-action.
type Rule struct {
	Reason   model.AlertReason
	Priority model.Priority
	CTA      string
	Message  string
	Match    func(in Input, p Policy) bool
}

// Rules in evaluation order, highest priority first.
var Rules = []Rule{
	{
		Reason:   model.AlertTANotAssigned,
		Priority: model.PriorityHigh,
		CTA:      "Assign TA",
		Message:  "No TA is assigned to this requirement",
		Match: func(in Input, _ Policy) bool {
			return in.Requirement.AssignedTA == nil
		},
	},
	{
		Reason:   model.AlertJDNotApproved,
		Priority: model.PriorityHigh,
		CTA:      "Approve JD",
		Message:  "Job description is waiting for approval",
		Match: func(in Input, _ Policy) bool {
			return !in.Requirement.JDApproved
		},
	},
	{
		Reason:   model.AlertNoCandidates,
		Priority: model.PriorityHigh,
		CTA:      "Start Sourcing",
		Message:  "No candidates have been sourced yet",
		Match: func(in Input, _ Policy) bool {
			return len(in.Candidates) == 0
		},
	},
	{
		Reason:   model.AlertOverdue,
		Priority: model.PriorityHigh,
		CTA:      "Extend Deadline",
		Message:  "Requirement is past its due date",
		Match: func(in Input, _ Policy) bool {
			return in.Requirement.DueDate.Before(in.Now)
		},
	},
	{
		Reason:   model.AlertDueSoon,
		Priority: model.PriorityMedium,
		CTA:      "Expedite Hiring",
		Message:  "Requirement is due within the week",
		Match: func(in Input, p Policy) bool {
			return in.Requirement.DueDate.Sub(in.Now) <= p.DueSoonWindow
		},
	},
	{
		Reason:   model.AlertTAInactive,
		Priority: model.PriorityMedium,
		CTA:      "Contact TA",
		Message:  "Assigned TA is inactive or slow to respond",
		Match: func(in Input, p Policy) bool {
			if in.TA == nil {
				return false
			}
			if !in.TA.Active || in.TA.EfficiencyScore < p.MinEfficiency {
				return true
			}
			return in.Now.Sub(in.TA.LastActivityAt) >= p.TAInactiveAfter
		},
	},
	{
		Reason:   model.AlertLowInterviewToOffer,
		Priority: model.PriorityMedium,
		CTA:      "Review Pipeline",
		Message:  "Few interviewed candidates convert to offers",
		Match: func(in Input, p Policy) bool {
			counts := in.counts()
			if counts.Interviewed < p.MinInterviewed || counts.Interviewed == 0 {
				return false
			}
			return float64(counts.Offered)/float64(counts.Interviewed) < p.MinOfferRatio
		},
	},
	{
		Reason:   model.AlertPendingNoProgress,
		Priority: model.PriorityLow,
		CTA:      "Follow Up",
		Message:  "No candidate has moved stage recently",
		Match: func(in Input, p Policy) bool {
			var latest time.Time
			for i := range in.Candidates {
				if moved := in.Candidates[i].LastMovedAt(); moved.After(latest) {
					latest = moved
				}
			}
			return in.Now.Sub(latest) > p.StaleAfter
		},
	},
	{
		Reason:   model.AlertVacanciesFilledOpen,
		Priority: model.PriorityLow,
		CTA:      "Close Requirement",
		Message:  "All vacancies are filled but the requirement is still open",
		Match: func(in Input, _ Policy) bool {
			return in.counts().Hired >= in.Requirement.Vacancies
		},
	},
}

// Evaluate returns the first matching rule as an alert. ok is false when no
// rule matches or the requirement is closed.
func Evaluate(in Input, p Policy) (model.AlertRecord, bool) {
	if in.Requirement.Status == model.RequirementClosed {
		return model.AlertRecord{}, false
	}
	for _, rule := range Rules {
		if rule.Match(in, p) {
			return model.AlertRecord{
				RequirementID: in.Requirement.ID,
				Reason:        rule.Reason,
				Message:       rule.Message,
				Priority:      rule.Priority,
				CTA:           rule.CTA,
			}, true
		}
	}
	return model.AlertRecord{}, false
}

// CTA returns the call-to-action for a reason.
func CTA(reason model.AlertReason) (string, bool) {
	for _, rule := range Rules {
		if rule.Reason == reason {
			return rule.CTA, true
		}
	}
	return "", false
}
