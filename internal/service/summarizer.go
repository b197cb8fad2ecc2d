package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/fadilmartias/hiring-pipeline/internal/model"
	"github.com/tidwall/gjson"
)

// SummaryInput is the feedback handed to an LLM for a final review digest.
type SummaryInput struct {
	CandidateName string
	AppliedRole   string
	Feedback      []model.FeedbackRecord
}

type CandidateSummary struct {
	Provider       string   `json:"provider"`
	Summary        string   `json:"summary"`
	Strengths      []string `json:"strengths"`
	Risks          []string `json:"risks"`
	Recommendation string   `json:"recommendation"`
}

type SummarizerInterface interface {
	Summarize(ctx context.Context, in SummaryInput) (CandidateSummary, error)
}

func buildSummaryPrompt(in SummaryInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are an experienced technical recruiter preparing a final review.
Summarize the interview feedback for %s (applied for %s).

Return your answer STRICTLY in JSON format with this schema:
{
  "summary": "<two or three sentences>",
  "strengths": ["<strength>"],
  "risks": ["<risk or open concern>"],
  "recommendation": "<one of: proceed, hold, reject>"
}

Feedback:
`, in.CandidateName, in.AppliedRole)

	for _, f := range in.Feedback {
		fmt.Fprintf(&b, "\n[%s] by %s, overall %d/5, composite %.2f, recommendation %s\n",
			f.Stage.Label(), f.SubmittedBy, f.OverallRating, f.CompositeScore, f.Recommendation)
		skills := make([]string, 0, len(f.SkillRatings))
		for skill := range f.SkillRatings {
			skills = append(skills, skill)
		}
		sort.Strings(skills)
		for _, skill := range skills {
			fmt.Fprintf(&b, "- %s: %d\n", skill, f.SkillRatings[skill])
		}
		if f.Strengths != "" {
			fmt.Fprintf(&b, "Strengths: %s\n", f.Strengths)
		}
		if f.Concerns != "" {
			fmt.Fprintf(&b, "Concerns: %s\n", f.Concerns)
		}
		if f.Notes != "" {
			fmt.Fprintf(&b, "Notes: %s\n", f.Notes)
		}
	}
	return b.String()
}

// parseSummary reads the JSON answer of a model. Models like to wrap JSON in
// markdown fences, so those are stripped first.
func parseSummary(provider, text string) (CandidateSummary, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if !gjson.Valid(text) {
		return CandidateSummary{}, fmt.Errorf("%s: response is not valid json", provider)
	}
	parsed := gjson.Parse(text)
	out := CandidateSummary{
		Provider:       provider,
		Summary:        parsed.Get("summary").String(),
		Recommendation: parsed.Get("recommendation").String(),
	}
	for _, v := range parsed.Get("strengths").Array() {
		out.Strengths = append(out.Strengths, v.String())
	}
	for _, v := range parsed.Get("risks").Array() {
		out.Risks = append(out.Risks, v.String())
	}
	if out.Summary == "" {
		return CandidateSummary{}, fmt.Errorf("%s: response has no summary", provider)
	}
	return out, nil
}
