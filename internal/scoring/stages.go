package scoring

import (
	"fmt"

	"github.com/fadilmartias/hiring-pipeline/internal/apperror"
	"github.com/fadilmartias/hiring-pipeline/internal/model"
)

// DefaultStageWeights are the rubric weights per interview stage.
var DefaultStageWeights = map[model.Stage][]Weight{
	model.StagePhoneScreening: {
		{Skill: "Communication", Percent: 40},
		{Skill: "Relevant Experience", Percent: 35},
		{Skill: "Motivation", Percent: 25},
	},
	model.StageTechnical: {
		{Skill: "Problem Solving", Percent: 30},
		{Skill: "Code Quality", Percent: 25},
		{Skill: "System Design", Percent: 20},
		{Skill: "Communication", Percent: 15},
		{Skill: "Best Practices", Percent: 10},
	},
	model.StageClientInterview: {
		{Skill: "Domain Knowledge", Percent: 35},
		{Skill: "Problem Solving", Percent: 35},
		{Skill: "Communication", Percent: 30},
	},
	model.StageFinalReview: {
		{Skill: "Culture Fit", Percent: 50},
		{Skill: "Leadership", Percent: 50},
	},
}

// StageWeights holds one validated weight set per interview-gated stage.
type StageWeights map[model.Stage]Weights

// NewStageWeights validates every set. A stage that is not interview-gated
// may not carry weights.
func NewStageWeights(raw map[model.Stage][]Weight) (StageWeights, error) {
	out := StageWeights{}
	for stage, items := range raw {
		if stage.Gate() != model.GateInterview {
			return nil, apperror.Validation("stage %q does not take interview feedback", stage)
		}
		w, err := NewWeights(items)
		if err != nil {
			return nil, fmt.Errorf("weights for %s: %w", stage, err)
		}
		out[stage] = w
	}
	for _, info := range model.Pipeline {
		if info.Gate != model.GateInterview {
			continue
		}
		if _, ok := out[info.Stage]; !ok {
			return nil, apperror.Validation("no weights configured for stage %q", info.Stage)
		}
	}
	return out, nil
}

// Defaults returns the validated built-in weights.
func Defaults() StageWeights {
	w, err := NewStageWeights(DefaultStageWeights)
	if err != nil {
		panic(err)
	}
	return w
}

// For returns the set for a stage.
func (s StageWeights) For(stage model.Stage) (Weights, error) {
	w, ok := s[stage]
	if !ok {
		return Weights{}, apperror.Validation("no weights configured for stage %q", stage)
	}
	return w, nil
}
