package scoring

import (
	"errors"
	"testing"

	"github.com/fadilmartias/hiring-pipeline/internal/apperror"
	"github.com/fadilmartias/hiring-pipeline/internal/model"
)

var rubric = []Weight{
	{Skill: "A", Percent: 30},
	{Skill: "B", Percent: 25},
	{Skill: "C", Percent: 20},
	{Skill: "D", Percent: 15},
	{Skill: "E", Percent: 10},
}

func TestCompositeBoundaries(t *testing.T) {
	t.Parallel()

	w, err := NewWeights(rubric)
	if err != nil {
		t.Fatalf("new weights: %v", err)
	}

	tests := []struct {
		name    string
		ratings map[string]int
		want    float64
	}{
		{"all five", map[string]int{"A": 5, "B": 5, "C": 5, "D": 5, "E": 5}, 5.0},
		{"all one", map[string]int{"A": 1, "B": 1, "C": 1, "D": 1, "E": 1}, 1.0},
		{"mixed", map[string]int{"A": 4, "B": 3, "C": 5, "D": 2, "E": 1}, 3.35},
		{"extra skill ignored", map[string]int{"A": 4, "B": 4, "C": 4, "D": 4, "E": 4, "Z": 1}, 4.0},
	}
	for _, tc := range tests {
		got, err := w.Composite(tc.ratings)
		if err != nil {
			t.Fatalf("%s: composite: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %.2f, got %.2f", tc.name, tc.want, got)
		}
	}
}

func TestNewWeightsRejectsBadSums(t *testing.T) {
	t.Parallel()

	bad := [][]Weight{
		{{Skill: "A", Percent: 50}, {Skill: "B", Percent: 40}},
		{{Skill: "A", Percent: 60}, {Skill: "B", Percent: 60}},
		{{Skill: "A", Percent: 100}, {Skill: "A", Percent: 0}},
		{{Skill: "", Percent: 100}},
		nil,
	}
	for i, items := range bad {
		if _, err := NewWeights(items); !errors.Is(err, apperror.ErrValidation) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestCompositeRequiresValidRatings(t *testing.T) {
	t.Parallel()

	w := MustWeights(rubric)
	if _, err := w.Composite(map[string]int{"A": 5, "B": 5}); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected missing ratings to fail, got %v", err)
	}
	if _, err := w.Composite(map[string]int{"A": 6, "B": 5, "C": 5, "D": 5, "E": 5}); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected out of range rating to fail, got %v", err)
	}
	if _, err := (Weights{}).Composite(map[string]int{"A": 5}); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected unconfigured weights to fail before scoring, got %v", err)
	}
}

func TestStageWeightsDefaultsCoverInterviewStages(t *testing.T) {
	t.Parallel()

	weights := Defaults()
	for _, info := range model.Pipeline {
		_, err := weights.For(info.Stage)
		if info.Gate == model.GateInterview && err != nil {
			t.Fatalf("expected weights for %s: %v", info.Stage, err)
		}
		if info.Gate != model.GateInterview && err == nil {
			t.Fatalf("did not expect weights for %s", info.Stage)
		}
	}

	_, err := NewStageWeights(map[model.Stage][]Weight{model.StageApplication: rubric})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error for non-interview stage, got %v", err)
	}
}
