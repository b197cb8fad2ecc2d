// Package scoring turns per-skill interview ratings into a weighted composite.
package scoring

import (
	"math"
	"sort"

	"github.com/fadilmartias/hiring-pipeline/internal/apperror"
	"github.com/fadilmartias/hiring-pipeline/internal/model"
)

// Weight is a skill category and its share of the composite, in percent.
type Weight struct {
	Skill   string `yaml:"skill" json:"skill"`
	Percent int    `yaml:"percent" json:"percent"`
}

// Weights is a validated weight set. Build it with NewWeights.
type Weights struct {
	items []Weight
}

// NewWeights validates that every weight is positive, skills are unique and
// the percentages sum to exactly 100.
func NewWeights(items []Weight) (Weights, error) {
	if len(items) == 0 {
		return Weights{}, apperror.Validation("weight set is empty")
	}
	seen := map[string]bool{}
	total := 0
	for _, w := range items {
		if w.Skill == "" {
			return Weights{}, apperror.Validation("weight with empty skill name")
		}
		if seen[w.Skill] {
			return Weights{}, apperror.Validation("skill %q weighted twice", w.Skill)
		}
		if w.Percent <= 0 {
			return Weights{}, apperror.Validation("skill %q has non-positive weight %d", w.Skill, w.Percent)
		}
		seen[w.Skill] = true
		total += w.Percent
	}
	if total != 100 {
		return Weights{}, apperror.Validation("weights sum to %d, want 100", total)
	}
	return Weights{items: append([]Weight(nil), items...)}, nil
}

// MustWeights is NewWeights for package-level defaults.
func MustWeights(items []Weight) Weights {
	w, err := NewWeights(items)
	if err != nil {
		panic(err)
	}
	return w
}

// Items returns a copy of the weights in configured order.
func (w Weights) Items() []Weight {
	return append([]Weight(nil), w.items...)
}

// Skills returns the weighted skill names.
func (w Weights) Skills() []string {
	out := make([]string, len(w.items))
	for i, item := range w.items {
		out[i] = item.Skill
	}
	return out
}

// Composite is the weighted average of ratings, rounded to two decimals.
// Every weighted skill must be rated 1..5; ratings for skills outside the
// set are allowed and ignored.
func (w Weights) Composite(ratings map[string]int) (float64, error) {
	if len(w.items) == 0 {
		return 0, apperror.Validation("weight set is not configured")
	}
	if err := ValidateRatings(ratings); err != nil {
		return 0, err
	}
	var missing []string
	sum := 0
	for _, item := range w.items {
		rating, ok := ratings[item.Skill]
		if !ok {
			missing = append(missing, item.Skill)
			continue
		}
		sum += rating * item.Percent
	}
	if len(missing) > 0 {
		return 0, apperror.Validation("missing ratings for %v", missing).WithDetails(missing)
	}
	return math.Round(float64(sum)) / 100, nil
}

// ValidateRatings checks every rating lies on the 1..5 scale.
func ValidateRatings(ratings map[string]int) error {
	if len(ratings) == 0 {
		return apperror.Validation("no skill ratings given")
	}
	skills := make([]string, 0, len(ratings))
	for skill := range ratings {
		skills = append(skills, skill)
	}
	sort.Strings(skills)
	for _, skill := range skills {
		if r := ratings[skill]; r < model.MinRating || r > model.MaxRating {
			return apperror.Validation("rating for %q is %d, want %d..%d", skill, r, model.MinRating, model.MaxRating)
		}
	}
	return nil
}
