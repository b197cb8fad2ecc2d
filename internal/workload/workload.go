// Package workload classifies TA capacity. Everything here is a pure function
// of TA state.
package workload

import (
	"github.com/fadilmartias/hiring-pipeline/internal/model"
	"github.com/google/uuid"
)

type Level string

const (
	LevelAvailable  Level = "available"
	LevelHigh       Level = "high"
	LevelOverloaded Level = "overloaded"
)

// Thresholds in percent. Exposed so presentation can draw the same bands.
const (
	HighThreshold       = 70.0
	OverloadedThreshold = 90.0
	CapacityLimit       = 100.0
)

var levelLabels = map[Level]string{
	LevelAvailable:  "Available",
	LevelHigh:       "High Load",
	LevelOverloaded: "Overloaded",
}

func (l Level) Label() string {
	return levelLabels[l]
}

// LoadPercentage is currentLoad / maxLoad * 100. A TA without capacity is
// treated as full.
func LoadPercentage(currentLoad, maxLoad int) float64 {
	if maxLoad <= 0 {
		return CapacityLimit
	}
	return float64(currentLoad*100) / float64(maxLoad)
}

// Classify maps a load percentage to its level.
func Classify(pct float64) Level {
	switch {
	case pct >= OverloadedThreshold:
		return LevelOverloaded
	case pct >= HighThreshold:
		return LevelHigh
	default:
		return LevelAvailable
	}
}

// CanAssign reports whether ta may take requirementID. Holding it already is
// always fine; otherwise the load after taking it must stay under capacity.
func CanAssign(ta model.TA, requirementID uuid.UUID) bool {
	if ta.Holds(requirementID) {
		return true
	}
	if !ta.Active {
		return false
	}
	return LoadPercentage(ta.CurrentLoad+1, ta.MaxLoad) < CapacityLimit
}

// Summary is the read model for one TA.
type Summary struct {
	TAID                   uuid.UUID   `json:"ta_id"`
	Name                   string      `json:"name"`
	CurrentLoad            int         `json:"current_load"`
	MaxLoad                int         `json:"max_load"`
	LoadPercentage         float64     `json:"load_percentage"`
	Level                  Level       `json:"level"`
	Label                  string      `json:"label"`
	EfficiencyScore        int         `json:"efficiency_score"`
	CanTakeMore            bool        `json:"can_take_more"`
	AssignedRequirementIDs []uuid.UUID `json:"assigned_requirement_ids"`
	Thresholds             Bands       `json:"thresholds"`
}

type Bands struct {
	High       float64 `json:"high"`
	Overloaded float64 `json:"overloaded"`
	Capacity   float64 `json:"capacity"`
}

// Summarize builds the read model.
func Summarize(ta model.TA) Summary {
	pct := LoadPercentage(ta.CurrentLoad, ta.MaxLoad)
	level := Classify(pct)
	return Summary{
		TAID:                   ta.ID,
		Name:                   ta.Name,
		CurrentLoad:            ta.CurrentLoad,
		MaxLoad:                ta.MaxLoad,
		LoadPercentage:         pct,
		Level:                  level,
		Label:                  level.Label(),
		EfficiencyScore:        ta.EfficiencyScore,
		CanTakeMore:            CanAssign(ta, uuid.Nil),
		AssignedRequirementIDs: append([]uuid.UUID(nil), ta.AssignedRequirementIDs...),
		Thresholds:             Bands{High: HighThreshold, Overloaded: OverloadedThreshold, Capacity: CapacityLimit},
	}
}
