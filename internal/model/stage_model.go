package model

// Stage is one step of the fixed candidate interview sequence.
type Stage string

const (
	StageApplication            Stage = "application"
	StagePhoneScreening         Stage = "phone-screening"
	StageTechnical              Stage = "technical"
	StageClientInterview        Stage = "client-interview"
	StageBackgroundVerification Stage = "background-verification"
	StageFinalReview            Stage = "final-review"
)

// StageGate describes what must be true before a candidate may leave a stage.
type StageGate string

const (
	GateNone         StageGate = "none"
	GateInterview    StageGate = "interview"
	GateVerification StageGate = "verification"
)

// StageInfo is one row of the pipeline table.
type StageInfo struct {
	Stage Stage     `json:"stage"`
	Label string    `json:"label"`
	Gate  StageGate `json:"gate"`
	Order int       `json:"order"`
}

// Pipeline is the single ordered stage table shared by the state machine and
// every presentation layer.
var Pipeline = []StageInfo{
	{Stage: StageApplication, Label: "Application", Gate: GateNone, Order: 0},
	{Stage: StagePhoneScreening, Label: "Phone Screening", Gate: GateInterview, Order: 1},
	{Stage: StageTechnical, Label: "Technical Interview", Gate: GateInterview, Order: 2},
	{Stage: StageClientInterview, Label: "Client Interview", Gate: GateInterview, Order: 3},
	{Stage: StageBackgroundVerification, Label: "Background Verification", Gate: GateVerification, Order: 4},
	{Stage: StageFinalReview, Label: "Final Review", Gate: GateInterview, Order: 5},
}

// IsValid reports whether s is one of the pipeline stages.
func (s Stage) IsValid() bool {
	_, ok := s.Info()
	return ok
}

func (s Stage) String() string {
	return string(s)
}

// Info looks up the stage row.
func (s Stage) Info() (StageInfo, bool) {
	for _, info := range Pipeline {
		if info.Stage == s {
			return info, true
		}
	}
	return StageInfo{}, false
}

// Order returns the position of the stage in the pipeline, or -1.
func (s Stage) Order() int {
	info, ok := s.Info()
	if !ok {
		return -1
	}
	return info.Order
}

// Label returns the display label for the stage.
func (s Stage) Label() string {
	info, _ := s.Info()
	return info.Label
}

// Gate returns how the stage is gated.
func (s Stage) Gate() StageGate {
	info, ok := s.Info()
	if !ok {
		return GateNone
	}
	return info.Gate
}

// Next returns the stage following s. ok is false for final-review.
func (s Stage) Next() (Stage, bool) {
	order := s.Order()
	if order < 0 || order+1 >= len(Pipeline) {
		return "", false
	}
	return Pipeline[order+1].Stage, true
}

// IsFinal reports whether s is the last pipeline stage.
func (s Stage) IsFinal() bool {
	return s == Pipeline[len(Pipeline)-1].Stage
}

// AtLeast reports whether s is at or beyond other in pipeline order.
func (s Stage) AtLeast(other Stage) bool {
	return s.Order() >= other.Order()
}
