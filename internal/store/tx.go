package store

import (
	"sort"

	"github.com/fadilmartias/hiring-pipeline/internal/apperror"
	"github.com/fadilmartias/hiring-pipeline/internal/model"
	"github.com/google/uuid"
)

// Tx is the view a transaction callback works against. Reads see the
// transaction's own staged writes. Every getter returns a copy; changes
// become visible only through the matching Put.
type Tx struct {
	readOnly bool

	clients       *staged[model.Client]
	roles         *staged[model.Role]
	requirements  *staged[model.Requirement]
	tas           *staged[model.TA]
	candidates    *staged[model.Candidate]
	schedules     *staged[model.ScheduleRecord]
	feedback      *staged[model.FeedbackRecord]
	verifications *staged[model.VerificationSession]
}

func (tx *Tx) mustWrite() {
	if tx.readOnly {
		panic("store: write attempted in read-only view")
	}
}

func (tx *Tx) Client(id uuid.UUID) (model.Client, error) {
	if v, ok := tx.clients.get(id); ok {
		return v, nil
	}
	return model.Client{}, apperror.NotFound("client", id)
}

func (tx *Tx) Role(id uuid.UUID) (model.Role, error) {
	if v, ok := tx.roles.get(id); ok {
		return v, nil
	}
	return model.Role{}, apperror.NotFound("role", id)
}

func (tx *Tx) Requirement(id uuid.UUID) (model.Requirement, error) {
	if v, ok := tx.requirements.get(id); ok {
		return v, nil
	}
	return model.Requirement{}, apperror.NotFound("requirement", id)
}

func (tx *Tx) TA(id uuid.UUID) (model.TA, error) {
	if v, ok := tx.tas.get(id); ok {
		return v, nil
	}
	return model.TA{}, apperror.NotFound("ta", id)
}

func (tx *Tx) Candidate(id uuid.UUID) (model.Candidate, error) {
	if v, ok := tx.candidates.get(id); ok {
		return v, nil
	}
	return model.Candidate{}, apperror.NotFound("candidate", id)
}

func (tx *Tx) Schedule(id uuid.UUID) (model.ScheduleRecord, error) {
	if v, ok := tx.schedules.get(id); ok {
		return v, nil
	}
	return model.ScheduleRecord{}, apperror.NotFound("schedule", id)
}

func (tx *Tx) Feedback(id uuid.UUID) (model.FeedbackRecord, error) {
	if v, ok := tx.feedback.get(id); ok {
		return v, nil
	}
	return model.FeedbackRecord{}, apperror.NotFound("feedback", id)
}

func (tx *Tx) Verification(id uuid.UUID) (model.VerificationSession, error) {
	if v, ok := tx.verifications.get(id); ok {
		return v, nil
	}
	return model.VerificationSession{}, apperror.NotFound("verification session", id)
}

func (tx *Tx) PutClient(v model.Client) {
	tx.mustWrite()
	tx.clients.put(v.ID, v)
}

func (tx *Tx) PutRole(v model.Role) {
	tx.mustWrite()
	tx.roles.put(v.ID, v)
}

func (tx *Tx) PutRequirement(v model.Requirement) {
	tx.mustWrite()
	tx.requirements.put(v.ID, v)
}

func (tx *Tx) PutTA(v model.TA) {
	tx.mustWrite()
	tx.tas.put(v.ID, v)
}

func (tx *Tx) PutCandidate(v model.Candidate) {
	tx.mustWrite()
	tx.candidates.put(v.ID, v)
}

func (tx *Tx) PutSchedule(v model.ScheduleRecord) {
	tx.mustWrite()
	tx.schedules.put(v.ID, v)
}

func (tx *Tx) PutFeedback(v model.FeedbackRecord) {
	tx.mustWrite()
	tx.feedback.put(v.ID, v)
}

func (tx *Tx) PutVerification(v model.VerificationSession) {
	tx.mustWrite()
	tx.verifications.put(v.ID, v)
}

// Clients lists every client ordered by creation time.
func (tx *Tx) Clients() []model.Client {
	out := tx.clients.all()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Roles lists roles, optionally restricted to one client.
func (tx *Tx) Roles(clientID *uuid.UUID) []model.Role {
	var out []model.Role
	for _, r := range tx.roles.all() {
		if clientID == nil || r.ClientID == *clientID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Requirements lists requirements matching filter (nil matches all).
func (tx *Tx) Requirements(filter func(*model.Requirement) bool) []model.Requirement {
	var out []model.Requirement
	for _, r := range tx.requirements.all() {
		if filter == nil || filter(&r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (tx *Tx) TAs() []model.TA {
	out := tx.tas.all()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Candidates lists candidates matching filter (nil matches all).
func (tx *Tx) Candidates(filter func(*model.Candidate) bool) []model.Candidate {
	var out []model.Candidate
	for _, c := range tx.candidates.all() {
		if filter == nil || filter(&c) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// CandidatesFor lists the candidates of one requirement.
func (tx *Tx) CandidatesFor(requirementID uuid.UUID) []model.Candidate {
	return tx.Candidates(func(c *model.Candidate) bool { return c.RequirementID == requirementID })
}

// Schedules lists schedule records matching filter, oldest first.
func (tx *Tx) Schedules(filter func(*model.ScheduleRecord) bool) []model.ScheduleRecord {
	var out []model.ScheduleRecord
	for _, s := range tx.schedules.all() {
		if filter == nil || filter(&s) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// LatestSchedule returns the newest record for the (candidate, stage) pair.
func (tx *Tx) LatestSchedule(candidateID uuid.UUID, stage model.Stage) (model.ScheduleRecord, bool) {
	records := tx.Schedules(func(s *model.ScheduleRecord) bool {
		return s.CandidateID == candidateID && s.Stage == stage
	})
	if len(records) == 0 {
		return model.ScheduleRecord{}, false
	}
	return records[len(records)-1], true
}

// FeedbackFor lists every feedback record (amended ones included) of a
// schedule, oldest first.
func (tx *Tx) FeedbackFor(scheduleID uuid.UUID) []model.FeedbackRecord {
	return tx.FeedbackWhere(func(f *model.FeedbackRecord) bool { return f.ScheduleID == scheduleID })
}

func (tx *Tx) FeedbackWhere(filter func(*model.FeedbackRecord) bool) []model.FeedbackRecord {
	var out []model.FeedbackRecord
	for _, f := range tx.feedback.all() {
		if filter == nil || filter(&f) {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out
}

// CurrentFeedback returns the non-superseded feedback of a schedule.
func (tx *Tx) CurrentFeedback(scheduleID uuid.UUID) (model.FeedbackRecord, bool) {
	for _, f := range tx.FeedbackFor(scheduleID) {
		if f.Current() {
			return f, true
		}
	}
	return model.FeedbackRecord{}, false
}

// VerificationsFor lists a candidate's sessions, oldest first.
func (tx *Tx) VerificationsFor(candidateID uuid.UUID) []model.VerificationSession {
	var out []model.VerificationSession
	for _, v := range tx.verifications.all() {
		if v.CandidateID == candidateID {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// ActiveVerification returns the candidate's non-terminal session.
func (tx *Tx) ActiveVerification(candidateID uuid.UUID) (model.VerificationSession, bool) {
	for _, v := range tx.VerificationsFor(candidateID) {
		if !v.Status.Terminal() {
			return v, true
		}
	}
	return model.VerificationSession{}, false
}

// LatestVerification returns the candidate's newest session of any status.
func (tx *Tx) LatestVerification(candidateID uuid.UUID) (model.VerificationSession, bool) {
	sessions := tx.VerificationsFor(candidateID)
	if len(sessions) == 0 {
		return model.VerificationSession{}, false
	}
	return sessions[len(sessions)-1], true
}

func (tx *Tx) touchedRequirements() []uuid.UUID {
	seen := map[uuid.UUID]bool{}
	var out []uuid.UUID
	add := func(id uuid.UUID) {
		if id == uuid.Nil || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
	}
	candidateReq := func(candidateID uuid.UUID) {
		if c, ok := tx.candidates.get(candidateID); ok {
			add(c.RequirementID)
		}
	}

	for _, r := range tx.requirements.pending() {
		add(r.ID)
	}
	for _, c := range tx.candidates.pending() {
		add(c.RequirementID)
		if prev, ok := tx.candidates.original(c.ID); ok {
			add(prev.RequirementID)
		}
	}
	for _, t := range tx.tas.pending() {
		for _, id := range t.AssignedRequirementIDs {
			add(id)
		}
		if prev, ok := tx.tas.original(t.ID); ok {
			for _, id := range prev.AssignedRequirementIDs {
				add(id)
			}
		}
	}
	for _, s := range tx.schedules.pending() {
		candidateReq(s.CandidateID)
	}
	for _, f := range tx.feedback.pending() {
		candidateReq(f.CandidateID)
	}
	for _, v := range tx.verifications.pending() {
		candidateReq(v.CandidateID)
	}
	return out
}

func (tx *Tx) changes(touched []uuid.UUID) ChangeSet {
	return ChangeSet{
		Clients:        tx.clients.pending(),
		Roles:          tx.roles.pending(),
		Requirements:   tx.requirements.pending(),
		TAs:            tx.tas.pending(),
		Candidates:     tx.candidates.pending(),
		Schedules:      tx.schedules.pending(),
		Feedback:       tx.feedback.pending(),
		Verifications:  tx.verifications.pending(),
		RequirementIDs: touched,
	}
}

func (tx *Tx) apply() {
	tx.clients.apply()
	tx.roles.apply()
	tx.requirements.apply()
	tx.tas.apply()
	tx.candidates.apply()
	tx.schedules.apply()
	tx.feedback.apply()
	tx.verifications.apply()
}
