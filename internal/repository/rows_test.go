package repository

import (
	"testing"
	"time"

	"github.com/fadilmartias/hiring-pipeline/internal/model"
	"github.com/fadilmartias/hiring-pipeline/internal/store"
	"github.com/google/uuid"
)

func TestToRowsCopiesIndexedColumns(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.May, 4, 8, 0, 0, 0, time.UTC)
	taID := uuid.New()
	req := model.Requirement{
		ID:         uuid.New(),
		RoleID:     uuid.New(),
		Status:     model.RequirementOpen,
		AssignedTA: &taID,
		DueDate:    now.AddDate(0, 1, 0),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	cand := model.Candidate{
		ID:            uuid.New(),
		RequirementID: req.ID,
		Stage:         model.StageTechnical,
		Outcome:       model.OutcomeNone,
		CreatedAt:     now,
	}
	at := now.Add(time.Hour)
	sched := model.ScheduleRecord{
		ID:            uuid.New(),
		CandidateID:   cand.ID,
		Stage:         model.StageTechnical,
		Status:        model.ScheduleScheduled,
		InterviewerID: "int-1",
		DateTime:      &at,
		CreatedAt:     now,
	}
	fb := model.FeedbackRecord{ID: uuid.New(), ScheduleID: sched.ID, CandidateID: cand.ID, SubmittedAt: at}

	rows := ToRows(store.ChangeSet{
		Requirements: []model.Requirement{req},
		Candidates:   []model.Candidate{cand},
		Schedules:    []model.ScheduleRecord{sched},
		Feedback:     []model.FeedbackRecord{fb},
	})

	if len(rows.Clients) != 0 || len(rows.TAs) != 0 {
		t.Fatalf("expected untouched tables to stay empty")
	}
	if r := rows.Requirements[0]; r.Status != "open" || r.AssignedTA == nil || *r.AssignedTA != taID || r.Payload.ID != req.ID {
		t.Fatalf("unexpected requirement row: %+v", r)
	}
	if r := rows.Candidates[0]; r.Stage != "technical" || r.RequirementID != req.ID || !r.CreatedAt.Equal(now) {
		t.Fatalf("unexpected candidate row: %+v", r)
	}
	if r := rows.Schedules[0]; r.InterviewerID != "int-1" || r.Status != "scheduled" || !r.DateTime.Equal(at) {
		t.Fatalf("unexpected schedule row: %+v", r)
	}
	if r := rows.Feedback[0]; !r.CreatedAt.Equal(at) || r.ScheduleID != sched.ID {
		t.Fatalf("feedback rows are ordered by submission time: %+v", r)
	}
}

func TestAuditRowKeepsFailureFlag(t *testing.T) {
	t.Parallel()

	cid := uuid.New()
	row := auditRow(model.AuditEntry{ID: uuid.New(), Action: model.AuditReopen, CandidateID: &cid, Error: "validation: justification is required"})
	if row.Success || row.Action != "reopen" || row.CandidateID == nil || *row.CandidateID != cid {
		t.Fatalf("unexpected audit row: %+v", row)
	}
	if row.Payload.Error == "" {
		t.Fatalf("payload must keep the error text")
	}
}
