package repository

import (
	"context"
	"fmt"

	"github.com/fadilmartias/hiring-pipeline/internal/model"
	"github.com/fadilmartias/hiring-pipeline/internal/store"
	"gorm.io/gorm"
)

// PipelineRepository mirrors committed store transactions into postgres.
// It implements store.Persister and loads the snapshot used by Hydrate.
type PipelineRepository struct {
	db *gorm.DB
}

func NewPipelineRepository(db *gorm.DB) *PipelineRepository {
	return &PipelineRepository{db}
}

// Migrate creates or updates every pipeline table.
func (r *PipelineRepository) Migrate() error {
	return r.db.AutoMigrate(
		&ClientRow{},
		&RoleRow{},
		&RequirementRow{},
		&TARow{},
		&CandidateRow{},
		&ScheduleRow{},
		&FeedbackRow{},
		&VerificationRow{},
		&AuditRow{},
	)
}

// ToRows converts a change set to table rows.
func ToRows(changes store.ChangeSet) Rows {
	return Rows{
		Clients:       mapRows(changes.Clients, clientRow),
		Roles:         mapRows(changes.Roles, roleRow),
		Requirements:  mapRows(changes.Requirements, requirementRow),
		TAs:           mapRows(changes.TAs, taRow),
		Candidates:    mapRows(changes.Candidates, candidateRow),
		Schedules:     mapRows(changes.Schedules, scheduleRow),
		Feedback:      mapRows(changes.Feedback, feedbackRow),
		Verifications: mapRows(changes.Verifications, verificationRow),
	}
}

// Persist upserts every row of one commit in a single database transaction.
func (r *PipelineRepository) Persist(ctx context.Context, changes store.ChangeSet) error {
	rows := ToRows(changes)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			table string
			save  func() error
		}{
			{"clients", func() error { return save(tx, rows.Clients) }},
			{"roles", func() error { return save(tx, rows.Roles) }},
			{"requirements", func() error { return save(tx, rows.Requirements) }},
			{"tas", func() error { return save(tx, rows.TAs) }},
			{"candidates", func() error { return save(tx, rows.Candidates) }},
			{"schedules", func() error { return save(tx, rows.Schedules) }},
			{"feedback", func() error { return save(tx, rows.Feedback) }},
			{"verification_sessions", func() error { return save(tx, rows.Verifications) }},
		}
		for _, step := range steps {
			if err := step.save(); err != nil {
				return fmt.Errorf("persist %s: %w", step.table, err)
			}
		}
		return nil
	})
}

func save[R any](tx *gorm.DB, rows []R) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.Save(&rows).Error
}

func (r *PipelineRepository) PersistAudit(ctx context.Context, entry model.AuditEntry) error {
	row := auditRow(entry)
	return r.db.WithContext(ctx).Create(&row).Error
}

// LoadAll reads the whole pipeline back in insertion order.
func (r *PipelineRepository) LoadAll(ctx context.Context) (store.ChangeSet, []model.AuditEntry, error) {
	db := r.db.WithContext(ctx)
	var (
		snapshot store.ChangeSet
		rows     Rows
		audit    []AuditRow
	)
	loads := []struct {
		table string
		dest  any
	}{
		{"clients", &rows.Clients},
		{"roles", &rows.Roles},
		{"requirements", &rows.Requirements},
		{"tas", &rows.TAs},
		{"candidates", &rows.Candidates},
		{"schedules", &rows.Schedules},
		{"feedback", &rows.Feedback},
		{"verification_sessions", &rows.Verifications},
	}
	for _, load := range loads {
		if err := db.Order("created_at").Find(load.dest).Error; err != nil {
			return store.ChangeSet{}, nil, fmt.Errorf("load %s: %w", load.table, err)
		}
	}
	if err := db.Order("at").Find(&audit).Error; err != nil {
		return store.ChangeSet{}, nil, fmt.Errorf("load audit_log: %w", err)
	}

	snapshot.Clients = payloads(rows.Clients, func(r ClientRow) model.Client { return r.Payload })
	snapshot.Roles = payloads(rows.Roles, func(r RoleRow) model.Role { return r.Payload })
	snapshot.Requirements = payloads(rows.Requirements, func(r RequirementRow) model.Requirement { return r.Payload })
	snapshot.TAs = payloads(rows.TAs, func(r TARow) model.TA { return r.Payload })
	snapshot.Candidates = payloads(rows.Candidates, func(r CandidateRow) model.Candidate { return r.Payload })
	snapshot.Schedules = payloads(rows.Schedules, func(r ScheduleRow) model.ScheduleRecord { return r.Payload })
	snapshot.Feedback = payloads(rows.Feedback, func(r FeedbackRow) model.FeedbackRecord { return r.Payload })
	snapshot.Verifications = payloads(rows.Verifications, func(r VerificationRow) model.VerificationSession { return r.Payload })
	return snapshot, payloads(audit, func(r AuditRow) model.AuditEntry { return r.Payload }), nil
}
