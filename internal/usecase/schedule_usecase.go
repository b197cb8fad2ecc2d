package usecase

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/fadilmartias/hiring-pipeline/internal/apperror"
	"github.com/fadilmartias/hiring-pipeline/internal/model"
	"github.com/fadilmartias/hiring-pipeline/internal/service"
	"github.com/fadilmartias/hiring-pipeline/internal/store"
	"github.com/google/uuid"
)

// ScheduleDetails are the caller supplied fields of an interview. On
// reschedule, zero values keep the current value.
type ScheduleDetails struct {
	Mode            model.ScheduleMode
	DateTime        *time.Time
	DurationMinutes int
	InterviewerID   string
	MeetingLink     string
	CandidateEmail  string
}

// Schedule books the interview for the candidate's current stage.
func (uc *PipelineUsecase) Schedule(ctx context.Context, candidateID uuid.UUID, stage model.Stage, d ScheduleDetails) (model.ScheduleRecord, error) {
	var out model.ScheduleRecord
	err := uc.store.Update(ctx, func(tx *store.Tx) error {
		c, err := tx.Candidate(candidateID)
		if err != nil {
			return err
		}
		if c.Archived() {
			return apperror.Validation("candidate is archived as %s", c.Outcome)
		}
		if stage != c.Stage {
			return apperror.Validation("candidate is in %s, cannot schedule %s", c.Stage, stage)
		}
		if stage.Gate() != model.GateInterview {
			return apperror.Validation("stage %s has no interview", stage)
		}
		if existing, ok := currentSchedule(tx, &c); ok {
			return apperror.Validation("an interview for %s already exists with status %s", stage, existing.Status).
				WithDetails(map[string]any{"schedule_id": existing.ID})
		}

		now := uc.now()
		rec := model.ScheduleRecord{
			ID:              uuid.New(),
			CandidateID:     c.ID,
			Stage:           stage,
			Visit:           c.Visit(),
			Mode:            d.Mode,
			DateTime:        d.DateTime,
			DurationMinutes: d.DurationMinutes,
			InterviewerID:   strings.TrimSpace(d.InterviewerID),
			MeetingLink:     strings.TrimSpace(d.MeetingLink),
			CandidateEmail:  strings.TrimSpace(d.CandidateEmail),
			Status:          model.ScheduleScheduled,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if rec.Mode == model.ModeExternal && rec.CandidateEmail == "" {
			rec.CandidateEmail = c.Contact.Email
		}
		if err := validateSchedule(&rec); err != nil {
			return err
		}
		if err := checkSlot(tx, &rec); err != nil {
			return err
		}
		tx.PutSchedule(rec)
		out = rec
		return nil
	})
	if err != nil {
		return model.ScheduleRecord{}, err
	}

	kind := service.NotifyInterviewScheduled
	if out.Mode == model.ModeExternal {
		kind = service.NotifyInterviewInvite
	}
	uc.notify(ctx, scheduleNotice(kind, out, uc.now()))
	uc.logger.Info("interview scheduled", "schedule_id", out.ID, "candidate_id", out.CandidateID, "stage", out.Stage, "mode", out.Mode)
	return out, nil
}

// StartInterview marks a scheduled interview as running.
func (uc *PipelineUsecase) StartInterview(ctx context.Context, scheduleID uuid.UUID) (model.ScheduleRecord, error) {
	return uc.updateSchedule(ctx, scheduleID, func(tx *store.Tx, rec *model.ScheduleRecord, now time.Time) error {
		if rec.Status != model.ScheduleScheduled {
			return apperror.Validation("cannot start an interview that is %s", rec.Status)
		}
		if rec.DateTime == nil {
			return apperror.Validation("interview has no booked slot yet")
		}
		rec.Status = model.ScheduleInProgress
		return nil
	})
}

// Reschedule changes time or people of a live interview. The record keeps
// its id and status.
func (uc *PipelineUsecase) Reschedule(ctx context.Context, scheduleID uuid.UUID, d ScheduleDetails) (model.ScheduleRecord, error) {
	rec, err := uc.updateSchedule(ctx, scheduleID, func(tx *store.Tx, rec *model.ScheduleRecord, now time.Time) error {
		if !rec.Status.Active() {
			return apperror.Validation("cannot reschedule an interview that is %s", rec.Status)
		}
		if d.Mode != "" {
			rec.Mode = d.Mode
		}
		if d.DateTime != nil {
			at := *d.DateTime
			rec.DateTime = &at
		}
		if d.DurationMinutes != 0 {
			rec.DurationMinutes = d.DurationMinutes
		}
		if v := strings.TrimSpace(d.InterviewerID); v != "" {
			rec.InterviewerID = v
		}
		if v := strings.TrimSpace(d.MeetingLink); v != "" {
			rec.MeetingLink = v
		}
		if v := strings.TrimSpace(d.CandidateEmail); v != "" {
			rec.CandidateEmail = v
		}
		if err := validateSchedule(rec); err != nil {
			return err
		}
		if err := checkSlot(tx, rec); err != nil {
			return err
		}
		rec.RescheduleCount++
		return nil
	})
	if err != nil {
		return model.ScheduleRecord{}, err
	}
	uc.notify(ctx, scheduleNotice(service.NotifyInterviewRescheduled, rec, uc.now()))
	return rec, nil
}

// BookExternalSlot stores the slot a candidate picked from a self-serve
// invite. It is the first booking, not a reschedule.
func (uc *PipelineUsecase) BookExternalSlot(ctx context.Context, scheduleID uuid.UUID, at time.Time, interviewerID string) (model.ScheduleRecord, error) {
	rec, err := uc.updateSchedule(ctx, scheduleID, func(tx *store.Tx, rec *model.ScheduleRecord, now time.Time) error {
		if rec.Mode != model.ModeExternal {
			return apperror.Validation("only external interviews are self-booked")
		}
		if rec.Status != model.ScheduleScheduled {
			return apperror.Validation("cannot book a slot for an interview that is %s", rec.Status)
		}
		if rec.DateTime != nil {
			return apperror.Validation("slot already booked, reschedule instead")
		}
		rec.DateTime = &at
		if v := strings.TrimSpace(interviewerID); v != "" {
			rec.InterviewerID = v
		}
		return checkSlot(tx, rec)
	})
	if err != nil {
		return model.ScheduleRecord{}, err
	}
	uc.notify(ctx, scheduleNotice(service.NotifyInterviewScheduled, rec, uc.now()))
	return rec, nil
}

func (uc *PipelineUsecase) Cancel(ctx context.Context, scheduleID uuid.UUID, reason string) (model.ScheduleRecord, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return model.ScheduleRecord{}, apperror.Validation("cancel reason is required")
	}
	rec, err := uc.updateSchedule(ctx, scheduleID, func(tx *store.Tx, rec *model.ScheduleRecord, now time.Time) error {
		if rec.Status.Terminal() {
			return apperror.Validation("cannot cancel an interview that is %s", rec.Status)
		}
		rec.Status = model.ScheduleCancelled
		rec.CancelReason = reason
		return nil
	})
	if err != nil {
		return model.ScheduleRecord{}, err
	}
	uc.notify(ctx, cancellationNotice(rec, uc.now()))
	return rec, nil
}

// MarkCompleted closes the interview and unlocks feedback.
func (uc *PipelineUsecase) MarkCompleted(ctx context.Context, scheduleID uuid.UUID) (model.ScheduleRecord, error) {
	return uc.updateSchedule(ctx, scheduleID, func(tx *store.Tx, rec *model.ScheduleRecord, now time.Time) error {
		if !rec.Status.Active() {
			return apperror.Validation("cannot complete an interview that is %s", rec.Status)
		}
		if rec.DateTime == nil {
			return apperror.Validation("interview has no booked slot")
		}
		rec.Status = model.ScheduleCompleted
		rec.CompletedAt = &now
		return nil
	})
}

// ScheduleStatus is the derived status of the newest record for the pair.
func (uc *PipelineUsecase) ScheduleStatus(candidateID uuid.UUID, stage model.Stage) (model.ScheduleStatus, error) {
	if !stage.IsValid() {
		return "", apperror.Validation("unknown stage %q", stage)
	}
	status := model.ScheduleNotScheduled
	err := uc.store.View(func(tx *store.Tx) error {
		if _, err := tx.Candidate(candidateID); err != nil {
			return err
		}
		if rec, ok := tx.LatestSchedule(candidateID, stage); ok {
			status = rec.Status
		}
		return nil
	})
	return status, err
}

// ListSchedules returns every interview record of a candidate, oldest first.
func (uc *PipelineUsecase) ListSchedules(candidateID uuid.UUID) ([]model.ScheduleRecord, error) {
	var out []model.ScheduleRecord
	err := uc.store.View(func(tx *store.Tx) error {
		if _, err := tx.Candidate(candidateID); err != nil {
			return err
		}
		out = tx.Schedules(func(s *model.ScheduleRecord) bool { return s.CandidateID == candidateID })
		return nil
	})
	return out, err
}

func (uc *PipelineUsecase) GetSchedule(scheduleID uuid.UUID) (model.ScheduleRecord, error) {
	var out model.ScheduleRecord
	err := uc.store.View(func(tx *store.Tx) error {
		var err error
		out, err = tx.Schedule(scheduleID)
		return err
	})
	return out, err
}

func (uc *PipelineUsecase) updateSchedule(ctx context.Context, scheduleID uuid.UUID, fn func(tx *store.Tx, rec *model.ScheduleRecord, now time.Time) error) (model.ScheduleRecord, error) {
	var out model.ScheduleRecord
	err := uc.store.Update(ctx, func(tx *store.Tx) error {
		rec, err := tx.Schedule(scheduleID)
		if err != nil {
			return err
		}
		now := uc.now()
		if err := fn(tx, &rec, now); err != nil {
			return err
		}
		rec.UpdatedAt = now
		tx.PutSchedule(rec)
		out = rec
		return nil
	})
	if err != nil {
		return model.ScheduleRecord{}, err
	}
	uc.logger.Info("interview updated", "schedule_id", out.ID, "status", out.Status, "reschedules", out.RescheduleCount)
	return out, nil
}

func validateSchedule(rec *model.ScheduleRecord) error {
	if !rec.Mode.IsValid() {
		return apperror.Validation("unknown schedule mode %q", rec.Mode)
	}
	if rec.DurationMinutes <= 0 {
		return apperror.Validation("duration must be positive")
	}
	switch rec.Mode {
	case model.ModeInternal:
		if rec.InterviewerID == "" {
			return apperror.Validation("internal interviews need an interviewer")
		}
		if rec.DateTime == nil {
			return apperror.Validation("internal interviews need a date and time")
		}
	case model.ModeExternal:
		if _, err := mail.ParseAddress(rec.CandidateEmail); err != nil {
			return apperror.Validation("external interviews need a valid candidate email")
		}
	}
	return nil
}

// checkSlot fails when the interviewer already holds an overlapping live
// interview other than rec itself.
func checkSlot(tx *store.Tx, rec *model.ScheduleRecord) error {
	if rec.InterviewerID == "" || rec.DateTime == nil {
		return nil
	}
	for _, other := range tx.Schedules(func(s *model.ScheduleRecord) bool {
		return s.ID != rec.ID && s.Status.Active()
	}) {
		if rec.Overlaps(&other) {
			return apperror.SlotConflict("interviewer %s is already booked at %s", rec.InterviewerID, other.DateTime.Format(time.RFC3339)).
				WithDetails(map[string]any{"conflicting_schedule_id": other.ID})
		}
	}
	return nil
}

func scheduleNotice(kind service.NotificationKind, rec model.ScheduleRecord, now time.Time) service.Notification {
	data := map[string]any{
		"mode":             rec.Mode,
		"duration_minutes": rec.DurationMinutes,
		"reschedule_count": rec.RescheduleCount,
	}
	if rec.DateTime != nil {
		data["date_time"] = rec.DateTime.Format(time.RFC3339)
	}
	if rec.MeetingLink != "" {
		data["meeting_link"] = rec.MeetingLink
	}
	if rec.InterviewerID != "" {
		data["interviewer_id"] = rec.InterviewerID
	}
	return service.Notification{
		Kind:        kind,
		CandidateID: rec.CandidateID,
		ScheduleID:  uuidPtr(rec.ID),
		Stage:       rec.Stage,
		Recipient:   rec.CandidateEmail,
		At:          now,
		Data:        data,
	}
}

func cancellationNotice(rec model.ScheduleRecord, now time.Time) service.Notification {
	n := scheduleNotice(service.NotifyInterviewCancelled, rec, now)
	n.Data["reason"] = rec.CancelReason
	return n
}
