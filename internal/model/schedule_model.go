package model

import (
	"time"

	"github.com/google/uuid"
)

type ScheduleMode string

const (
	ModeInternal ScheduleMode = "internal"
	ModeExternal ScheduleMode = "external"
)

func (m ScheduleMode) IsValid() bool {
	return m == ModeInternal || m == ModeExternal
}

type ScheduleStatus string

const (
	ScheduleNotScheduled ScheduleStatus = "not-scheduled"
	ScheduleScheduled    ScheduleStatus = "scheduled"
	ScheduleInProgress   ScheduleStatus = "in-progress"
	ScheduleCompleted    ScheduleStatus = "completed"
	ScheduleCancelled    ScheduleStatus = "cancelled"
)

// Terminal reports whether no further transition is possible.
func (s ScheduleStatus) Terminal() bool {
	return s == ScheduleCompleted || s == ScheduleCancelled
}

// Active reports whether the record currently holds an interviewer slot.
func (s ScheduleStatus) Active() bool {
	return s == ScheduleScheduled || s == ScheduleInProgress
}

type ScheduleRecord struct {
	ID              uuid.UUID      `json:"id"`
	CandidateID     uuid.UUID      `json:"candidate_id"`
	Stage           Stage          `json:"stage"`
	Visit           int            `json:"visit"`
	Mode            ScheduleMode   `json:"mode"`
	DateTime        *time.Time     `json:"date_time,omitempty"`
	DurationMinutes int            `json:"duration_minutes"`
	InterviewerID   string         `json:"interviewer_id,omitempty"`
	MeetingLink     string         `json:"meeting_link,omitempty"`
	CandidateEmail  string         `json:"candidate_email,omitempty"`
	Status          ScheduleStatus `json:"status"`
	RescheduleCount int            `json:"reschedule_count"`
	CancelReason    string         `json:"cancel_reason,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
}

// Window returns the occupied interval. ok is false while the time is unknown.
func (s *ScheduleRecord) Window() (start, end time.Time, ok bool) {
	if s.DateTime == nil {
		return time.Time{}, time.Time{}, false
	}
	start = *s.DateTime
	return start, start.Add(time.Duration(s.DurationMinutes) * time.Minute), true
}

// Overlaps reports whether both records hold the same interviewer in
// intersecting windows.
func (s *ScheduleRecord) Overlaps(other *ScheduleRecord) bool {
	if s.InterviewerID == "" || s.InterviewerID != other.InterviewerID {
		return false
	}
	aStart, aEnd, ok := s.Window()
	if !ok {
		return false
	}
	bStart, bEnd, ok := other.Window()
	if !ok {
		return false
	}
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

func (s ScheduleRecord) Clone() ScheduleRecord {
	out := s
	out.DateTime = clonePtr(s.DateTime)
	out.CompletedAt = clonePtr(s.CompletedAt)
	return out
}
