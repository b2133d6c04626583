package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type InterviewType string

const (
	InterviewTypeTechnical  InterviewType = "technical"
	InterviewTypeHR         InterviewType = "hr"
	InterviewTypeBehavioral InterviewType = "behavioral"
	InterviewTypeFinal      InterviewType = "final"
	InterviewTypeGroup      InterviewType = "group"
)

var interviewTypeLabels = map[InterviewType]string{
	InterviewTypeTechnical:  "Technical",
	InterviewTypeHR:         "HR",
	InterviewTypeBehavioral: "Behavioral",
	InterviewTypeFinal:      "Final",
	InterviewTypeGroup:      "Group",
}

func ParseInterviewType(s string) (InterviewType, bool) {
	t := InterviewType(strings.ToLower(strings.TrimSpace(s)))
	_, ok := interviewTypeLabels[t]
	return t, ok
}

func (t InterviewType) Label() string {
	if l, ok := interviewTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

// Material is a reference to a file held by the document store.
type Material struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

type ReminderConfig struct {
	Enabled        bool     `json:"enabled"`
	OffsetsMinutes []int    `json:"offsets_minutes,omitempty"`
	Channels       []string `json:"channels,omitempty"`
}

// StatusChange is one entry of an interview's history. Reschedules keep the slot they
// moved away from.
type StatusChange struct {
	From          Status     `json:"from"`
	To            Status     `json:"to"`
	At            time.Time  `json:"at"`
	PreviousStart *time.Time `json:"previous_start,omitempty"`
	PreviousEnd   *time.Time `json:"previous_end,omitempty"`
}

type Interview struct {
	bun.BaseModel `bun:"table:interviews"`

	ID              uuid.UUID      `bun:"id,pk,type:uuid"`
	InterviewerID   string         `bun:"interviewer_id,notnull"`
	CandidateID     string         `bun:"candidate_id,notnull"`
	ApplicationID   string         `bun:"application_id,nullzero"`
	PositionID      string         `bun:"position_id,nullzero"`
	Type            InterviewType  `bun:"type,notnull"`
	Date            string         `bun:"interview_date,notnull"`
	StartTime       string         `bun:"start_time,notnull"`
	DurationMinutes int            `bun:"duration_minutes,notnull"`
	Timezone        string         `bun:"timezone,notnull"`
	StartAt         time.Time      `bun:"start_at,notnull"`
	EndAt           time.Time      `bun:"end_at,notnull"`
	MeetingLink     string         `bun:"meeting_link,nullzero"`
	Location        string         `bun:"location,nullzero"`
	Agenda          string         `bun:"agenda"`
	Instructions    string         `bun:"instructions"`
	Notes           string         `bun:"notes"`
	Materials       []Material     `bun:"materials,type:jsonb"`
	Reminders       ReminderConfig `bun:"reminders,type:jsonb"`
	Status          Status         `bun:"status,notnull"`
	RescheduleCount int            `bun:"reschedule_count,notnull"`
	History         []StatusChange `bun:"history,type:jsonb"`
	CreatedAt       time.Time      `bun:"created_at,notnull"`
	UpdatedAt       time.Time      `bun:"updated_at,notnull"`
}

// Window returns the occupied interval from the persisted instants.
func (iv Interview) Window() Window {
	return Window{Start: iv.StartAt.UTC(), Duration: iv.EndAt.Sub(iv.StartAt)}
}

// SetWindow copies the resolved instants onto the record.
func (iv *Interview) SetWindow(w Window) {
	iv.StartAt = w.Start.UTC()
	iv.EndAt = w.End().UTC()
}

// OccupiesTime is false only for cancelled bookings.
func (iv Interview) OccupiesTime() bool {
	return iv.Status != StatusCancelled
}

func (iv *Interview) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if iv.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			iv.ID = id
		}
		if iv.CreatedAt.IsZero() {
			iv.CreatedAt = now
		}
		if iv.UpdatedAt.IsZero() {
			iv.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		if iv.UpdatedAt.IsZero() {
			iv.UpdatedAt = now
		}
	}
	return nil
}
