// Package events publishes interview domain events after a change has committed.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"talentdesk/backend/internal/domain"
)

const (
	TypeCreated       = "interview.created"
	TypeUpdated       = "interview.updated"
	TypeRescheduled   = "interview.rescheduled"
	TypeStatusChanged = "interview.status_changed"
	TypeDeleted       = "interview.deleted"
	TypeReminderDue   = "interview.reminder_due"
)

type Event struct {
	ID            uuid.UUID     `json:"id"`
	Type          string        `json:"type"`
	InterviewID   uuid.UUID     `json:"interviewId"`
	InterviewerID string        `json:"interviewerId"`
	CandidateID   string        `json:"candidateId"`
	Status        domain.Status `json:"status"`
	Start         time.Time     `json:"start"`
	End           time.Time     `json:"end"`
	OccurredAt    time.Time     `json:"occurredAt"`

	PreviousStatus domain.Status `json:"previousStatus,omitempty"`
	OffsetMinutes  int           `json:"offsetMinutes,omitempty"`
	Channels       []string      `json:"channels,omitempty"`
}

// New builds an event describing iv at the moment at.
func New(typ string, iv domain.Interview, at time.Time) Event {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return Event{
		ID:            id,
		Type:          typ,
		InterviewID:   iv.ID,
		InterviewerID: iv.InterviewerID,
		CandidateID:   iv.CandidateID,
		Status:        iv.Status,
		Start:         iv.StartAt.UTC(),
		End:           iv.EndAt.UTC(),
		OccurredAt:    at.UTC(),
	}
}

func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Noop drops every event. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(ctx context.Context, ev Event) error { return nil }
func (Noop) Close() error                                { return nil }
