// Package enrich joins interviews with the portal's reference collections into display rows.
// A missing reference never drops a row; it degrades to a placeholder.
package enrich

import (
	"time"

	"github.com/google/uuid"

	"talentdesk/backend/internal/domain"
)

const (
	UnknownCandidate   = "Unknown Candidate"
	UnknownInterviewer = "Unknown Interviewer"
	UnknownPosition    = "Unknown Position"
)

// Lookups holds the reference entities available for a batch, keyed by id.
// Nil maps are valid and behave as empty.
type Lookups struct {
	Candidates   map[string]domain.Candidate
	Interviewers map[string]domain.Interviewer
	Applications map[string]domain.Application
	Positions    map[string]domain.Position
}

type CandidateView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Affiliation string `json:"affiliation,omitempty"`
}

type InterviewerView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Department string `json:"department,omitempty"`
}

type PositionView struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type ApplicationView struct {
	ID     string `json:"id"`
	Status string `json:"status,omitempty"`
}

type EnrichedInterview struct {
	ID              uuid.UUID             `json:"id"`
	Type            domain.InterviewType  `json:"type"`
	TypeLabel       string                `json:"typeLabel"`
	Date            string                `json:"date"`
	StartTime       string                `json:"startTime"`
	EndTime         string                `json:"endTime"`
	DurationMinutes int                   `json:"durationMinutes"`
	Timezone        string                `json:"timezone"`
	StartAt         time.Time             `json:"startAt"`
	EndAt           time.Time             `json:"endAt"`
	MeetingLink     string                `json:"meetingLink,omitempty"`
	Location        string                `json:"location,omitempty"`
	Agenda          string                `json:"agenda,omitempty"`
	Instructions    string                `json:"instructions,omitempty"`
	Notes           string                `json:"notes,omitempty"`
	Materials       []domain.Material     `json:"materials,omitempty"`
	Reminders       domain.ReminderConfig `json:"reminders"`
	Status          domain.Status         `json:"status"`
	EffectiveStatus domain.Status         `json:"effectiveStatus"`
	StatusLabel     string                `json:"statusLabel"`
	RescheduleCount int                   `json:"rescheduleCount"`
	History         []domain.StatusChange `json:"history,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`

	Candidate   CandidateView    `json:"candidate"`
	Interviewer InterviewerView  `json:"interviewer"`
	Position    *PositionView    `json:"position,omitempty"`
	Application *ApplicationView `json:"application,omitempty"`
}

func (e EnrichedInterview) Window() domain.Window {
	return domain.Window{Start: e.StartAt, Duration: e.EndAt.Sub(e.StartAt)}
}

// Derive sets the effective status as seen at now.
func (e *EnrichedInterview) Derive(now time.Time) {
	e.EffectiveStatus = domain.DeriveStatus(e.Status, e.Window(), now)
	e.StatusLabel = e.EffectiveStatus.Label()
}

// Enrich resolves iv's references against lk. The effective status starts equal to the
// stored one; call Derive to apply the clock.
func Enrich(iv domain.Interview, lk Lookups) EnrichedInterview {
	out := EnrichedInterview{
		ID:              iv.ID,
		Type:            iv.Type,
		TypeLabel:       iv.Type.Label(),
		Date:            iv.Date,
		StartTime:       iv.StartTime,
		EndTime:         displayEndTime(iv),
		DurationMinutes: iv.DurationMinutes,
		Timezone:        iv.Timezone,
		StartAt:         iv.StartAt.UTC(),
		EndAt:           iv.EndAt.UTC(),
		MeetingLink:     iv.MeetingLink,
		Location:        iv.Location,
		Agenda:          iv.Agenda,
		Instructions:    iv.Instructions,
		Notes:           iv.Notes,
		Materials:       iv.Materials,
		Reminders:       iv.Reminders,
		Status:          iv.Status,
		EffectiveStatus: iv.Status,
		StatusLabel:     iv.Status.Label(),
		RescheduleCount: iv.RescheduleCount,
		History:         iv.History,
		CreatedAt:       iv.CreatedAt,
		UpdatedAt:       iv.UpdatedAt,
	}

	out.Candidate = CandidateView{ID: iv.CandidateID, Name: UnknownCandidate}
	if c, ok := lk.Candidates[iv.CandidateID]; ok {
		out.Candidate = CandidateView{ID: c.ID, Name: c.Name, Email: c.Email, Affiliation: c.Affiliation}
	}

	out.Interviewer = InterviewerView{ID: iv.InterviewerID, Name: UnknownInterviewer}
	if i, ok := lk.Interviewers[iv.InterviewerID]; ok {
		out.Interviewer = InterviewerView{ID: i.ID, Name: i.Name, Email: i.Email, Department: i.Department}
	}

	positionID := iv.PositionID
	if iv.ApplicationID != "" {
		if a, ok := lk.Applications[iv.ApplicationID]; ok {
			out.Application = &ApplicationView{ID: a.ID, Status: a.Status}
			if positionID == "" {
				positionID = a.PositionID
			}
		}
	}

	if positionID != "" {
		out.Position = &PositionView{ID: positionID, Title: UnknownPosition}
		if p, ok := lk.Positions[positionID]; ok {
			out.Position.Title = p.Title
		}
	}

	return out
}

// PositionTitle is the title shown for the row, empty when it has no position.
func (e EnrichedInterview) PositionTitle() string {
	if e.Position == nil {
		return ""
	}
	return e.Position.Title
}

func displayEndTime(iv domain.Interview) string {
	loc, err := domain.LoadLocation(iv.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return iv.EndAt.In(loc).Format(domain.TimeOfDayLayout)
}
