package interviews

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"talentdesk/backend/internal/domain"
)

// Input carries every editable field of an interview. Create and Update share it.
type Input struct {
	InterviewerID   string          `json:"interviewerId" validate:"required"`
	CandidateID     string          `json:"candidateId" validate:"required"`
	ApplicationID   string          `json:"applicationId,omitempty"`
	PositionID      string          `json:"positionId,omitempty"`
	Type            string          `json:"type,omitempty"`
	Date            string          `json:"date" validate:"required"`
	StartTime       string          `json:"startTime" validate:"required"`
	DurationMinutes int             `json:"durationMinutes" validate:"gt=0,lte=1440"`
	Timezone        string          `json:"timezone,omitempty"`
	MeetingLink     string          `json:"meetingLink,omitempty" validate:"omitempty,url"`
	Location        string          `json:"location,omitempty" validate:"max=500"`
	Agenda          string          `json:"agenda,omitempty" validate:"max=10000"`
	Instructions    string          `json:"instructions,omitempty" validate:"max=10000"`
	Notes           string          `json:"notes,omitempty" validate:"max=10000"`
	Materials       []MaterialInput `json:"materials,omitempty" validate:"max=50,dive"`
	Reminders       ReminderInput   `json:"reminders"`
}

type MaterialInput struct {
	Name string `json:"name" validate:"required"`
	URL  string `json:"url" validate:"required,url"`
	Size int64  `json:"size" validate:"gte=0"`
}

type ReminderInput struct {
	Enabled        bool     `json:"enabled"`
	OffsetsMinutes []int    `json:"offsetsMinutes,omitempty" validate:"max=10,dive,gt=0,lte=43200"`
	Channels       []string `json:"channels,omitempty" validate:"dive,oneof=email sms push in_app"`
}

// WindowInput is a new slot for a reschedule.
type WindowInput struct {
	Date            string `json:"date" validate:"required"`
	StartTime       string `json:"startTime" validate:"required"`
	DurationMinutes int    `json:"durationMinutes" validate:"gt=0,lte=1440"`
	Timezone        string `json:"timezone,omitempty"`
}

// StatusChange requests a stored status. Reschedule is required when Status is rescheduled.
type StatusChange struct {
	Status     string       `json:"status" validate:"required"`
	Reschedule *WindowInput `json:"reschedule,omitempty"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkStruct runs struct validation and turns the first failure into a ValidationError.
func checkStruct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return validationError(err.Error())
	}
	return validationError(describeFieldError(verrs[0]))
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "url":
		return field + " must be a valid URL"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	}
	return field + " is invalid"
}

// windowError maps domain window errors onto caller-facing messages.
func windowError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidDate):
		return validationError("date must be formatted YYYY-MM-DD")
	case errors.Is(err, domain.ErrSkippedTime):
		return validationError("startTime does not exist in the given timezone on that date")
	case errors.Is(err, domain.ErrInvalidTime):
		return validationError("startTime must be formatted HH:MM")
	case errors.Is(err, domain.ErrInvalidDuration):
		return validationError("durationMinutes must be between 1 and 1440")
	case errors.Is(err, domain.ErrInvalidTimezone):
		return validationError("timezone must be an IANA zone name")
	}
	return err
}

func (w WindowInput) resolve() (domain.Window, error) {
	win, err := domain.NewWindow(w.Date, w.StartTime, w.DurationMinutes, w.Timezone)
	if err != nil {
		return domain.Window{}, windowError(err)
	}
	return win, nil
}

func (in Input) window() WindowInput {
	return WindowInput{Date: in.Date, StartTime: in.StartTime, DurationMinutes: in.DurationMinutes, Timezone: in.Timezone}
}

func (in Input) materials() []domain.Material {
	if len(in.Materials) == 0 {
		return nil
	}
	out := make([]domain.Material, 0, len(in.Materials))
	for _, m := range in.Materials {
		out = append(out, domain.Material{Name: strings.TrimSpace(m.Name), URL: strings.TrimSpace(m.URL), Size: m.Size})
	}
	return out
}

func (in Input) reminders() domain.ReminderConfig {
	return domain.ReminderConfig{
		Enabled:        in.Reminders.Enabled,
		OffsetsMinutes: in.Reminders.OffsetsMinutes,
		Channels:       in.Reminders.Channels,
	}
}
