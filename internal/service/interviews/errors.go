package interviews

import (
	"fmt"
	"strings"
	"time"

	"talentdesk/backend/internal/domain"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// NewValidationError lets transports report malformed requests with the same type the
// service uses.
func NewValidationError(msg string) error {
	return validationError(msg)
}

// ConflictError reports the bookings a proposed window collides with. Conflicts is empty
// when the collision was caught by the storage constraint rather than the check.
type ConflictError struct {
	Conflicts []domain.Interview
}

func (e *ConflictError) Error() string {
	if len(e.Conflicts) == 0 {
		return "interviewer is already booked for this time"
	}
	slots := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		slots = append(slots, describeSlot(c))
	}
	return "interviewer is already booked " + strings.Join(slots, ", ")
}

func describeSlot(iv domain.Interview) string {
	loc, err := domain.LoadLocation(iv.Timezone)
	if err != nil {
		loc = time.UTC
	}
	start := iv.StartAt.In(loc)
	end := iv.EndAt.In(loc)
	return fmt.Sprintf("on %s from %s to %s (%s)",
		start.Format(domain.DateLayout),
		start.Format(domain.TimeOfDayLayout),
		end.Format(domain.TimeOfDayLayout),
		loc.String(),
	)
}

type InvalidTransitionError struct {
	From   domain.Status
	To     domain.Status
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	msg := fmt.Sprintf("cannot move interview from %s to %s", e.From.Label(), e.To.Label())
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}
