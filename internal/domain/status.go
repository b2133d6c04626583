// Package domain holds the interview booking model, its time window and lifecycle.
//
// Interview lifecycle:
//
//	scheduled ──► completed
//	    │  └─────► cancelled
//	    ├────────► no_show
//	    └────────► rescheduled
//
// in_progress is never stored: it is what a scheduled interview looks like while its
// window is running. completed, cancelled, no_show and rescheduled are terminal.
package domain

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusScheduled   Status = "scheduled"
	StatusInProgress  Status = "in_progress"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
	StatusRescheduled Status = "rescheduled"
	StatusNoShow      Status = "no_show"
)

var validTransitions = map[Status][]Status{
	StatusScheduled:  {StatusCompleted, StatusCancelled, StatusNoShow, StatusRescheduled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

var statusLabels = map[Status]string{
	StatusScheduled:   "Scheduled",
	StatusInProgress:  "In Progress",
	StatusCompleted:   "Completed",
	StatusCancelled:   "Cancelled",
	StatusRescheduled: "Rescheduled",
	StatusNoShow:      "No Show",
}

// ParseStatus accepts both the stored form ("no_show") and the label ("No Show").
func ParseStatus(s string) (Status, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	st := Status(norm)
	if _, ok := statusLabels[st]; ok {
		return st, nil
	}
	return "", fmt.Errorf("unknown interview status %q", s)
}

func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s Status) Terminal() bool {
	_, ok := validTransitions[s]
	return !ok
}

// Storable reports whether s may be written to the status column.
func (s Status) Storable() bool {
	_, known := statusLabels[s]
	return known && s != StatusInProgress
}

// IsTransitionAllowed returns true when moving from → to is permitted.
func IsTransitionAllowed(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// DeriveStatus maps a stored status to the one readers should see at now. Only a
// scheduled interview moves with the clock.
func DeriveStatus(stored Status, w Window, now time.Time) Status {
	if stored != StatusScheduled {
		return stored
	}
	switch {
	case now.After(w.End()):
		return StatusCompleted
	case w.Start.Before(now):
		return StatusInProgress
	default:
		return StatusScheduled
	}
}
