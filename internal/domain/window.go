package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout      = "2006-01-02"
	TimeOfDayLayout = "15:04"

	MaxDurationMinutes = 24 * 60
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidTime     = errors.New("invalid start_time")
	ErrInvalidDuration = errors.New("invalid duration")
	ErrInvalidTimezone = errors.New("invalid timezone")

	// ErrSkippedTime is a wall-clock time that does not exist in the zone, such as one
	// inside a spring-forward gap.
	ErrSkippedTime = fmt.Errorf("%w: skipped by a clock change", ErrInvalidTime)
)

// Window is the half-open interval [Start, Start+Duration) a booking occupies.
type Window struct {
	Start    time.Time
	Duration time.Duration
}

// NewWindow resolves a calendar date, a wall-clock start time and a duration in the
// given IANA zone to an absolute window. An empty timezone means UTC.
func NewWindow(date, startTime string, durationMinutes int, timezone string) (Window, error) {
	if durationMinutes <= 0 || durationMinutes > MaxDurationMinutes {
		return Window{}, ErrInvalidDuration
	}
	loc, err := LoadLocation(timezone)
	if err != nil {
		return Window{}, err
	}
	d, err := time.Parse(DateLayout, strings.TrimSpace(date))
	if err != nil {
		return Window{}, ErrInvalidDate
	}
	tod, err := time.Parse(TimeOfDayLayout, strings.TrimSpace(startTime))
	if err != nil {
		return Window{}, ErrInvalidTime
	}

	start := time.Date(d.Year(), d.Month(), d.Day(), tod.Hour(), tod.Minute(), 0, 0, loc)
	if y, m, dd := start.Date(); y != d.Year() || m != d.Month() || dd != d.Day() ||
		start.Hour() != tod.Hour() || start.Minute() != tod.Minute() {
		return Window{}, ErrSkippedTime
	}
	return Window{
		Start:    start.UTC(),
		Duration: time.Duration(durationMinutes) * time.Minute,
	}, nil
}

func LoadLocation(timezone string) (*time.Location, error) {
	tz := strings.TrimSpace(timezone)
	if tz == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, ErrInvalidTimezone
	}
	return loc, nil
}

func (w Window) End() time.Time {
	return w.Start.Add(w.Duration)
}

// Overlaps reports whether two half-open windows intersect. Windows that only touch
// (one ends exactly when the other starts) do not overlap.
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End()) && other.Start.Before(w.End())
}

func (w Window) Equal(other Window) bool {
	return w.Start.Equal(other.Start) && w.Duration == other.Duration
}
