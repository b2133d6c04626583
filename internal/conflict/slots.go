package conflict

import (
	"time"

	"talentdesk/backend/internal/domain"
)

// AvailableSlots returns start times within [from, to), stepping by step, where a booking of
// length d would not overlap any busy window. Starts before now are skipped.
func AvailableSlots(from, to time.Time, d, step time.Duration, busy []domain.Window, now time.Time) []time.Time {
	if d <= 0 || step <= 0 {
		return nil
	}
	if !to.After(from) || from.Add(d).After(to) {
		return nil
	}

	var slots []time.Time
	for t := from; !t.Add(d).After(to); t = t.Add(step) {
		if t.Before(now) {
			continue
		}
		if !overlapsAny(domain.Window{Start: t, Duration: d}, busy) {
			slots = append(slots, t)
		}
	}
	return slots
}

// BusyWindows returns the windows of bookings that occupy time.
func BusyWindows(bookings []domain.Interview) []domain.Window {
	out := make([]domain.Window, 0, len(bookings))
	for _, b := range bookings {
		if b.OccupiesTime() {
			out = append(out, b.Window())
		}
	}
	return out
}

func overlapsAny(w domain.Window, busy []domain.Window) bool {
	for _, b := range busy {
		if w.Overlaps(b) {
			return true
		}
	}
	return false
}
