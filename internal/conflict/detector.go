// Package conflict finds bookings that collide with a proposed interview window.
//
// The same FindConflicts call serves the advisory check (given the repository, no lock)
// and the commit-time gate (given the locked transaction).
package conflict

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"talentdesk/backend/internal/domain"
	"talentdesk/backend/internal/store"
)

// FindConflicts returns the interviewer's non-cancelled bookings whose window overlaps w,
// ignoring excludeID, ordered by start.
func FindConflicts(ctx context.Context, lister store.IntervalLister, interviewerID string, w domain.Window, excludeID uuid.UUID) ([]domain.Interview, error) {
	candidates, err := lister.ListByInterviewer(ctx, interviewerID, w.Start, w.End())
	if err != nil {
		return nil, err
	}
	return Overlapping(candidates, interviewerID, w, excludeID), nil
}

// Overlapping filters bookings in memory.
func Overlapping(bookings []domain.Interview, interviewerID string, w domain.Window, excludeID uuid.UUID) []domain.Interview {
	var out []domain.Interview
	for _, b := range bookings {
		if b.InterviewerID != interviewerID {
			continue
		}
		if excludeID != uuid.Nil && b.ID == excludeID {
			continue
		}
		if !b.OccupiesTime() {
			continue
		}
		if b.Window().Overlaps(w) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartAt.Before(out[j].StartAt)
	})
	return out
}
