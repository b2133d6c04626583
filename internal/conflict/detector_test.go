package conflict

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"talentdesk/backend/internal/domain"
)

type fakeLister struct {
	listFn func(ctx context.Context, interviewerID string, from, to time.Time) ([]domain.Interview, error)
}

func (f *fakeLister) ListByInterviewer(ctx context.Context, interviewerID string, from, to time.Time) ([]domain.Interview, error) {
	if f.listFn == nil {
		panic("ListByInterviewer not configured")
	}
	return f.listFn(ctx, interviewerID, from, to)
}

func booking(id string, interviewerID string, start time.Time, minutes int, status domain.Status) domain.Interview {
	iv := domain.Interview{
		ID:            uuid.MustParse(id),
		InterviewerID: interviewerID,
		Status:        status,
	}
	iv.SetWindow(domain.Window{Start: start, Duration: time.Duration(minutes) * time.Minute})
	return iv
}

func TestFindConflicts(t *testing.T) {
	base := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
	existing := []domain.Interview{
		booking("00000000-0000-0000-0000-000000000001", "m", base, 30, domain.StatusScheduled),
		booking("00000000-0000-0000-0000-000000000002", "m", base.Add(time.Hour), 30, domain.StatusCancelled),
		booking("00000000-0000-0000-0000-000000000003", "other", base, 30, domain.StatusScheduled),
	}

	var gotFrom, gotTo time.Time
	lister := &fakeLister{
		listFn: func(ctx context.Context, interviewerID string, from, to time.Time) ([]domain.Interview, error) {
			gotFrom, gotTo = from, to
			return existing, nil
		},
	}

	t.Run("overlap is reported", func(t *testing.T) {
		w := domain.Window{Start: base.Add(15 * time.Minute), Duration: 30 * time.Minute}
		got, err := FindConflicts(context.Background(), lister, "m", w, uuid.Nil)
		if err != nil {
			t.Fatalf("FindConflicts error: %v", err)
		}
		if len(got) != 1 || got[0].ID != existing[0].ID {
			t.Fatalf("conflicts = %v, want [%s]", got, existing[0].ID)
		}
		if !gotFrom.Equal(w.Start) || !gotTo.Equal(w.End()) {
			t.Fatalf("range = [%v, %v), want [%v, %v)", gotFrom, gotTo, w.Start, w.End())
		}
	})

	t.Run("boundary touch is not a conflict", func(t *testing.T) {
		w := domain.Window{Start: base.Add(30 * time.Minute), Duration: 30 * time.Minute}
		got, err := FindConflicts(context.Background(), lister, "m", w, uuid.Nil)
		if err != nil {
			t.Fatalf("FindConflicts error: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("len(conflicts) = %d, want 0", len(got))
		}
	})

	t.Run("cancelled bookings never occupy time", func(t *testing.T) {
		w := domain.Window{Start: base.Add(time.Hour), Duration: 30 * time.Minute}
		got, err := FindConflicts(context.Background(), lister, "m", w, uuid.Nil)
		if err != nil {
			t.Fatalf("FindConflicts error: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("len(conflicts) = %d, want 0", len(got))
		}
	})

	t.Run("excluded id does not conflict with itself", func(t *testing.T) {
		got, err := FindConflicts(context.Background(), lister, "m", existing[0].Window(), existing[0].ID)
		if err != nil {
			t.Fatalf("FindConflicts error: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("len(conflicts) = %d, want 0", len(got))
		}
	})
}

func TestFindConflicts_PropagatesListerError(t *testing.T) {
	boom := errors.New("boom")
	lister := &fakeLister{
		listFn: func(ctx context.Context, interviewerID string, from, to time.Time) ([]domain.Interview, error) {
			return nil, boom
		},
	}
	_, err := FindConflicts(context.Background(), lister, "m", domain.Window{Start: time.Now(), Duration: time.Minute}, uuid.Nil)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestOverlapping_SortsByStart(t *testing.T) {
	base := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	bookings := []domain.Interview{
		booking("00000000-0000-0000-0000-000000000011", "m", base.Add(2*time.Hour), 60, domain.StatusScheduled),
		booking("00000000-0000-0000-0000-000000000012", "m", base, 60, domain.StatusCompleted),
	}
	w := domain.Window{Start: base, Duration: 4 * time.Hour}
	got := Overlapping(bookings, "m", w, uuid.Nil)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if !got[0].StartAt.Before(got[1].StartAt) {
		t.Fatalf("not sorted: %v then %v", got[0].StartAt, got[1].StartAt)
	}
}
