package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"talentdesk/backend/internal/conflict"
	"talentdesk/backend/internal/domain"
	"talentdesk/backend/internal/store"
)

func newInterview(interviewerID string, start time.Time, minutes int) domain.Interview {
	iv := domain.Interview{
		InterviewerID:   interviewerID,
		CandidateID:     "c1",
		Type:            domain.InterviewTypeTechnical,
		DurationMinutes: minutes,
		Timezone:        "UTC",
		Status:          domain.StatusScheduled,
	}
	iv.SetWindow(domain.Window{Start: start, Duration: time.Duration(minutes) * time.Minute})
	return iv
}

func insert(t *testing.T, repo *InterviewRepo, iv domain.Interview) domain.Interview {
	t.Helper()
	var out domain.Interview
	err := repo.InInterviewerTransaction(context.Background(), []string{iv.InterviewerID}, func(ctx context.Context, tx store.InterviewTx) error {
		created, err := tx.Insert(ctx, iv)
		out = created
		return err
	})
	if err != nil {
		t.Fatalf("insert error: %v", err)
	}
	return out
}

func TestInterviewRepo_InsertGetDelete(t *testing.T) {
	repo := NewInterviewRepo()
	start := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)

	created := insert(t, repo, newInterview("m", start, 30))
	if created.ID == uuid.Nil {
		t.Fatalf("expected id to be assigned")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps to be set")
	}

	got, err := repo.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.InterviewerID != "m" {
		t.Fatalf("interviewer = %q, want %q", got.InterviewerID, "m")
	}

	if err := repo.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := repo.Get(context.Background(), created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Get after delete err = %v, want %v", err, store.ErrNotFound)
	}
	if err := repo.Delete(context.Background(), created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second Delete err = %v, want %v", err, store.ErrNotFound)
	}
}

func TestInterviewRepo_UpdateKeepsCallerTimestamp(t *testing.T) {
	repo := NewInterviewRepo()
	start := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
	created := insert(t, repo, newInterview("m", start, 30))

	stamp := time.Date(2030, 1, 2, 3, 4, 0, 0, time.UTC)
	err := repo.InInterviewerTransaction(context.Background(), []string{"m"}, func(ctx context.Context, tx store.InterviewTx) error {
		iv := created
		iv.Notes = "moved rooms"
		iv.UpdatedAt = stamp
		_, err := tx.Update(ctx, iv)
		return err
	})
	if err != nil {
		t.Fatalf("update error: %v", err)
	}

	got, err := repo.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !got.UpdatedAt.Equal(stamp) {
		t.Fatalf("updated_at = %v, want %v", got.UpdatedAt, stamp)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, created.CreatedAt)
	}
}

func TestInterviewRepo_RollsBackOnError(t *testing.T) {
	repo := NewInterviewRepo()
	boom := errors.New("boom")
	start := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)

	err := repo.InInterviewerTransaction(context.Background(), []string{"m"}, func(ctx context.Context, tx store.InterviewTx) error {
		if _, err := tx.Insert(ctx, newInterview("m", start, 30)); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	rows, _ := repo.List(context.Background())
	if len(rows) != 0 {
		t.Fatalf("len(rows) = %d, want 0", len(rows))
	}
}

func TestInterviewRepo_CommitRejectsOverlap(t *testing.T) {
	repo := NewInterviewRepo()
	start := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
	insert(t, repo, newInterview("m", start, 30))

	err := repo.InInterviewerTransaction(context.Background(), []string{"m"}, func(ctx context.Context, tx store.InterviewTx) error {
		_, err := tx.Insert(ctx, newInterview("m", start.Add(15*time.Minute), 30))
		return err
	})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("err = %v, want %v", err, store.ErrConflict)
	}

	cancelled := newInterview("m", start, 30)
	cancelled.Status = domain.StatusCancelled
	insert(t, repo, cancelled)
}

func TestInterviewRepo_ListByInterviewerRange(t *testing.T) {
	repo := NewInterviewRepo()
	start := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
	insert(t, repo, newInterview("m", start, 30))
	insert(t, repo, newInterview("m", start.Add(2*time.Hour), 30))
	insert(t, repo, newInterview("x", start, 30))

	rows, err := repo.ListByInterviewer(context.Background(), "m", start.Add(30*time.Minute), start.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("ListByInterviewer error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if !rows[0].StartAt.Equal(start.Add(2 * time.Hour)) {
		t.Fatalf("start = %v", rows[0].StartAt)
	}

	upcoming, err := repo.ListStartingBetween(context.Background(), start, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("ListStartingBetween error: %v", err)
	}
	if len(upcoming) != 2 {
		t.Fatalf("len(upcoming) = %d, want 2", len(upcoming))
	}
}

func TestInterviewRepo_ConcurrentBookingsForSameSlot(t *testing.T) {
	repo := NewInterviewRepo()
	start := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
	w := domain.Window{Start: start, Duration: 30 * time.Minute}

	const writers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.InInterviewerTransaction(context.Background(), []string{"m"}, func(ctx context.Context, tx store.InterviewTx) error {
				hits, err := conflict.FindConflicts(ctx, tx, "m", w, uuid.Nil)
				if err != nil {
					return err
				}
				if len(hits) > 0 {
					return store.ErrConflict
				}
				_, err = tx.Insert(ctx, newInterview("m", start, 30))
				return err
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Fatalf("succeeded = %d, want 1", succeeded)
	}
	rows, _ := repo.List(context.Background())
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
}
