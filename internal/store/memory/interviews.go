// Package memory is an in-process InterviewRepository. Bookings for one interviewer are
// serialized by a per-interviewer mutex; writes are staged and applied on commit.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"talentdesk/backend/internal/domain"
	"talentdesk/backend/internal/store"
)

type InterviewRepo struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]domain.Interview

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	now func() time.Time
}

func NewInterviewRepo() *InterviewRepo {
	return &InterviewRepo{
		rows:  make(map[uuid.UUID]domain.Interview),
		locks: make(map[string]*sync.Mutex),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *InterviewRepo) Get(ctx context.Context, id uuid.UUID) (domain.Interview, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	iv, ok := r.rows[id]
	if !ok {
		return domain.Interview{}, store.ErrNotFound
	}
	return clone(iv), nil
}

func (r *InterviewRepo) List(ctx context.Context) ([]domain.Interview, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Interview, 0, len(r.rows))
	for _, iv := range r.rows {
		out = append(out, clone(iv))
	}
	sortByStart(out)
	return out, nil
}

func (r *InterviewRepo) ListByInterviewer(ctx context.Context, interviewerID string, from, to time.Time) ([]domain.Interview, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listByInterviewerLocked(interviewerID, from, to, nil), nil
}

func (r *InterviewRepo) ListStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Interview, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Interview
	for _, iv := range r.rows {
		if !iv.StartAt.Before(from) && iv.StartAt.Before(to) {
			out = append(out, clone(iv))
		}
	}
	sortByStart(out)
	return out, nil
}

func (r *InterviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *InterviewRepo) InInterviewerTransaction(ctx context.Context, interviewerIDs []string, fn func(ctx context.Context, tx store.InterviewTx) error) error {
	ids := slices.Clone(interviewerIDs)
	sort.Strings(ids)
	ids = slices.Compact(ids)

	for _, id := range ids {
		l := r.lockFor(id)
		l.Lock()
		defer l.Unlock()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &interviewTx{repo: r, staged: make(map[uuid.UUID]domain.Interview)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return r.commit(tx)
}

func (r *InterviewRepo) lockFor(interviewerID string) *sync.Mutex {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()
	l, ok := r.locks[interviewerID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[interviewerID] = l
	}
	return l
}

func (r *InterviewRepo) commit(tx *interviewTx) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	merged := make(map[uuid.UUID]domain.Interview, len(r.rows)+len(tx.staged))
	for id, iv := range r.rows {
		merged[id] = iv
	}
	for id, iv := range tx.staged {
		merged[id] = iv
	}

	for id, iv := range tx.staged {
		_, exists := r.rows[id]
		if tx.inserted[id] && exists {
			return store.ErrConflict
		}
		if !tx.inserted[id] && !exists {
			return store.ErrNotFound
		}
		if !iv.OccupiesTime() {
			continue
		}
		w := iv.Window()
		for otherID, other := range merged {
			if otherID == id || other.InterviewerID != iv.InterviewerID || !other.OccupiesTime() {
				continue
			}
			if other.Window().Overlaps(w) {
				return store.ErrConflict
			}
		}
	}

	for id, iv := range tx.staged {
		r.rows[id] = iv
	}
	return nil
}

func (r *InterviewRepo) listByInterviewerLocked(interviewerID string, from, to time.Time, staged map[uuid.UUID]domain.Interview) []domain.Interview {
	var out []domain.Interview
	seen := make(map[uuid.UUID]struct{}, len(staged))
	for id, iv := range staged {
		seen[id] = struct{}{}
		if iv.InterviewerID == interviewerID && iv.StartAt.Before(to) && iv.EndAt.After(from) {
			out = append(out, clone(iv))
		}
	}
	for id, iv := range r.rows {
		if _, ok := seen[id]; ok {
			continue
		}
		if iv.InterviewerID == interviewerID && iv.StartAt.Before(to) && iv.EndAt.After(from) {
			out = append(out, clone(iv))
		}
	}
	sortByStart(out)
	return out
}

type interviewTx struct {
	repo     *InterviewRepo
	staged   map[uuid.UUID]domain.Interview
	inserted map[uuid.UUID]bool
}

func (t *interviewTx) Get(ctx context.Context, id uuid.UUID) (domain.Interview, error) {
	if iv, ok := t.staged[id]; ok {
		return clone(iv), nil
	}
	return t.repo.Get(ctx, id)
}

func (t *interviewTx) ListByInterviewer(ctx context.Context, interviewerID string, from, to time.Time) ([]domain.Interview, error) {
	t.repo.mu.RLock()
	defer t.repo.mu.RUnlock()
	return t.repo.listByInterviewerLocked(interviewerID, from, to, t.staged), nil
}

func (t *interviewTx) Insert(ctx context.Context, iv domain.Interview) (domain.Interview, error) {
	if iv.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.Interview{}, err
		}
		iv.ID = id
	}
	now := t.repo.now()
	if iv.CreatedAt.IsZero() {
		iv.CreatedAt = now
	}
	if iv.UpdatedAt.IsZero() {
		iv.UpdatedAt = now
	}
	if t.inserted == nil {
		t.inserted = make(map[uuid.UUID]bool)
	}
	t.inserted[iv.ID] = true
	t.staged[iv.ID] = clone(iv)
	return iv, nil
}

func (t *interviewTx) Update(ctx context.Context, iv domain.Interview) (domain.Interview, error) {
	if _, err := t.Get(ctx, iv.ID); err != nil {
		return domain.Interview{}, err
	}
	if iv.UpdatedAt.IsZero() {
		iv.UpdatedAt = t.repo.now()
	}
	t.staged[iv.ID] = clone(iv)
	return iv, nil
}

func clone(iv domain.Interview) domain.Interview {
	iv.Materials = slices.Clone(iv.Materials)
	iv.History = slices.Clone(iv.History)
	iv.Reminders.OffsetsMinutes = slices.Clone(iv.Reminders.OffsetsMinutes)
	iv.Reminders.Channels = slices.Clone(iv.Reminders.Channels)
	return iv
}

func sortByStart(ivs []domain.Interview) {
	sort.SliceStable(ivs, func(i, j int) bool {
		if ivs[i].StartAt.Equal(ivs[j].StartAt) {
			return ivs[i].ID.String() < ivs[j].ID.String()
		}
		return ivs[i].StartAt.Before(ivs[j].StartAt)
	})
}
