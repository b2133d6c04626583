package postgres

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"talentdesk/backend/internal/domain"
	"talentdesk/backend/internal/store"
)

const noOverlapConstraint = "interviews_no_overlap"

type InterviewRepo struct {
	db *bun.DB
}

func NewInterviewRepo(db *bun.DB) *InterviewRepo {
	return &InterviewRepo{db: db}
}

type interviewTx struct {
	tx bun.Tx
}

func (r *InterviewRepo) Get(ctx context.Context, id uuid.UUID) (domain.Interview, error) {
	return getInterview(ctx, r.db, id, false)
}

func (r *InterviewRepo) List(ctx context.Context) ([]domain.Interview, error) {
	var rows []domain.Interview
	err := r.db.NewSelect().
		Model(&rows).
		OrderExpr("start_at ASC, id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *InterviewRepo) ListByInterviewer(ctx context.Context, interviewerID string, from, to time.Time) ([]domain.Interview, error) {
	return listByInterviewer(ctx, r.db, interviewerID, from, to)
}

func (r *InterviewRepo) ListStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Interview, error) {
	var rows []domain.Interview
	err := r.db.NewSelect().
		Model(&rows).
		Where("start_at >= ?", from).
		Where("start_at < ?", to).
		OrderExpr("start_at ASC, id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *InterviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*domain.Interview)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *InterviewRepo) InInterviewerTransaction(ctx context.Context, interviewerIDs []string, fn func(ctx context.Context, tx store.InterviewTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, id := range lockOrder(interviewerIDs) {
			if err := lockInterviewerCalendar(ctx, tx, id); err != nil {
				return err
			}
		}
		return fn(ctx, interviewTx{tx: tx})
	})
}

// lockOrder sorts and dedupes ids so two transactions locking the same pair cannot deadlock.
func lockOrder(interviewerIDs []string) []string {
	ids := slices.Clone(interviewerIDs)
	sort.Strings(ids)
	return slices.Compact(ids)
}

func lockInterviewerCalendar(ctx context.Context, tx bun.Tx, interviewerID string) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", "interviewer:"+interviewerID).Exec(ctx)
	return err
}

func (t interviewTx) Get(ctx context.Context, id uuid.UUID) (domain.Interview, error) {
	return getInterview(ctx, t.tx, id, true)
}

func (t interviewTx) ListByInterviewer(ctx context.Context, interviewerID string, from, to time.Time) ([]domain.Interview, error) {
	return listByInterviewer(ctx, t.tx, interviewerID, from, to)
}

func (t interviewTx) Insert(ctx context.Context, iv domain.Interview) (domain.Interview, error) {
	m := iv
	if _, err := t.tx.NewInsert().Model(&m).Exec(ctx); err != nil {
		return domain.Interview{}, mapWriteError(err)
	}
	return m, nil
}

func (t interviewTx) Update(ctx context.Context, iv domain.Interview) (domain.Interview, error) {
	m := iv
	res, err := t.tx.NewUpdate().
		Model(&m).
		ExcludeColumn("id", "created_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return domain.Interview{}, mapWriteError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Interview{}, err
	}
	if affected == 0 {
		return domain.Interview{}, store.ErrNotFound
	}
	return m, nil
}

func getInterview(ctx context.Context, db bun.IDB, id uuid.UUID, forUpdate bool) (domain.Interview, error) {
	var iv domain.Interview
	q := db.NewSelect().
		Model(&iv).
		Where("id = ?", id).
		Limit(1)
	if forUpdate {
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Interview{}, store.ErrNotFound
		}
		return domain.Interview{}, err
	}
	return iv, nil
}

func listByInterviewer(ctx context.Context, db bun.IDB, interviewerID string, from, to time.Time) ([]domain.Interview, error) {
	var rows []domain.Interview
	err := db.NewSelect().
		Model(&rows).
		Where("interviewer_id = ?", interviewerID).
		Where("start_at < ?", to).
		Where("end_at > ?", from).
		OrderExpr("start_at ASC, id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// mapWriteError turns constraint violations into store errors. The exclusion constraint is
// the last line of defence when two writers race past the in-transaction check.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch {
	case pgErr.Code == "23P01" && pgErr.ConstraintName == noOverlapConstraint:
		return store.ErrConflict
	case pgErr.Code == "23505":
		return store.ErrConflict
	}
	return err
}
