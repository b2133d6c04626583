package directory

import (
	"context"

	"github.com/uptrace/bun"

	"talentdesk/backend/internal/domain"
)

type keyed interface {
	Key() string
}

// BunDirectory reads the reference tables that share the scheduler's database.
type BunDirectory struct {
	db bun.IDB
}

func NewBunDirectory(db bun.IDB) *BunDirectory {
	return &BunDirectory{db: db}
}

func (d *BunDirectory) Candidates(ctx context.Context, ids []string) (map[string]domain.Candidate, error) {
	return fetchByIDs[domain.Candidate](ctx, d.db, CollectionCandidates, ids)
}

func (d *BunDirectory) Interviewers(ctx context.Context, ids []string) (map[string]domain.Interviewer, error) {
	return fetchByIDs[domain.Interviewer](ctx, d.db, CollectionInterviewers, ids)
}

func (d *BunDirectory) Applications(ctx context.Context, ids []string) (map[string]domain.Application, error) {
	return fetchByIDs[domain.Application](ctx, d.db, CollectionApplications, ids)
}

func (d *BunDirectory) Positions(ctx context.Context, ids []string) (map[string]domain.Position, error) {
	return fetchByIDs[domain.Position](ctx, d.db, CollectionPositions, ids)
}

func fetchByIDs[T keyed](ctx context.Context, db bun.IDB, collection string, ids []string) (map[string]T, error) {
	ids = uniqueIDs(ids)
	out := make(map[string]T, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []T
	err := db.NewSelect().
		Model(&rows).
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, unavailable(collection, err)
	}
	for _, r := range rows {
		out[r.Key()] = r
	}
	return out, nil
}
