package directory

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"talentdesk/backend/internal/domain"
	"talentdesk/backend/internal/metrics"
)

// Cached fronts a Directory with one expiring LRU per collection. Only hits are cached;
// an id that is missing upstream is asked for again on the next call.
type Cached struct {
	next Directory

	candidates   *expirable.LRU[string, domain.Candidate]
	interviewers *expirable.LRU[string, domain.Interviewer]
	applications *expirable.LRU[string, domain.Application]
	positions    *expirable.LRU[string, domain.Position]
}

func NewCached(next Directory, size int, ttl time.Duration) *Cached {
	if size <= 0 {
		size = 1024
	}
	return &Cached{
		next:         next,
		candidates:   expirable.NewLRU[string, domain.Candidate](size, nil, ttl),
		interviewers: expirable.NewLRU[string, domain.Interviewer](size, nil, ttl),
		applications: expirable.NewLRU[string, domain.Application](size, nil, ttl),
		positions:    expirable.NewLRU[string, domain.Position](size, nil, ttl),
	}
}

func (c *Cached) Candidates(ctx context.Context, ids []string) (map[string]domain.Candidate, error) {
	return throughCache(ctx, c.candidates, CollectionCandidates, ids, c.next.Candidates)
}

func (c *Cached) Interviewers(ctx context.Context, ids []string) (map[string]domain.Interviewer, error) {
	return throughCache(ctx, c.interviewers, CollectionInterviewers, ids, c.next.Interviewers)
}

func (c *Cached) Applications(ctx context.Context, ids []string) (map[string]domain.Application, error) {
	return throughCache(ctx, c.applications, CollectionApplications, ids, c.next.Applications)
}

func (c *Cached) Positions(ctx context.Context, ids []string) (map[string]domain.Position, error) {
	return throughCache(ctx, c.positions, CollectionPositions, ids, c.next.Positions)
}

func throughCache[T any](
	ctx context.Context,
	cache *expirable.LRU[string, T],
	collection string,
	ids []string,
	fetch func(context.Context, []string) (map[string]T, error),
) (map[string]T, error) {
	ids = uniqueIDs(ids)
	out := make(map[string]T, len(ids))
	var misses []string
	for _, id := range ids {
		if v, ok := cache.Get(id); ok {
			out[id] = v
			continue
		}
		misses = append(misses, id)
	}
	metrics.DirectoryCacheRequests.WithLabelValues(collection, "hit").Add(float64(len(out)))
	if len(misses) == 0 {
		return out, nil
	}
	metrics.DirectoryCacheRequests.WithLabelValues(collection, "miss").Add(float64(len(misses)))

	fetched, err := fetch(ctx, misses)
	if err != nil {
		return nil, err
	}
	for id, v := range fetched {
		cache.Add(id, v)
		out[id] = v
	}
	return out, nil
}
