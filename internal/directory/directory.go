// Package directory reads the portal's reference collections (candidates, interviewers,
// applications, positions) by id. The scheduler never writes them.
package directory

import (
	"context"
	"errors"
	"fmt"

	"talentdesk/backend/internal/domain"
)

const (
	CollectionCandidates   = "candidates"
	CollectionInterviewers = "interviewers"
	CollectionApplications = "applications"
	CollectionPositions    = "positions"
)

// ErrUpstreamUnavailable wraps any failure to read a collection.
var ErrUpstreamUnavailable = errors.New("directory upstream unavailable")

// Directory returns the entities found for ids, keyed by id. Unknown ids are simply absent.
type Directory interface {
	Candidates(ctx context.Context, ids []string) (map[string]domain.Candidate, error)
	Interviewers(ctx context.Context, ids []string) (map[string]domain.Interviewer, error)
	Applications(ctx context.Context, ids []string) (map[string]domain.Application, error)
	Positions(ctx context.Context, ids []string) (map[string]domain.Position, error)
}

func unavailable(collection string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUpstreamUnavailable, collection, err)
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
