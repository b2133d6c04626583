package enrich

import (
	"context"
	"log/slog"

	"talentdesk/backend/internal/directory"
	"talentdesk/backend/internal/domain"
	"talentdesk/backend/internal/metrics"
)

// Resolver loads Lookups for a batch of interviews. A collection that fails to load is
// logged and counted; rows referencing it fall back to placeholders.
type Resolver struct {
	dir    directory.Directory
	logger *slog.Logger
}

func NewResolver(dir directory.Directory, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{dir: dir, logger: logger.With("component", "enrich")}
}

func (r *Resolver) Lookups(ctx context.Context, ivs []domain.Interview) Lookups {
	var candidateIDs, interviewerIDs, applicationIDs, positionIDs []string
	for _, iv := range ivs {
		candidateIDs = append(candidateIDs, iv.CandidateID)
		interviewerIDs = append(interviewerIDs, iv.InterviewerID)
		if iv.ApplicationID != "" {
			applicationIDs = append(applicationIDs, iv.ApplicationID)
		}
		if iv.PositionID != "" {
			positionIDs = append(positionIDs, iv.PositionID)
		}
	}

	var lk Lookups
	lk.Candidates = load(ctx, r, directory.CollectionCandidates, candidateIDs, r.dir.Candidates)
	lk.Interviewers = load(ctx, r, directory.CollectionInterviewers, interviewerIDs, r.dir.Interviewers)
	lk.Applications = load(ctx, r, directory.CollectionApplications, applicationIDs, r.dir.Applications)

	// Positions may only be reachable through the application.
	for _, iv := range ivs {
		if iv.PositionID != "" {
			continue
		}
		if a, ok := lk.Applications[iv.ApplicationID]; ok && a.PositionID != "" {
			positionIDs = append(positionIDs, a.PositionID)
		}
	}
	lk.Positions = load(ctx, r, directory.CollectionPositions, positionIDs, r.dir.Positions)
	return lk
}

// EnrichAll resolves and enriches ivs, preserving order.
func (r *Resolver) EnrichAll(ctx context.Context, ivs []domain.Interview) []EnrichedInterview {
	lk := r.Lookups(ctx, ivs)
	out := make([]EnrichedInterview, 0, len(ivs))
	for _, iv := range ivs {
		out = append(out, Enrich(iv, lk))
	}
	return out
}

func load[T any](ctx context.Context, r *Resolver, collection string, ids []string, fetch func(context.Context, []string) (map[string]T, error)) map[string]T {
	if len(ids) == 0 {
		return nil
	}
	m, err := fetch(ctx, ids)
	if err != nil {
		metrics.DirectoryLookupFailures.WithLabelValues(collection).Inc()
		r.logger.WarnContext(ctx, "directory lookup failed; using placeholders",
			"collection", collection,
			"ids", len(ids),
			"err", err,
		)
		return nil
	}
	return m
}
