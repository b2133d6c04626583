package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentdesk/backend/internal/domain"
)

type countingDirectory struct {
	*Memory
	candidateCalls [][]string
	candidatesErr  error
}

func (d *countingDirectory) Candidates(ctx context.Context, ids []string) (map[string]domain.Candidate, error) {
	d.candidateCalls = append(d.candidateCalls, ids)
	if d.candidatesErr != nil {
		return nil, d.candidatesErr
	}
	return d.Memory.Candidates(ctx, ids)
}

func TestMemory_ReturnsOnlyKnownIDs(t *testing.T) {
	m := NewMemory()
	m.PutCandidate(domain.Candidate{ID: "c1", Name: "Ada"})
	m.PutPosition(domain.Position{ID: "p1", Title: "Engineer"})

	got, err := m.Candidates(context.Background(), []string{"c1", "c2"})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "Ada", got["c1"].Name)

	m.DeleteCandidate("c1")
	got, err = m.Candidates(context.Background(), []string{"c1"})
	require.NoError(t, err)
	assert.Empty(t, got)

	positions, err := m.Positions(context.Background(), []string{"p1"})
	require.NoError(t, err)
	assert.Equal(t, "Engineer", positions["p1"].Title)
}

func TestCached_ServesRepeatLookupsFromCache(t *testing.T) {
	inner := &countingDirectory{Memory: NewMemory()}
	inner.PutCandidate(domain.Candidate{ID: "c1", Name: "Ada"})
	inner.PutCandidate(domain.Candidate{ID: "c2", Name: "Grace"})
	c := NewCached(inner, 16, time.Minute)
	ctx := context.Background()

	got, err := c.Candidates(ctx, []string{"c1", "c1", ""})
	require.NoError(t, err)
	assert.Equal(t, "Ada", got["c1"].Name)
	require.Len(t, inner.candidateCalls, 1)
	assert.Equal(t, []string{"c1"}, inner.candidateCalls[0])

	got, err = c.Candidates(ctx, []string{"c1", "c2"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	require.Len(t, inner.candidateCalls, 2)
	assert.Equal(t, []string{"c2"}, inner.candidateCalls[1], "only the miss is fetched")

	_, err = c.Candidates(ctx, []string{"c1", "c2"})
	require.NoError(t, err)
	assert.Len(t, inner.candidateCalls, 2, "fully cached lookup must not reach upstream")
}

func TestCached_DoesNotCacheMisses(t *testing.T) {
	inner := &countingDirectory{Memory: NewMemory()}
	c := NewCached(inner, 16, time.Minute)
	ctx := context.Background()

	got, err := c.Candidates(ctx, []string{"ghost"})
	require.NoError(t, err)
	assert.Empty(t, got)

	inner.PutCandidate(domain.Candidate{ID: "ghost", Name: "Now Here"})
	got, err = c.Candidates(ctx, []string{"ghost"})
	require.NoError(t, err)
	assert.Equal(t, "Now Here", got["ghost"].Name)
}

func TestCached_PropagatesUpstreamError(t *testing.T) {
	inner := &countingDirectory{
		Memory:        NewMemory(),
		candidatesErr: unavailable(CollectionCandidates, errors.New("connection refused")),
	}
	c := NewCached(inner, 16, time.Minute)

	_, err := c.Candidates(context.Background(), []string{"c1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.Contains(t, err.Error(), CollectionCandidates)
}

func TestUniqueIDs(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, uniqueIDs([]string{"a", "", "b", "a"}))
	assert.Empty(t, uniqueIDs(nil))
}
