package directory

import (
	"context"
	"sync"

	"talentdesk/backend/internal/domain"
)

// Memory is a Directory held in process. It backs the memory store driver and tests.
type Memory struct {
	mu           sync.RWMutex
	candidates   map[string]domain.Candidate
	interviewers map[string]domain.Interviewer
	applications map[string]domain.Application
	positions    map[string]domain.Position
}

func NewMemory() *Memory {
	return &Memory{
		candidates:   make(map[string]domain.Candidate),
		interviewers: make(map[string]domain.Interviewer),
		applications: make(map[string]domain.Application),
		positions:    make(map[string]domain.Position),
	}
}

func (m *Memory) PutCandidate(c domain.Candidate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.candidates[c.ID] = c
}

func (m *Memory) PutInterviewer(i domain.Interviewer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interviewers[i.ID] = i
}

func (m *Memory) PutApplication(a domain.Application) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applications[a.ID] = a
}

func (m *Memory) PutPosition(p domain.Position) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[p.ID] = p
}

func (m *Memory) DeleteCandidate(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.candidates, id)
}

func (m *Memory) Candidates(ctx context.Context, ids []string) (map[string]domain.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return pick(m.candidates, ids), nil
}

func (m *Memory) Interviewers(ctx context.Context, ids []string) (map[string]domain.Interviewer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return pick(m.interviewers, ids), nil
}

func (m *Memory) Applications(ctx context.Context, ids []string) (map[string]domain.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return pick(m.applications, ids), nil
}

func (m *Memory) Positions(ctx context.Context, ids []string) (map[string]domain.Position, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return pick(m.positions, ids), nil
}

func pick[T any](src map[string]T, ids []string) map[string]T {
	out := make(map[string]T, len(ids))
	for _, id := range ids {
		if v, ok := src[id]; ok {
			out[id] = v
		}
	}
	return out
}
