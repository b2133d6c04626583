package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"talentdesk/backend/internal/domain"
)

// IntervalLister lists an interviewer's bookings whose window intersects [from, to).
// Cancelled bookings are included; callers decide what occupies time.
type IntervalLister interface {
	ListByInterviewer(ctx context.Context, interviewerID string, from, to time.Time) ([]domain.Interview, error)
}

type InterviewRepository interface {
	IntervalLister

	Get(ctx context.Context, id uuid.UUID) (domain.Interview, error)
	List(ctx context.Context) ([]domain.Interview, error)
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Interview, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// InInterviewerTransaction runs fn while holding the booking lock of every listed
	// interviewer. Writes made through tx commit together or not at all.
	InInterviewerTransaction(ctx context.Context, interviewerIDs []string, fn func(ctx context.Context, tx InterviewTx) error) error
}

type InterviewTx interface {
	IntervalLister

	Get(ctx context.Context, id uuid.UUID) (domain.Interview, error)
	Insert(ctx context.Context, iv domain.Interview) (domain.Interview, error)
	Update(ctx context.Context, iv domain.Interview) (domain.Interview, error)
}
