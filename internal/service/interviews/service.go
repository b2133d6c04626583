// Package interviews is the scheduling façade: it validates input, runs the conflict gate
// inside the interviewer's transaction, and applies the status state machine.
package interviews

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"talentdesk/backend/internal/conflict"
	"talentdesk/backend/internal/domain"
	"talentdesk/backend/internal/enrich"
	"talentdesk/backend/internal/events"
	"talentdesk/backend/internal/metrics"
	"talentdesk/backend/internal/query"
	"talentdesk/backend/internal/store"
)

type Service struct {
	repo      store.InterviewRepository
	resolver  *enrich.Resolver
	publisher events.Publisher
	logger    *slog.Logger
	validate  *validator.Validate
	now       func() time.Time
	location  *time.Location
}

type Option func(*Service)

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithDefaultLocation sets the zone List evaluates date buckets in when the query has none.
func WithDefaultLocation(loc *time.Location) Option {
	return func(s *Service) { s.location = loc }
}

func NewService(repo store.InterviewRepository, resolver *enrich.Resolver, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		resolver:  resolver,
		publisher: events.Noop{},
		logger:    slog.Default(),
		validate:  newValidator(),
		now:       func() time.Time { return time.Now().UTC() },
		location:  time.UTC,
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.With("component", "interviews")
	return s
}

func (s *Service) Create(ctx context.Context, in Input) (domain.Interview, error) {
	iv, w, err := s.build(in)
	if err != nil {
		return domain.Interview{}, err
	}
	now := s.now()
	iv.Status = domain.StatusScheduled
	iv.CreatedAt = now
	iv.UpdatedAt = now

	var out domain.Interview
	err = s.repo.InInterviewerTransaction(ctx, []string{iv.InterviewerID}, func(ctx context.Context, tx store.InterviewTx) error {
		if err := s.gate(ctx, tx, iv.InterviewerID, w, uuid.Nil); err != nil {
			return err
		}
		created, err := tx.Insert(ctx, iv)
		if err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		return domain.Interview{}, commitError(err)
	}

	metrics.InterviewsCreated.Inc()
	s.publish(ctx, events.New(events.TypeCreated, out, now))
	return out, nil
}

// Update replaces the editable fields of an interview. Moving the window of a scheduled
// interview is a reschedule; moving a terminal one is rejected.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (domain.Interview, error) {
	if id == uuid.Nil {
		return domain.Interview{}, validationError("id is required")
	}
	next, w, err := s.build(in)
	if err != nil {
		return domain.Interview{}, err
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Interview{}, err
	}

	now := s.now()
	var (
		out         domain.Interview
		rescheduled bool
	)
	lockIDs := []string{current.InterviewerID, next.InterviewerID}
	err = s.repo.InInterviewerTransaction(ctx, lockIDs, func(ctx context.Context, tx store.InterviewTx) error {
		cur, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}
		if cur.InterviewerID != current.InterviewerID {
			return store.ErrStale
		}

		windowChanged := !cur.Window().Equal(w)
		moved := windowChanged || cur.InterviewerID != next.InterviewerID
		if moved {
			if cur.Status.Terminal() {
				return &InvalidTransitionError{From: cur.Status, To: domain.StatusRescheduled, Reason: "interview is closed"}
			}
			if err := s.gate(ctx, tx, next.InterviewerID, w, id); err != nil {
				return err
			}
		}

		updated := cur
		applyInput(&updated, next)
		if windowChanged {
			recordReschedule(&updated, cur, now)
			rescheduled = true
		}
		updated.SetWindow(w)
		updated.UpdatedAt = now

		saved, err := tx.Update(ctx, updated)
		if err != nil {
			return err
		}
		out = saved
		return nil
	})
	if err != nil {
		return domain.Interview{}, commitError(err)
	}

	typ := events.TypeUpdated
	if rescheduled {
		typ = events.TypeRescheduled
	}
	s.publish(ctx, events.New(typ, out, now))
	return out, nil
}

// ChangeStatus moves an interview to a new stored status. Asking for the current status,
// including in_progress while the window is running, is a no-op.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, req StatusChange) (domain.Interview, error) {
	if id == uuid.Nil {
		return domain.Interview{}, validationError("id is required")
	}
	if err := checkStruct(s.validate, req); err != nil {
		return domain.Interview{}, err
	}
	target, err := domain.ParseStatus(req.Status)
	if err != nil {
		return domain.Interview{}, validationError(err.Error())
	}

	var newWindow domain.Window
	if target == domain.StatusRescheduled {
		if req.Reschedule == nil {
			return domain.Interview{}, validationError("reschedule requires a new window")
		}
		if err := checkStruct(s.validate, *req.Reschedule); err != nil {
			return domain.Interview{}, err
		}
		if newWindow, err = req.Reschedule.resolve(); err != nil {
			return domain.Interview{}, err
		}
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Interview{}, err
	}

	now := s.now()
	var (
		out     domain.Interview
		changed bool
		from    domain.Status
	)
	err = s.repo.InInterviewerTransaction(ctx, []string{current.InterviewerID}, func(ctx context.Context, tx store.InterviewTx) error {
		cur, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}
		if cur.InterviewerID != current.InterviewerID {
			return store.ErrStale
		}
		from = cur.Status

		if target == cur.Status {
			out = cur
			return nil
		}
		if target == domain.StatusInProgress {
			if domain.DeriveStatus(cur.Status, cur.Window(), now) == target {
				out = cur
				return nil
			}
			return &InvalidTransitionError{From: cur.Status, To: target, Reason: "in progress follows the clock and cannot be set"}
		}
		if !domain.IsTransitionAllowed(cur.Status, target) {
			return &InvalidTransitionError{From: cur.Status, To: target}
		}

		updated := cur
		switch target {
		case domain.StatusRescheduled:
			if cur.Window().Equal(newWindow) {
				return validationError("reschedule must move the interview to a different time")
			}
			if err := s.gate(ctx, tx, cur.InterviewerID, newWindow, id); err != nil {
				return err
			}
			recordReschedule(&updated, cur, now)
			updated.Date = strings.TrimSpace(req.Reschedule.Date)
			updated.StartTime = strings.TrimSpace(req.Reschedule.StartTime)
			updated.DurationMinutes = req.Reschedule.DurationMinutes
			updated.Timezone = normalizeTimezone(req.Reschedule.Timezone)
			updated.SetWindow(newWindow)
		case domain.StatusNoShow:
			if !now.After(cur.EndAt) {
				return &InvalidTransitionError{From: cur.Status, To: target, Reason: "interview has not ended yet"}
			}
			fallthrough
		default:
			updated.Status = target
			updated.History = append(updated.History, domain.StatusChange{From: cur.Status, To: target, At: now})
		}
		updated.UpdatedAt = now

		saved, err := tx.Update(ctx, updated)
		if err != nil {
			return err
		}
		out = saved
		changed = true
		return nil
	})
	if err != nil {
		return domain.Interview{}, commitError(err)
	}
	if !changed {
		return out, nil
	}

	metrics.StatusChanges.WithLabelValues(string(target)).Inc()
	typ := events.TypeStatusChanged
	if target == domain.StatusRescheduled {
		typ = events.TypeRescheduled
	}
	ev := events.New(typ, out, now)
	ev.PreviousStatus = from
	s.publish(ctx, ev)
	return out, nil
}

// Delete removes the interview outright. Cancelling keeps the record; Delete does not.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return validationError("id is required")
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.New(events.TypeDeleted, current, s.now()))
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (enrich.EnrichedInterview, error) {
	if id == uuid.Nil {
		return enrich.EnrichedInterview{}, validationError("id is required")
	}
	iv, err := s.repo.Get(ctx, id)
	if err != nil {
		return enrich.EnrichedInterview{}, err
	}
	return s.View(ctx, iv), nil
}

// View enriches a single record and applies the clock-derived status. Transports use it to
// render the result of a mutation.
func (s *Service) View(ctx context.Context, iv domain.Interview) enrich.EnrichedInterview {
	rows := s.resolver.EnrichAll(ctx, []domain.Interview{iv})
	row := rows[0]
	row.Derive(s.now())
	return row
}

func (s *Service) List(ctx context.Context, spec query.Spec) (query.Page, error) {
	if err := spec.Validate(); err != nil {
		return query.Page{}, validationError(err.Error())
	}
	if spec.Location == nil {
		spec.Location = s.location
	}
	started := time.Now()
	defer func() { metrics.ListDuration.Observe(time.Since(started).Seconds()) }()

	ivs, err := s.repo.List(ctx)
	if err != nil {
		return query.Page{}, err
	}
	rows := s.resolver.EnrichAll(ctx, ivs)
	return query.Run(rows, spec, s.now()), nil
}

// ConflictCheck asks whether a window is free without booking it.
type ConflictCheck struct {
	InterviewerID string      `json:"interviewerId" validate:"required"`
	Window        WindowInput `json:"window"`
	ExcludeID     uuid.UUID   `json:"excludeId"`
}

// CheckConflicts is the advisory form of the commit gate. It takes no lock, so a free
// answer can be stale by the time the caller books.
func (s *Service) CheckConflicts(ctx context.Context, req ConflictCheck) ([]domain.Interview, error) {
	if err := checkStruct(s.validate, req); err != nil {
		return nil, err
	}
	w, err := req.Window.resolve()
	if err != nil {
		return nil, err
	}
	conflicts, err := conflict.FindConflicts(ctx, s.repo, req.InterviewerID, w, req.ExcludeID)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		metrics.ConflictsDetected.WithLabelValues(metrics.PathAdvisory).Inc()
	}
	return conflicts, nil
}

type SlotQuery struct {
	InterviewerID   string `json:"interviewerId" validate:"required"`
	Date            string `json:"date" validate:"required"`
	Timezone        string `json:"timezone,omitempty"`
	DurationMinutes int    `json:"durationMinutes" validate:"gt=0,lte=1440"`
	StepMinutes     int    `json:"stepMinutes" validate:"gte=0,lte=1440"`
	DayStart        string `json:"dayStart,omitempty"`
	DayEnd          string `json:"dayEnd,omitempty"`
}

const (
	defaultDayStart = "09:00"
	defaultDayEnd   = "17:00"
)

// SuggestSlots lists the start times on q.Date, within the working hours, at which the
// interviewer could take a booking of the requested length.
func (s *Service) SuggestSlots(ctx context.Context, q SlotQuery) ([]time.Time, error) {
	if err := checkStruct(s.validate, q); err != nil {
		return nil, err
	}
	if q.DayStart == "" {
		q.DayStart = defaultDayStart
	}
	if q.DayEnd == "" {
		q.DayEnd = defaultDayEnd
	}
	if q.StepMinutes == 0 {
		q.StepMinutes = 30
	}

	from, err := WindowInput{Date: q.Date, StartTime: q.DayStart, DurationMinutes: 1, Timezone: q.Timezone}.resolve()
	if err != nil {
		return nil, err
	}
	to, err := WindowInput{Date: q.Date, StartTime: q.DayEnd, DurationMinutes: 1, Timezone: q.Timezone}.resolve()
	if err != nil {
		return nil, err
	}
	if !to.Start.After(from.Start) {
		return nil, validationError("dayEnd must be after dayStart")
	}

	bookings, err := s.repo.ListByInterviewer(ctx, q.InterviewerID, from.Start, to.Start)
	if err != nil {
		return nil, err
	}
	return conflict.AvailableSlots(
		from.Start,
		to.Start,
		time.Duration(q.DurationMinutes)*time.Minute,
		time.Duration(q.StepMinutes)*time.Minute,
		conflict.BusyWindows(bookings),
		s.now(),
	), nil
}

// gate is the commit-time conflict check. It must run inside the interviewer's transaction.
func (s *Service) gate(ctx context.Context, tx store.InterviewTx, interviewerID string, w domain.Window, excludeID uuid.UUID) error {
	conflicts, err := conflict.FindConflicts(ctx, tx, interviewerID, w, excludeID)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return &ConflictError{Conflicts: conflicts}
	}
	return nil
}

// build validates in and returns the record it describes, without id, status or timestamps.
func (s *Service) build(in Input) (domain.Interview, domain.Window, error) {
	in.InterviewerID = strings.TrimSpace(in.InterviewerID)
	in.CandidateID = strings.TrimSpace(in.CandidateID)
	if err := checkStruct(s.validate, in); err != nil {
		return domain.Interview{}, domain.Window{}, err
	}

	typ := domain.InterviewTypeTechnical
	if strings.TrimSpace(in.Type) != "" {
		t, ok := domain.ParseInterviewType(in.Type)
		if !ok {
			return domain.Interview{}, domain.Window{}, validationError("type must be one of: technical, hr, behavioral, final, group")
		}
		typ = t
	}

	w, err := in.window().resolve()
	if err != nil {
		return domain.Interview{}, domain.Window{}, err
	}

	iv := domain.Interview{
		InterviewerID:   in.InterviewerID,
		CandidateID:     in.CandidateID,
		ApplicationID:   strings.TrimSpace(in.ApplicationID),
		PositionID:      strings.TrimSpace(in.PositionID),
		Type:            typ,
		Date:            strings.TrimSpace(in.Date),
		StartTime:       strings.TrimSpace(in.StartTime),
		DurationMinutes: in.DurationMinutes,
		Timezone:        normalizeTimezone(in.Timezone),
		MeetingLink:     strings.TrimSpace(in.MeetingLink),
		Location:        strings.TrimSpace(in.Location),
		Agenda:          in.Agenda,
		Instructions:    in.Instructions,
		Notes:           in.Notes,
		Materials:       in.materials(),
		Reminders:       in.reminders(),
	}
	iv.SetWindow(w)
	return iv, w, nil
}

func normalizeTimezone(tz string) string {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return "UTC"
	}
	return tz
}

func applyInput(dst *domain.Interview, src domain.Interview) {
	dst.InterviewerID = src.InterviewerID
	dst.CandidateID = src.CandidateID
	dst.ApplicationID = src.ApplicationID
	dst.PositionID = src.PositionID
	dst.Type = src.Type
	dst.Date = src.Date
	dst.StartTime = src.StartTime
	dst.DurationMinutes = src.DurationMinutes
	dst.Timezone = src.Timezone
	dst.MeetingLink = src.MeetingLink
	dst.Location = src.Location
	dst.Agenda = src.Agenda
	dst.Instructions = src.Instructions
	dst.Notes = src.Notes
	dst.Materials = src.Materials
	dst.Reminders = src.Reminders
}

// recordReschedule appends the history entry that keeps the slot being vacated.
func recordReschedule(dst *domain.Interview, prev domain.Interview, at time.Time) {
	prevStart := prev.StartAt.UTC()
	prevEnd := prev.EndAt.UTC()
	dst.History = append(dst.History, domain.StatusChange{
		From:          prev.Status,
		To:            domain.StatusRescheduled,
		At:            at,
		PreviousStart: &prevStart,
		PreviousEnd:   &prevEnd,
	})
	dst.RescheduleCount++
}

// commitError converts a constraint-level conflict into a ConflictError and counts
// conflicts caught at commit.
func commitError(err error) error {
	var cErr *ConflictError
	switch {
	case errors.As(err, &cErr):
		metrics.ConflictsDetected.WithLabelValues(metrics.PathCommit).Inc()
		return err
	case errors.Is(err, store.ErrConflict):
		metrics.ConflictsDetected.WithLabelValues(metrics.PathCommit).Inc()
		return &ConflictError{}
	}
	return err
}

func (s *Service) publish(ctx context.Context, ev events.Event) {
	if err := s.publisher.Publish(ctx, ev); err != nil {
		metrics.EventPublishFailures.WithLabelValues(ev.Type).Inc()
		s.logger.WarnContext(ctx, "publish event failed",
			"type", ev.Type,
			"interview_id", ev.InterviewID.String(),
			"err", err,
		)
	}
}
