// Package reminders emits reminder-due events for upcoming interviews. Delivery belongs to
// whoever consumes the events.
package reminders

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/robfig/cron/v3"

	"talentdesk/backend/internal/domain"
	"talentdesk/backend/internal/events"
	"talentdesk/backend/internal/metrics"
)

// MaxOffset bounds how far ahead of an interview a reminder may be configured.
const MaxOffset = 30 * 24 * time.Hour

type Lister interface {
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Interview, error)
}

type Config struct {
	// Schedule is a robfig/cron spec, e.g. "@every 1m".
	Schedule string
	// Lookback is how far behind now a due instant may be and still fire.
	Lookback  time.Duration
	DedupSize int
}

type Sweeper struct {
	cron      *cron.Cron
	spec      string
	lookback  time.Duration
	lister    Lister
	publisher events.Publisher
	sent      *lru.Cache[string, struct{}]
	logger    *slog.Logger
	now       func() time.Time
}

func New(lister Lister, publisher events.Publisher, logger *slog.Logger, cfg Config) (*Sweeper, error) {
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 1m"
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = 5 * time.Minute
	}
	if cfg.DedupSize <= 0 {
		cfg.DedupSize = 10000
	}
	if logger == nil {
		logger = slog.Default()
	}
	sent, err := lru.New[string, struct{}](cfg.DedupSize)
	if err != nil {
		return nil, err
	}
	return &Sweeper{
		cron:      cron.New(),
		spec:      cfg.Schedule,
		lookback:  cfg.Lookback,
		lister:    lister,
		publisher: publisher,
		sent:      sent,
		logger:    logger.With("component", "reminders"),
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *Sweeper) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Error("reminder sweep failed", "err", err)
		}
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	s.cron.Start()
	s.logger.Info("reminder sweeper started", "schedule", s.spec, "lookback", s.lookback.String())
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("reminder sweeper stopped")
}

// Sweep publishes every reminder whose due instant falls in (now-lookback, now] and has
// not been sent by this process. It returns how many were published.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	now := s.now()
	from := now.Add(-s.lookback)
	ivs, err := s.lister.ListStartingBetween(ctx, from, now.Add(MaxOffset+time.Minute))
	if err != nil {
		return 0, err
	}

	published := 0
	for _, iv := range ivs {
		for _, d := range Due(iv, from, now) {
			key := dedupKey(iv, d)
			if s.sent.Contains(key) {
				continue
			}
			ev := events.New(events.TypeReminderDue, iv, now)
			ev.OffsetMinutes = d
			ev.Channels = iv.Reminders.Channels
			if err := s.publisher.Publish(ctx, ev); err != nil {
				s.logger.WarnContext(ctx, "publish reminder failed",
					"interview_id", iv.ID.String(),
					"offset_minutes", d,
					"err", err,
				)
				continue
			}
			s.sent.Add(key, struct{}{})
			metrics.RemindersEmitted.Inc()
			published++
		}
	}
	return published, nil
}

// Due returns the configured offsets (minutes) of iv whose due instant start-offset lies
// in (from, to]. Only scheduled interviews with reminders enabled have any.
func Due(iv domain.Interview, from, to time.Time) []int {
	if iv.Status != domain.StatusScheduled || !iv.Reminders.Enabled {
		return nil
	}
	var out []int
	for _, m := range iv.Reminders.OffsetsMinutes {
		if m < 0 {
			continue
		}
		at := iv.StartAt.Add(-time.Duration(m) * time.Minute)
		if at.After(from) && !at.After(to) {
			out = append(out, m)
		}
	}
	return out
}

// dedupKey includes the start so a rescheduled interview is reminded again.
func dedupKey(iv domain.Interview, offset int) string {
	return iv.ID.String() + "|" + strconv.Itoa(offset) + "|" + strconv.FormatInt(iv.StartAt.Unix(), 10)
}
