// Package query filters, sorts and pages enriched interviews in memory.
package query

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"talentdesk/backend/internal/domain"
	"talentdesk/backend/internal/enrich"
)

type DateBucket string

const (
	BucketAll      DateBucket = "all"
	BucketToday    DateBucket = "today"
	BucketTomorrow DateBucket = "tomorrow"
	BucketThisWeek DateBucket = "this_week"
	BucketPast     DateBucket = "past"
)

type SortField string

const (
	SortByDate        SortField = "date"
	SortByCandidate   SortField = "candidate"
	SortByInterviewer SortField = "interviewer"
	SortByPosition    SortField = "position"
	SortByStatus      SortField = "status"
	SortByType        SortField = "type"
)

type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Spec selects and orders rows. Zero values mean "no filter" and the defaults below.
type Spec struct {
	Text          string
	Status        domain.Status
	Type          domain.InterviewType
	InterviewerID string
	DateBucket    DateBucket
	SortBy        SortField
	SortOrder     SortOrder
	Page          int
	PageSize      int
	// Location is the zone in which today, tomorrow and this_week are evaluated.
	Location *time.Location
}

type Page struct {
	Items      []enrich.EnrichedInterview `json:"items"`
	Total      int                        `json:"total"`
	Page       int                        `json:"page"`
	PageSize   int                        `json:"pageSize"`
	TotalPages int                        `json:"totalPages"`
}

// Validate rejects enum values Run would not understand.
func (s Spec) Validate() error {
	switch s.DateBucket {
	case "", BucketAll, BucketToday, BucketTomorrow, BucketThisWeek, BucketPast:
	default:
		return fmt.Errorf("unknown date bucket %q", s.DateBucket)
	}
	switch s.SortBy {
	case "", SortByDate, SortByCandidate, SortByInterviewer, SortByPosition, SortByStatus, SortByType:
	default:
		return fmt.Errorf("unknown sort field %q", s.SortBy)
	}
	switch s.SortOrder {
	case "", Asc, Desc:
	default:
		return fmt.Errorf("unknown sort order %q", s.SortOrder)
	}
	if s.Status != "" {
		if _, err := domain.ParseStatus(string(s.Status)); err != nil {
			return err
		}
	}
	if s.Type != "" {
		if _, ok := domain.ParseInterviewType(string(s.Type)); !ok {
			return fmt.Errorf("unknown interview type %q", s.Type)
		}
	}
	if s.Page < 0 || s.PageSize < 0 {
		return fmt.Errorf("page and pageSize must not be negative")
	}
	return nil
}

func (s Spec) withDefaults() Spec {
	if s.DateBucket == "" {
		s.DateBucket = BucketAll
	}
	if s.SortBy == "" {
		s.SortBy = SortByDate
	}
	if s.SortOrder == "" {
		s.SortOrder = Asc
	}
	if s.Page < 1 {
		s.Page = 1
	}
	if s.PageSize < 1 {
		s.PageSize = DefaultPageSize
	}
	if s.PageSize > MaxPageSize {
		s.PageSize = MaxPageSize
	}
	if s.Location == nil {
		s.Location = time.UTC
	}
	if s.Status != "" {
		if st, err := domain.ParseStatus(string(s.Status)); err == nil {
			s.Status = st
		}
	}
	if s.Type != "" {
		if t, ok := domain.ParseInterviewType(string(s.Type)); ok {
			s.Type = t
		}
	}
	s.Text = strings.ToLower(strings.TrimSpace(s.Text))
	return s
}

// Run derives each row's effective status at now, then filters, sorts and pages.
// The input slice is not modified.
func Run(rows []enrich.EnrichedInterview, spec Spec, now time.Time) Page {
	spec = spec.withDefaults()
	b := newBounds(now, spec.Location)

	matched := make([]enrich.EnrichedInterview, 0, len(rows))
	for _, r := range rows {
		r.Derive(now)
		if !matches(r, spec, b, now) {
			continue
		}
		matched = append(matched, r)
	}

	sortRows(matched, spec.SortBy, spec.SortOrder)

	total := len(matched)
	totalPages := int(math.Ceil(float64(total) / float64(spec.PageSize)))
	if totalPages < 1 {
		totalPages = 1
	}

	// Compare page numbers before multiplying; a huge page would overflow the offset.
	items := []enrich.EnrichedInterview{}
	if spec.Page <= totalPages {
		start := (spec.Page - 1) * spec.PageSize
		if start < total {
			end := min(start+spec.PageSize, total)
			items = matched[start:end]
		}
	}

	return Page{
		Items:      items,
		Total:      total,
		Page:       spec.Page,
		PageSize:   spec.PageSize,
		TotalPages: totalPages,
	}
}

type bounds struct {
	today, tomorrow, dayAfter time.Time
	weekStart, weekEnd        time.Time
}

func newBounds(now time.Time, loc *time.Location) bounds {
	local := now.In(loc)
	y, m, d := local.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)
	sinceMonday := (int(local.Weekday()) + 6) % 7
	weekStart := today.AddDate(0, 0, -sinceMonday)
	return bounds{
		today:     today,
		tomorrow:  today.AddDate(0, 0, 1),
		dayAfter:  today.AddDate(0, 0, 2),
		weekStart: weekStart,
		weekEnd:   weekStart.AddDate(0, 0, 7),
	}
}

func within(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func matches(r enrich.EnrichedInterview, spec Spec, b bounds, now time.Time) bool {
	if spec.Status != "" && r.EffectiveStatus != spec.Status {
		return false
	}
	if spec.Type != "" && r.Type != spec.Type {
		return false
	}
	if spec.InterviewerID != "" && r.Interviewer.ID != spec.InterviewerID {
		return false
	}

	switch spec.DateBucket {
	case BucketToday:
		if !within(r.StartAt, b.today, b.tomorrow) {
			return false
		}
	case BucketTomorrow:
		if !within(r.StartAt, b.tomorrow, b.dayAfter) {
			return false
		}
	case BucketThisWeek:
		if !within(r.StartAt, b.weekStart, b.weekEnd) {
			return false
		}
	case BucketPast:
		if r.EndAt.After(now) {
			return false
		}
	}

	if spec.Text != "" {
		fields := []string{r.Candidate.Name, r.Interviewer.Name, r.PositionTitle(), r.Agenda}
		found := false
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), spec.Text) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func sortRows(rows []enrich.EnrichedInterview, by SortField, order SortOrder) {
	less := lessFunc(by)
	if order == Desc {
		sort.SliceStable(rows, func(i, j int) bool { return less(rows[j], rows[i]) })
		return
	}
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
}

func lessFunc(by SortField) func(a, b enrich.EnrichedInterview) bool {
	switch by {
	case SortByCandidate:
		return byText(func(r enrich.EnrichedInterview) string { return r.Candidate.Name })
	case SortByInterviewer:
		return byText(func(r enrich.EnrichedInterview) string { return r.Interviewer.Name })
	case SortByPosition:
		return byText(enrich.EnrichedInterview.PositionTitle)
	case SortByStatus:
		return byText(func(r enrich.EnrichedInterview) string { return string(r.EffectiveStatus) })
	case SortByType:
		return byText(func(r enrich.EnrichedInterview) string { return string(r.Type) })
	default:
		return func(a, b enrich.EnrichedInterview) bool { return a.StartAt.Before(b.StartAt) }
	}
}

func byText(key func(enrich.EnrichedInterview) string) func(a, b enrich.EnrichedInterview) bool {
	return func(a, b enrich.EnrichedInterview) bool {
		return strings.ToLower(key(a)) < strings.ToLower(key(b))
	}
}
