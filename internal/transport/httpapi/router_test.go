package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"talentdesk/backend/internal/domain"
	"talentdesk/backend/internal/enrich"
	"talentdesk/backend/internal/query"
	"talentdesk/backend/internal/service/interviews"
	"talentdesk/backend/internal/store"
)

type fakeService struct {
	createFn         func(ctx context.Context, in interviews.Input) (domain.Interview, error)
	updateFn         func(ctx context.Context, id uuid.UUID, in interviews.Input) (domain.Interview, error)
	changeStatusFn   func(ctx context.Context, id uuid.UUID, req interviews.StatusChange) (domain.Interview, error)
	deleteFn         func(ctx context.Context, id uuid.UUID) error
	getFn            func(ctx context.Context, id uuid.UUID) (enrich.EnrichedInterview, error)
	listFn           func(ctx context.Context, spec query.Spec) (query.Page, error)
	checkConflictsFn func(ctx context.Context, req interviews.ConflictCheck) ([]domain.Interview, error)
	suggestSlotsFn   func(ctx context.Context, q interviews.SlotQuery) ([]time.Time, error)
}

func (f *fakeService) Create(ctx context.Context, in interviews.Input) (domain.Interview, error) {
	if f.createFn == nil {
		panic("Create not configured")
	}
	return f.createFn(ctx, in)
}

func (f *fakeService) Update(ctx context.Context, id uuid.UUID, in interviews.Input) (domain.Interview, error) {
	if f.updateFn == nil {
		panic("Update not configured")
	}
	return f.updateFn(ctx, id, in)
}

func (f *fakeService) ChangeStatus(ctx context.Context, id uuid.UUID, req interviews.StatusChange) (domain.Interview, error) {
	if f.changeStatusFn == nil {
		panic("ChangeStatus not configured")
	}
	return f.changeStatusFn(ctx, id, req)
}

func (f *fakeService) Delete(ctx context.Context, id uuid.UUID) error {
	if f.deleteFn == nil {
		panic("Delete not configured")
	}
	return f.deleteFn(ctx, id)
}

func (f *fakeService) Get(ctx context.Context, id uuid.UUID) (enrich.EnrichedInterview, error) {
	if f.getFn == nil {
		panic("Get not configured")
	}
	return f.getFn(ctx, id)
}

func (f *fakeService) List(ctx context.Context, spec query.Spec) (query.Page, error) {
	if f.listFn == nil {
		panic("List not configured")
	}
	return f.listFn(ctx, spec)
}

func (f *fakeService) CheckConflicts(ctx context.Context, req interviews.ConflictCheck) ([]domain.Interview, error) {
	if f.checkConflictsFn == nil {
		panic("CheckConflicts not configured")
	}
	return f.checkConflictsFn(ctx, req)
}

func (f *fakeService) SuggestSlots(ctx context.Context, q interviews.SlotQuery) ([]time.Time, error) {
	if f.suggestSlotsFn == nil {
		panic("SuggestSlots not configured")
	}
	return f.suggestSlotsFn(ctx, q)
}

func (f *fakeService) View(_ context.Context, iv domain.Interview) enrich.EnrichedInterview {
	return enrich.Enrich(iv, enrich.Lookups{})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(svc *fakeService, checks ...ReadyCheck) http.Handler {
	log := discardLogger()
	return NewRouter(NewHandler(svc, log), log, Options{RequestTimeout: 5 * time.Second, ReadyChecks: checks})
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

func sampleInterview() domain.Interview {
	start := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
	return domain.Interview{
		ID:              uuid.New(),
		InterviewerID:   "int-1",
		CandidateID:     "cand-1",
		Type:            domain.InterviewTypeTechnical,
		Date:            "2024-06-10",
		StartTime:       "10:00",
		DurationMinutes: 60,
		Timezone:        "UTC",
		StartAt:         start,
		EndAt:           start.Add(time.Hour),
		Status:          domain.StatusScheduled,
	}
}

func TestCreateInterview_ReturnsCreated(t *testing.T) {
	iv := sampleInterview()
	var got interviews.Input
	h := newTestRouter(&fakeService{
		createFn: func(ctx context.Context, in interviews.Input) (domain.Interview, error) {
			got = in
			return iv, nil
		},
	})

	rec := do(t, h, http.MethodPost, "/api/v1/interviews", map[string]any{
		"interviewerId":   "int-1",
		"candidateId":     "cand-1",
		"date":            "2024-06-10",
		"startTime":       "10:00",
		"durationMinutes": 60,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if got.InterviewerID != "int-1" || got.DurationMinutes != 60 {
		t.Fatalf("input = %+v", got)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatalf("missing %s header", RequestIDHeader)
	}

	var out enrich.EnrichedInterview
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.ID != iv.ID {
		t.Fatalf("id = %s, want %s", out.ID, iv.ID)
	}
}

func TestCreateInterview_ErrorMapping(t *testing.T) {
	existing := sampleInterview()

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKind string
	}{
		{name: "validation", err: interviews.NewValidationError("durationMinutes must be greater than 0"), wantCode: http.StatusBadRequest, wantKind: "invalid_argument"},
		{name: "conflict", err: &interviews.ConflictError{Conflicts: []domain.Interview{existing}}, wantCode: http.StatusConflict, wantKind: "conflict"},
		{name: "transition", err: &interviews.InvalidTransitionError{From: domain.StatusCompleted, To: domain.StatusScheduled}, wantCode: http.StatusUnprocessableEntity, wantKind: "invalid_transition"},
		{name: "not found", err: store.ErrNotFound, wantCode: http.StatusNotFound, wantKind: "not_found"},
		{name: "stale", err: store.ErrStale, wantCode: http.StatusConflict, wantKind: "aborted"},
		{name: "unexpected", err: errors.New("connection reset"), wantCode: http.StatusInternalServerError, wantKind: "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(&fakeService{
				createFn: func(ctx context.Context, in interviews.Input) (domain.Interview, error) {
					return domain.Interview{}, tt.err
				},
			})
			rec := do(t, h, http.MethodPost, "/api/v1/interviews", map[string]any{"interviewerId": "int-1"})
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			body := decodeError(t, rec)
			if body.Code != tt.wantKind {
				t.Fatalf("code = %q, want %q", body.Code, tt.wantKind)
			}
			if tt.name == "conflict" && (len(body.Conflicts) != 1 || body.Conflicts[0].ID != existing.ID) {
				t.Fatalf("conflicts = %+v, want the existing booking", body.Conflicts)
			}
			if tt.name == "unexpected" && body.Error != "internal error" {
				t.Fatalf("error = %q, want generic message", body.Error)
			}
		})
	}
}

func TestCreateInterview_RejectsMalformedJSON(t *testing.T) {
	h := newTestRouter(&fakeService{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/interviews", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestUpdateInterview_RejectsBadID(t *testing.T) {
	h := newTestRouter(&fakeService{})
	rec := do(t, h, http.MethodPut, "/api/v1/interviews/not-a-uuid", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestChangeStatus_PassesRequest(t *testing.T) {
	iv := sampleInterview()
	var got interviews.StatusChange
	h := newTestRouter(&fakeService{
		changeStatusFn: func(ctx context.Context, id uuid.UUID, req interviews.StatusChange) (domain.Interview, error) {
			if id != iv.ID {
				t.Fatalf("id = %s, want %s", id, iv.ID)
			}
			got = req
			iv.Status = domain.StatusRescheduled
			return iv, nil
		},
	})

	rec := do(t, h, http.MethodPost, "/api/v1/interviews/"+iv.ID.String()+"/status", map[string]any{
		"status": "rescheduled",
		"reschedule": map[string]any{
			"date":            "2024-06-11",
			"startTime":       "11:00",
			"durationMinutes": 30,
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if got.Status != "rescheduled" || got.Reschedule == nil || got.Reschedule.StartTime != "11:00" {
		t.Fatalf("request = %+v", got)
	}
}

func TestDeleteInterview_NoContent(t *testing.T) {
	id := uuid.New()
	h := newTestRouter(&fakeService{
		deleteFn: func(ctx context.Context, got uuid.UUID) error {
			if got != id {
				t.Fatalf("id = %s, want %s", got, id)
			}
			return nil
		},
	})
	rec := do(t, h, http.MethodDelete, "/api/v1/interviews/"+id.String(), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}

func TestListInterviews_ParsesQuery(t *testing.T) {
	var got query.Spec
	h := newTestRouter(&fakeService{
		listFn: func(ctx context.Context, spec query.Spec) (query.Page, error) {
			got = spec
			return query.Page{Items: []enrich.EnrichedInterview{}, Total: 0, Page: 2, PageSize: 5, TotalPages: 1}, nil
		},
	})

	rec := do(t, h, http.MethodGet, "/api/v1/interviews?q=alice&status=No+Show&type=Technical&date=this_week&sortBy=candidate&sortOrder=DESC&page=2&pageSize=5&tz=Europe/Berlin", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if got.Text != "alice" || got.Status != "No Show" || got.Type != domain.InterviewTypeTechnical {
		t.Fatalf("spec = %+v", got)
	}
	if got.DateBucket != query.BucketThisWeek || got.SortBy != query.SortByCandidate || got.SortOrder != query.Desc {
		t.Fatalf("spec = %+v", got)
	}
	if got.Page != 2 || got.PageSize != 5 {
		t.Fatalf("page = %d/%d, want 2/5", got.Page, got.PageSize)
	}
	if got.Location == nil || got.Location.String() != "Europe/Berlin" {
		t.Fatalf("location = %v, want Europe/Berlin", got.Location)
	}
}

func TestListInterviews_RejectsBadParams(t *testing.T) {
	h := newTestRouter(&fakeService{})
	for _, target := range []string{
		"/api/v1/interviews?page=two",
		"/api/v1/interviews?tz=Not/AZone",
	} {
		rec := do(t, h, http.MethodGet, target, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want %d", target, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestCheckConflicts_ReportsAvailability(t *testing.T) {
	existing := sampleInterview()
	h := newTestRouter(&fakeService{
		checkConflictsFn: func(ctx context.Context, req interviews.ConflictCheck) ([]domain.Interview, error) {
			if req.InterviewerID != "int-1" {
				t.Fatalf("interviewer = %q", req.InterviewerID)
			}
			return []domain.Interview{existing}, nil
		},
	})

	rec := do(t, h, http.MethodPost, "/api/v1/interviews/conflicts", map[string]any{
		"interviewerId": "int-1",
		"window":        map[string]any{"date": "2024-06-10", "startTime": "10:30", "durationMinutes": 30},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	var out conflictCheckResponse
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Available || len(out.Conflicts) != 1 || out.Conflicts[0].ID != existing.ID {
		t.Fatalf("response = %+v", out)
	}
}

func TestSuggestSlots_ParsesQuery(t *testing.T) {
	slot := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	var got interviews.SlotQuery
	h := newTestRouter(&fakeService{
		suggestSlotsFn: func(ctx context.Context, q interviews.SlotQuery) ([]time.Time, error) {
			got = q
			return []time.Time{slot}, nil
		},
	})

	rec := do(t, h, http.MethodGet, "/api/v1/interviewers/int-7/slots?date=2024-06-10&durationMinutes=45&stepMinutes=15&timezone=UTC", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if got.InterviewerID != "int-7" || got.DurationMinutes != 45 || got.StepMinutes != 15 || got.Date != "2024-06-10" {
		t.Fatalf("query = %+v", got)
	}
	var out slotsResponse
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Slots) != 1 || !out.Slots[0].Equal(slot) {
		t.Fatalf("slots = %v, want [%v]", out.Slots, slot)
	}
}

func TestHealthAndReadiness(t *testing.T) {
	h := newTestRouter(&fakeService{}, ReadyCheck{
		Name:  "database",
		Check: func(context.Context) error { return errors.New("down") },
	})

	if rec := do(t, h, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d, want %d", rec.Code, http.StatusOK)
	}
	rec := do(t, h, http.MethodGet, "/readyz", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	if !strings.Contains(rec.Body.String(), "database: down") {
		t.Fatalf("readyz body = %q", rec.Body.String())
	}
}

func TestUnknownRoute_JSON404(t *testing.T) {
	h := newTestRouter(&fakeService{})
	rec := do(t, h, http.MethodGet, "/api/v1/nothing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { order = append(order, "h") }), mark("a"), mark("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if strings.Join(order, ",") != "a,b,h" {
		t.Fatalf("order = %v, want a,b,h", order)
	}
}
