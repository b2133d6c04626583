// Package httpapi serves the interview scheduling API over HTTP/JSON.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"talentdesk/backend/internal/domain"
	"talentdesk/backend/internal/enrich"
	"talentdesk/backend/internal/query"
	"talentdesk/backend/internal/service/interviews"
)

const defaultBodyLimit = 1 << 20

type interviewsService interface {
	Create(ctx context.Context, in interviews.Input) (domain.Interview, error)
	Update(ctx context.Context, id uuid.UUID, in interviews.Input) (domain.Interview, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, req interviews.StatusChange) (domain.Interview, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (enrich.EnrichedInterview, error)
	List(ctx context.Context, spec query.Spec) (query.Page, error)
	CheckConflicts(ctx context.Context, req interviews.ConflictCheck) ([]domain.Interview, error)
	SuggestSlots(ctx context.Context, q interviews.SlotQuery) ([]time.Time, error)
	View(ctx context.Context, iv domain.Interview) enrich.EnrichedInterview
}

// ReadyCheck is a named dependency check for /readyz.
type ReadyCheck struct {
	Name  string
	Check func(context.Context) error
}

type Options struct {
	RequestTimeout time.Duration
	BodyLimit      int64
	ReadyChecks    []ReadyCheck
}

type Handler struct {
	svc interviewsService
	log *slog.Logger
}

func NewHandler(svc interviewsService, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		svc: svc,
		log: log.With(slog.String("component", "http.interviews")),
	}
}

// Register mounts the /api/v1 routes on r.
func (h *Handler) Register(r *mux.Router) {
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/interviews", h.listInterviews).Methods(http.MethodGet)
	api.HandleFunc("/interviews", h.createInterview).Methods(http.MethodPost)
	api.HandleFunc("/interviews/conflicts", h.checkConflicts).Methods(http.MethodPost)
	api.HandleFunc("/interviews/{id}", h.getInterview).Methods(http.MethodGet)
	api.HandleFunc("/interviews/{id}", h.updateInterview).Methods(http.MethodPut)
	api.HandleFunc("/interviews/{id}", h.deleteInterview).Methods(http.MethodDelete)
	api.HandleFunc("/interviews/{id}/status", h.changeStatus).Methods(http.MethodPost)
	api.HandleFunc("/interviewers/{id}/slots", h.suggestSlots).Methods(http.MethodGet)
}

// NewRouter builds the full HTTP surface: the API behind the request middleware, plus the
// health, readiness and metrics endpoints.
func NewRouter(h *Handler, logger *slog.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BodyLimit <= 0 {
		opts.BodyLimit = defaultBodyLimit
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/readyz", readyHandler(opts.ReadyChecks)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := mux.NewRouter()
	h.Register(api)
	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "route not found", Code: "not_found"})
	})
	api.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed", Code: "method_not_allowed"})
	})

	var apiHandler http.Handler = otelhttp.NewHandler(api, "talentdesk.http")
	apiHandler = Chain(apiHandler,
		WithRequestID,
		WithAccessLog(logger.With(slog.String("component", "http.access"))),
		WithTimeout(opts.RequestTimeout),
		WithBodyLimit(opts.BodyLimit),
	)
	r.PathPrefix("/api/").Handler(apiHandler)
	return r
}

func readyHandler(checks []ReadyCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var failures []string
		for _, check := range checks {
			if check.Check == nil {
				continue
			}
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			err := check.Check(ctx)
			cancel()
			if err != nil {
				name := check.Name
				if name == "" {
					name = "dependency"
				}
				failures = append(failures, name+": "+err.Error())
			}
		}
		if len(failures) > 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(strings.Join(failures, "; ")))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
