package grpc

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"talentdesk/backend/internal/domain"
	"talentdesk/backend/internal/enrich"
	"talentdesk/backend/internal/query"
	"talentdesk/backend/internal/service/interviews"
	"talentdesk/backend/internal/store"
)

type InterviewsServer struct {
	svc interviewsService
	log *slog.Logger
}

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

var _ InterviewsServiceServer = (*InterviewsServer)(nil)

func NewInterviewsServer(svc interviewsService, log *slog.Logger) *InterviewsServer {
	if log == nil {
		log = slog.Default()
	}
	return &InterviewsServer{
		svc: svc,
		log: log.With(slog.String("component", "grpc.interviews")),
	}
}

func (s *InterviewsServer) ListInterviews(ctx context.Context, req *ListInterviewsRequest) (*ListInterviewsResponse, error) {
	log := s.log.With(slog.String("rpc", "ListInterviews"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	spec := query.Spec{
		Text:          strings.TrimSpace(req.Query),
		Status:        domain.Status(req.Status),
		Type:          domain.InterviewType(strings.ToLower(req.Type)),
		InterviewerID: req.InterviewerID,
		DateBucket:    query.DateBucket(req.DateBucket),
		SortBy:        query.SortField(req.SortBy),
		SortOrder:     query.SortOrder(strings.ToLower(req.SortOrder)),
		Page:          req.Page,
		PageSize:      req.PageSize,
	}
	if req.Timezone != "" {
		loc, err := domain.LoadLocation(req.Timezone)
		if err != nil {
			log.Warn("invalid request", slog.String("reason", "invalid_timezone"), slog.String("timezone", req.Timezone))
			return nil, status.Error(codes.InvalidArgument, "timezone must be an IANA time zone")
		}
		spec.Location = loc
	}

	page, err := s.svc.List(ctx, spec)
	if err != nil {
		return nil, toStatus(log, "interviews list failed", err)
	}

	log.Debug("interviews listed", slog.Int("total", page.Total), slog.Int("page", page.Page))
	return &ListInterviewsResponse{Page: page}, nil
}

func (s *InterviewsServer) GetInterview(ctx context.Context, req *GetInterviewRequest) (*InterviewResponse, error) {
	log := s.log.With(slog.String("rpc", "GetInterview"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	id, err := parseID(log, req.ID)
	if err != nil {
		return nil, err
	}

	row, err := s.svc.Get(ctx, id)
	if err != nil {
		return nil, toStatus(log.With(slog.String("interview_id", id.String())), "interview get failed", err)
	}
	return &InterviewResponse{Interview: row}, nil
}

func (s *InterviewsServer) CreateInterview(ctx context.Context, req *CreateInterviewRequest) (*InterviewResponse, error) {
	log := s.log.With(slog.String("rpc", "CreateInterview"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	iv, err := s.svc.Create(ctx, req.Interview)
	if err != nil {
		return nil, toStatus(log.With(slog.String("interviewer_id", req.Interview.InterviewerID)), "interview create failed", err)
	}

	log.Info(
		"interview created",
		slog.String("interview_id", iv.ID.String()),
		slog.String("interviewer_id", iv.InterviewerID),
		slog.Time("start_at", iv.StartAt),
		slog.Time("end_at", iv.EndAt),
	)
	return &InterviewResponse{Interview: s.svc.View(ctx, iv)}, nil
}

func (s *InterviewsServer) UpdateInterview(ctx context.Context, req *UpdateInterviewRequest) (*InterviewResponse, error) {
	log := s.log.With(slog.String("rpc", "UpdateInterview"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	id, err := parseID(log, req.ID)
	if err != nil {
		return nil, err
	}
	log = log.With(slog.String("interview_id", id.String()))

	iv, err := s.svc.Update(ctx, id, req.Interview)
	if err != nil {
		return nil, toStatus(log, "interview update failed", err)
	}

	log.Info("interview updated", slog.Time("start_at", iv.StartAt), slog.String("status", string(iv.Status)))
	return &InterviewResponse{Interview: s.svc.View(ctx, iv)}, nil
}

func (s *InterviewsServer) ChangeInterviewStatus(ctx context.Context, req *ChangeInterviewStatusRequest) (*InterviewResponse, error) {
	log := s.log.With(slog.String("rpc", "ChangeInterviewStatus"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	id, err := parseID(log, req.ID)
	if err != nil {
		return nil, err
	}
	log = log.With(slog.String("interview_id", id.String()))

	iv, err := s.svc.ChangeStatus(ctx, id, interviews.StatusChange{Status: req.Status, Reschedule: req.Reschedule})
	if err != nil {
		return nil, toStatus(log, "interview status change failed", err)
	}

	log.Info("interview status changed", slog.String("status", string(iv.Status)))
	return &InterviewResponse{Interview: s.svc.View(ctx, iv)}, nil
}

func (s *InterviewsServer) DeleteInterview(ctx context.Context, req *DeleteInterviewRequest) (*DeleteInterviewResponse, error) {
	log := s.log.With(slog.String("rpc", "DeleteInterview"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	id, err := parseID(log, req.ID)
	if err != nil {
		return nil, err
	}
	log = log.With(slog.String("interview_id", id.String()))

	if err := s.svc.Delete(ctx, id); err != nil {
		return nil, toStatus(log, "interview delete failed", err)
	}

	log.Info("interview deleted")
	return &DeleteInterviewResponse{}, nil
}

func (s *InterviewsServer) CheckConflicts(ctx context.Context, req *CheckConflictsRequest) (*CheckConflictsResponse, error) {
	log := s.log.With(slog.String("rpc", "CheckConflicts"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	conflicts, err := s.svc.CheckConflicts(ctx, req.ConflictCheck)
	if err != nil {
		return nil, toStatus(log.With(slog.String("interviewer_id", req.InterviewerID)), "conflict check failed", err)
	}

	out := &CheckConflictsResponse{
		Available: len(conflicts) == 0,
		Conflicts: make([]enrich.EnrichedInterview, 0, len(conflicts)),
	}
	for _, c := range conflicts {
		out.Conflicts = append(out.Conflicts, s.svc.View(ctx, c))
	}
	log.Debug("conflicts checked", slog.String("interviewer_id", req.InterviewerID), slog.Int("conflicts", len(conflicts)))
	return out, nil
}

func (s *InterviewsServer) SuggestSlots(ctx context.Context, req *SuggestSlotsRequest) (*SuggestSlotsResponse, error) {
	log := s.log.With(slog.String("rpc", "SuggestSlots"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	slots, err := s.svc.SuggestSlots(ctx, req.SlotQuery)
	if err != nil {
		return nil, toStatus(log.With(slog.String("interviewer_id", req.InterviewerID)), "slot suggestion failed", err)
	}
	if slots == nil {
		slots = []time.Time{}
	}
	return &SuggestSlotsResponse{Slots: slots}, nil
}

func parseID(log *slog.Logger, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_uuid"))
		return uuid.Nil, status.Error(codes.InvalidArgument, "id must be a UUID")
	}
	return id, nil
}

// toStatus maps service errors onto gRPC codes. Unrecognised errors are logged with msg and
// returned as Internal without detail.
func toStatus(log *slog.Logger, msg string, err error) error {
	var (
		vErr *interviews.ValidationError
		cErr *interviews.ConflictError
		tErr *interviews.InvalidTransitionError
	)
	switch {
	case errors.As(err, &vErr):
		log.Warn("invalid request", slog.Any("err", err))
		return status.Error(codes.InvalidArgument, vErr.Error())
	case errors.As(err, &cErr):
		log.Info("interview conflict", slog.Int("conflicts", len(cErr.Conflicts)))
		return status.Error(codes.FailedPrecondition, cErr.Error())
	case errors.As(err, &tErr):
		log.Info("invalid status transition", slog.String("from", string(tErr.From)), slog.String("to", string(tErr.To)))
		return status.Error(codes.FailedPrecondition, tErr.Error())
	case errors.Is(err, store.ErrNotFound):
		log.Info("interview not found")
		return status.Error(codes.NotFound, "interview not found")
	case errors.Is(err, store.ErrStale):
		log.Info("stale write", slog.Any("err", err))
		return status.Error(codes.Aborted, "interview changed while saving, try again")
	default:
		log.Error(msg, slog.Any("err", err))
		return status.Error(codes.Internal, "internal error")
	}
}
