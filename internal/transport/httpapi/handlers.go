package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"talentdesk/backend/internal/domain"
	"talentdesk/backend/internal/enrich"
	"talentdesk/backend/internal/query"
	"talentdesk/backend/internal/service/interviews"
)

type conflictCheckResponse struct {
	Available bool                       `json:"available"`
	Conflicts []enrich.EnrichedInterview `json:"conflicts"`
}

type slotsResponse struct {
	InterviewerID string      `json:"interviewerId"`
	Date          string      `json:"date"`
	Slots         []time.Time `json:"slots"`
}

func (h *Handler) listInterviews(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(slog.String("route", "ListInterviews"))

	spec, err := parseListQuery(r.URL.Query())
	if err != nil {
		writeError(w, log, err)
		return
	}
	page, err := h.svc.List(r.Context(), spec)
	if err != nil {
		writeError(w, log, err)
		return
	}
	log.Debug("interviews listed", slog.Int("total", page.Total), slog.Int("page", page.Page))
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) getInterview(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(slog.String("route", "GetInterview"))

	id, err := pathID(r)
	if err != nil {
		writeError(w, log, err)
		return
	}
	row, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, log.With(slog.String("interview_id", id.String())), err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (h *Handler) createInterview(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(slog.String("route", "CreateInterview"))

	var in interviews.Input
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, log, err)
		return
	}
	iv, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, log.With(slog.String("interviewer_id", in.InterviewerID)), err)
		return
	}
	log.Info("interview created",
		slog.String("interview_id", iv.ID.String()),
		slog.String("interviewer_id", iv.InterviewerID),
		slog.Time("start_at", iv.StartAt),
		slog.Time("end_at", iv.EndAt),
	)
	writeJSON(w, http.StatusCreated, h.svc.View(r.Context(), iv))
}

func (h *Handler) updateInterview(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(slog.String("route", "UpdateInterview"))

	id, err := pathID(r)
	if err != nil {
		writeError(w, log, err)
		return
	}
	log = log.With(slog.String("interview_id", id.String()))
	var in interviews.Input
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, log, err)
		return
	}
	iv, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, log, err)
		return
	}
	log.Info("interview updated", slog.Time("start_at", iv.StartAt), slog.String("status", string(iv.Status)))
	writeJSON(w, http.StatusOK, h.svc.View(r.Context(), iv))
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(slog.String("route", "ChangeInterviewStatus"))

	id, err := pathID(r)
	if err != nil {
		writeError(w, log, err)
		return
	}
	log = log.With(slog.String("interview_id", id.String()))
	var req interviews.StatusChange
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, log, err)
		return
	}
	iv, err := h.svc.ChangeStatus(r.Context(), id, req)
	if err != nil {
		writeError(w, log, err)
		return
	}
	log.Info("interview status changed", slog.String("status", string(iv.Status)))
	writeJSON(w, http.StatusOK, h.svc.View(r.Context(), iv))
}

func (h *Handler) deleteInterview(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(slog.String("route", "DeleteInterview"))

	id, err := pathID(r)
	if err != nil {
		writeError(w, log, err)
		return
	}
	log = log.With(slog.String("interview_id", id.String()))
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, log, err)
		return
	}
	log.Info("interview deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) checkConflicts(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(slog.String("route", "CheckConflicts"))

	var req interviews.ConflictCheck
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, log, err)
		return
	}
	conflicts, err := h.svc.CheckConflicts(r.Context(), req)
	if err != nil {
		writeError(w, log.With(slog.String("interviewer_id", req.InterviewerID)), err)
		return
	}
	out := conflictCheckResponse{
		Available: len(conflicts) == 0,
		Conflicts: make([]enrich.EnrichedInterview, 0, len(conflicts)),
	}
	for _, c := range conflicts {
		out.Conflicts = append(out.Conflicts, h.svc.View(r.Context(), c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) suggestSlots(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(slog.String("route", "SuggestSlots"))

	q, err := parseSlotQuery(mux.Vars(r)["id"], r.URL.Query())
	if err != nil {
		writeError(w, log, err)
		return
	}
	slots, err := h.svc.SuggestSlots(r.Context(), q)
	if err != nil {
		writeError(w, log.With(slog.String("interviewer_id", q.InterviewerID)), err)
		return
	}
	if slots == nil {
		slots = []time.Time{}
	}
	writeJSON(w, http.StatusOK, slotsResponse{InterviewerID: q.InterviewerID, Date: q.Date, Slots: slots})
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, interviews.NewValidationError("id must be a UUID")
	}
	return id, nil
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var mErr *http.MaxBytesError
		if errors.As(err, &mErr) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return interviews.NewValidationError("request body is required")
		}
		return interviews.NewValidationError("invalid json body")
	}
	return nil
}

func parseListQuery(v url.Values) (query.Spec, error) {
	spec := query.Spec{
		Text:          strings.TrimSpace(v.Get("q")),
		Status:        domain.Status(v.Get("status")),
		Type:          domain.InterviewType(strings.ToLower(v.Get("type"))),
		InterviewerID: v.Get("interviewerId"),
		DateBucket:    query.DateBucket(v.Get("date")),
		SortBy:        query.SortField(v.Get("sortBy")),
		SortOrder:     query.SortOrder(strings.ToLower(v.Get("sortOrder"))),
	}
	var err error
	if spec.Page, err = intParam(v, "page"); err != nil {
		return query.Spec{}, err
	}
	if spec.PageSize, err = intParam(v, "pageSize"); err != nil {
		return query.Spec{}, err
	}
	if tz := v.Get("tz"); tz != "" {
		loc, err := domain.LoadLocation(tz)
		if err != nil {
			return query.Spec{}, interviews.NewValidationError("tz must be an IANA time zone")
		}
		spec.Location = loc
	}
	return spec, nil
}

func parseSlotQuery(interviewerID string, v url.Values) (interviews.SlotQuery, error) {
	q := interviews.SlotQuery{
		InterviewerID: interviewerID,
		Date:          v.Get("date"),
		Timezone:      v.Get("timezone"),
		DayStart:      v.Get("dayStart"),
		DayEnd:        v.Get("dayEnd"),
	}
	var err error
	if q.DurationMinutes, err = intParam(v, "durationMinutes"); err != nil {
		return interviews.SlotQuery{}, err
	}
	if q.StepMinutes, err = intParam(v, "stepMinutes"); err != nil {
		return interviews.SlotQuery{}, err
	}
	return q, nil
}

func intParam(v url.Values, name string) (int, error) {
	raw := strings.TrimSpace(v.Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, interviews.NewValidationError(name + " must be an integer")
	}
	return n, nil
}
