package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"talentdesk/backend/internal/service/interviews"
	"talentdesk/backend/internal/store"
)

type errorBody struct {
	Error     string         `json:"error"`
	Code      string         `json:"code"`
	Conflicts []conflictView `json:"conflicts,omitempty"`
}

type conflictView struct {
	ID            uuid.UUID `json:"id"`
	InterviewerID string    `json:"interviewerId"`
	Status        string    `json:"status"`
	StartAt       time.Time `json:"startAt"`
	EndAt         time.Time `json:"endAt"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto HTTP statuses. Anything unrecognised is a 500 with a
// generic message; the cause only goes to the log.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	var (
		vErr *interviews.ValidationError
		cErr *interviews.ConflictError
		tErr *interviews.InvalidTransitionError
		mErr *http.MaxBytesError
	)
	switch {
	case errors.As(err, &vErr):
		log.Warn("invalid request", slog.Any("err", err))
		writeJSON(w, http.StatusBadRequest, errorBody{Error: vErr.Error(), Code: "invalid_argument"})
	case errors.As(err, &mErr):
		log.Warn("request body too large", slog.Int64("limit", mErr.Limit))
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "request body too large", Code: "invalid_argument"})
	case errors.As(err, &cErr):
		log.Info("interview conflict", slog.Int("conflicts", len(cErr.Conflicts)))
		body := errorBody{Error: cErr.Error(), Code: "conflict"}
		for _, c := range cErr.Conflicts {
			body.Conflicts = append(body.Conflicts, conflictView{
				ID:            c.ID,
				InterviewerID: c.InterviewerID,
				Status:        string(c.Status),
				StartAt:       c.StartAt.UTC(),
				EndAt:         c.EndAt.UTC(),
			})
		}
		writeJSON(w, http.StatusConflict, body)
	case errors.As(err, &tErr):
		log.Info("invalid status transition", slog.String("from", string(tErr.From)), slog.String("to", string(tErr.To)))
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: tErr.Error(), Code: "invalid_transition"})
	case errors.Is(err, store.ErrNotFound):
		log.Info("interview not found")
		writeJSON(w, http.StatusNotFound, errorBody{Error: "interview not found", Code: "not_found"})
	case errors.Is(err, store.ErrStale):
		log.Info("stale write", slog.Any("err", err))
		writeJSON(w, http.StatusConflict, errorBody{Error: "interview changed while saving, try again", Code: "aborted"})
	default:
		log.Error("request failed", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error", Code: "internal"})
	}
}
