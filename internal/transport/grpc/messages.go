package grpc

import (
	"time"

	"talentdesk/backend/internal/enrich"
	"talentdesk/backend/internal/query"
	"talentdesk/backend/internal/service/interviews"
)

type ListInterviewsRequest struct {
	Query         string `json:"query,omitempty"`
	Status        string `json:"status,omitempty"`
	Type          string `json:"type,omitempty"`
	InterviewerID string `json:"interviewerId,omitempty"`
	DateBucket    string `json:"dateBucket,omitempty"`
	SortBy        string `json:"sortBy,omitempty"`
	SortOrder     string `json:"sortOrder,omitempty"`
	Page          int    `json:"page,omitempty"`
	PageSize      int    `json:"pageSize,omitempty"`
	// Timezone is the zone date buckets are evaluated in. Empty uses the server default.
	Timezone string `json:"timezone,omitempty"`
}

type ListInterviewsResponse struct {
	query.Page
}

type GetInterviewRequest struct {
	ID string `json:"id"`
}

type InterviewResponse struct {
	Interview enrich.EnrichedInterview `json:"interview"`
}

type CreateInterviewRequest struct {
	Interview interviews.Input `json:"interview"`
}

type UpdateInterviewRequest struct {
	ID        string           `json:"id"`
	Interview interviews.Input `json:"interview"`
}

type ChangeInterviewStatusRequest struct {
	ID         string                  `json:"id"`
	Status     string                  `json:"status"`
	Reschedule *interviews.WindowInput `json:"reschedule,omitempty"`
}

type DeleteInterviewRequest struct {
	ID string `json:"id"`
}

type DeleteInterviewResponse struct{}

type CheckConflictsRequest struct {
	interviews.ConflictCheck
}

type CheckConflictsResponse struct {
	Available bool                       `json:"available"`
	Conflicts []enrich.EnrichedInterview `json:"conflicts"`
}

type SuggestSlotsRequest struct {
	interviews.SlotQuery
}

type SuggestSlotsResponse struct {
	Slots []time.Time `json:"slots"`
}
