package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	InterviewsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "talentdesk_interviews_created_total",
			Help: "Total number of interviews booked",
		},
	)

	ConflictsDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talentdesk_conflicts_detected_total",
			Help: "Total number of booking conflicts found",
		},
		[]string{"path"},
	)

	StatusChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talentdesk_status_changes_total",
			Help: "Total number of stored status transitions",
		},
		[]string{"to"},
	)

	DirectoryLookupFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talentdesk_directory_lookup_failures_total",
			Help: "Total number of directory collection lookups that failed",
		},
		[]string{"collection"},
	)

	DirectoryCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talentdesk_directory_cache_requests_total",
			Help: "Directory cache lookups by result",
		},
		[]string{"collection", "result"},
	)

	RemindersEmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "talentdesk_reminders_emitted_total",
			Help: "Total number of reminder-due events emitted",
		},
	)

	EventPublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talentdesk_event_publish_failures_total",
			Help: "Total number of domain events that could not be published",
		},
		[]string{"type"},
	)

	ListDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "talentdesk_list_duration_seconds",
			Help:    "Time taken to enrich, filter and page interviews",
			Buckets: prometheus.DefBuckets,
		},
	)
)

const (
	PathAdvisory = "advisory"
	PathCommit   = "commit"
)
