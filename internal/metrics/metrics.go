package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "labcare",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status class.",
		},
		[]string{"endpoint", "status"},
	)

	bookingsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "labcare",
			Name:      "bookings_created_total",
			Help:      "Bookings stored, by test type.",
		},
		[]string{"test_type"},
	)

	feedbackSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "labcare",
			Name:      "feedback_submitted_total",
			Help:      "Feedback entries stored.",
		},
	)

	rejectedWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "labcare",
			Name:      "rejected_writes_total",
			Help:      "Submissions rejected before reaching storage, by reason.",
		},
		[]string{"reason"},
	)

	decodeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "labcare",
			Name:      "storage_decode_errors_total",
			Help:      "Persisted values that could not be decoded and were treated as empty.",
		},
		[]string{"key"},
	)

	sessionEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "labcare",
			Name:      "session_events_total",
			Help:      "Register, login and logout calls.",
		},
		[]string{"event"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingsCreated, feedbackSubmitted, rejectedWrites, decodeErrors, sessionEvents)
	})
}

func IncHTTP(endpoint, status string) {
	httpRequests.WithLabelValues(endpoint, status).Inc()
}

func IncBookingCreated(testType string) {
	bookingsCreated.WithLabelValues(testType).Inc()
}

func IncFeedbackSubmitted() {
	feedbackSubmitted.Inc()
}

func IncRejectedWrite(reason string) {
	rejectedWrites.WithLabelValues(reason).Inc()
}

func IncDecodeError(key string) {
	decodeErrors.WithLabelValues(key).Inc()
}

func IncSessionEvent(event string) {
	sessionEvents.WithLabelValues(event).Inc()
}
