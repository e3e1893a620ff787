package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "swimschool",
			Name:      "form_submissions_total",
			Help:      "Form submissions by form and outcome.",
		},
		[]string{"form", "outcome"},
	)

	confirmations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "swimschool",
			Name:      "booking_confirmations_total",
			Help:      "Booking confirmation link visits by status.",
		},
		[]string{"status"},
	)

	emails = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "swimschool",
			Name:      "emails_total",
			Help:      "Transactional emails by kind and result.",
		},
		[]string{"kind", "result"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "swimschool",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and status code.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "code"},
	)

	throttled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "swimschool",
			Name:      "ip_throttled_total",
			Help:      "Requests rejected by the per-IP limiter.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(submissions, confirmations, emails, requestDuration, throttled)
	})
}

func IncSubmission(form, outcome string) {
	submissions.WithLabelValues(form, outcome).Inc()
}

func IncConfirmation(status string) {
	confirmations.WithLabelValues(status).Inc()
}

// IncEmail records a send attempt; result is "sent" or "failed".
func IncEmail(kind, result string) {
	emails.WithLabelValues(kind, result).Inc()
}

func IncThrottled() {
	throttled.Inc()
}

func ObserveRequest(method string, status int, d time.Duration) {
	requestDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(d.Seconds())
}
