package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coursehub_http_requests_total",
		Help: "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "coursehub_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	PaymentsInitiated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coursehub_payments_initiated_total",
		Help: "Checkout initiations by outcome.",
	}, []string{"outcome"})

	NotificationEmails = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coursehub_notification_emails_total",
		Help: "Course update emails by outcome.",
	}, []string{"outcome"})

	UsersDeactivated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coursehub_users_deactivated_total",
		Help: "Users deactivated by the inactivity sweep.",
	})
)
