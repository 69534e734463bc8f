package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "okr",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "The total number of HTTP requests",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "okr",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	InvitesIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "okr",
		Subsystem: "invites",
		Name:      "issued_total",
		Help:      "The total number of invites persisted",
	}, []string{"role"})

	InvitesAccepted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "okr",
		Subsystem: "invites",
		Name:      "accepted_total",
		Help:      "The total number of accepted invites",
	}, []string{"outcome"})

	MailDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "okr",
		Subsystem: "mail",
		Name:      "deliveries_total",
		Help:      "Outbound email attempts by kind and result",
	}, []string{"kind", "result"})

	OTPVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "okr",
		Subsystem: "auth",
		Name:      "otp_verifications_total",
		Help:      "OTP verification attempts by result",
	}, []string{"result"})

	AISuggestions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "okr",
		Subsystem: "ai",
		Name:      "suggestions_total",
		Help:      "AI suggestion requests by field and result",
	}, []string{"field", "result"})
)
