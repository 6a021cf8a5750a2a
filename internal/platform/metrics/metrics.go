package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RedemptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_redemptions_total",
			Help: "Redemption attempts by outcome and reason",
		},
		[]string{"outcome", "reason", "resolved_by"},
	)

	RedemptionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ticket_redemption_duration_seconds",
			Help:    "Duration of redemption attempts including store round trips",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	TicketsIssuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_issued_total",
			Help: "Ticket issuance calls by payment state",
		},
		[]string{"payment_state"},
	)

	ScanSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scan_sessions_active",
			Help: "Scan sessions currently open",
		},
	)

	ScanEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scan_decode_events_dropped_total",
			Help: "Decode events dropped because a redemption was in flight",
		},
	)

	OperatorScopeCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "operator_scope_cache_total",
			Help: "Operator scope cache lookups by result",
		},
		[]string{"result"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)
