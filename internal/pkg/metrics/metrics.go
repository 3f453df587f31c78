package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Check-in outcomes use the domain error names so dashboards can graph
// rejections by cause.
var (
	CheckInsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "attendance",
		Name:      "checkins_total",
		Help:      "Check-in attempts by outcome.",
	}, []string{"outcome"})

	SessionsStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "attendance",
		Name:      "sessions_started_total",
		Help:      "Attendance sessions opened.",
	})

	SessionsClosedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "attendance",
		Name:      "sessions_closed_total",
		Help:      "Attendance sessions closed by cause.",
	}, []string{"cause"})

	OverridesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "attendance",
		Name:      "overrides_total",
		Help:      "Manual record overrides applied.",
	})
)

const (
	OutcomeAccepted        = "accepted"
	OutcomeSessionInactive = "session_not_active"
	OutcomeNotEnrolled     = "not_enrolled"
	OutcomeDuplicate       = "already_checked_in"
	OutcomeOutsideGeofence = "outside_geofence"

	CauseEnded     = "ended"
	CauseCancelled = "cancelled"
	CauseAutoEnd   = "auto_end"
)
