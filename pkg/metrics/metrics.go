package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	LogoutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "capju", Name: "session_logouts_total", Help: "Number of sessions ended, by logout initiator."},
		[]string{"initiator"},
	)
	SessionStatusChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "capju", Name: "session_status_checks_total", Help: "Number of session-status probes, by reported state."},
		[]string{"state"},
	)
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "capju", Name: "session_logins_total", Help: "Number of login attempts, by outcome."},
		[]string{"outcome"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "capju", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "capju", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(LogoutsTotal)
	reg.MustRegister(SessionStatusChecks)
	reg.MustRegister(LoginsTotal)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
