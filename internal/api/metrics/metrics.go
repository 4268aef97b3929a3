// Package metrics defines and registers all custom Prometheus metrics for
// the cobros console gateway. It is the single source of truth for metric
// names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cobros"

// LoginsTotal counts login attempts against the remote auth service.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// SessionEndedTotal counts ended sessions.
// Label:
//   - cause: "explicit", "inactivity" or "invalidated"
var SessionEndedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_ended_total",
		Help:      "Total number of sessions ended, by cause.",
	},
	[]string{"cause"},
)

// InactivityWarningsTotal counts transitions into the inactivity warning
// phase.
var InactivityWarningsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "inactivity_warnings_total",
		Help:      "Total number of inactivity warnings shown to the operator.",
	},
)

// ActivitySignalsTotal counts qualifying user-activity signals that reset
// the inactivity budget.
var ActivitySignalsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_signals_total",
		Help:      "Total number of activity signals observed while authenticated.",
	},
)

// SessionActive reports whether an operator session currently exists (0/1).
var SessionActive = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "session_active",
		Help:      "Whether an authenticated operator session is present.",
	},
)
