package reminders

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	dropReasonDisabled    = "disabled"
	dropReasonUnsupported = "unsupported"
	dropReasonPast        = "past"
)

var (
	remindersScheduled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chitra_reminders_scheduled_total",
			Help: "Reminders handed to a delivery backend",
		},
		[]string{"category", "backend"},
	)

	remindersDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chitra_reminders_dropped_total",
			Help: "Reminders silently skipped before reaching a backend",
		},
		[]string{"reason"},
	)

	remindersFired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chitra_reminders_fired_total",
			Help: "Reminders presented by the in-process timer backend",
		},
		[]string{"category"},
	)

	remindersCancelled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chitra_reminders_cancelled_total",
			Help: "Reminder cancellations requested",
		},
	)

	remindersPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chitra_reminders_timer_pending",
			Help: "Reminders waiting in the in-process timer backend",
		},
	)
)
