package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Reminder pipeline metrics
	RemindersScheduled  *prometheus.CounterVec
	RemindersFired      prometheus.Counter
	RemindersSuppressed *prometheus.CounterVec
	RemindersFailed     prometheus.Counter
	ReminderFireLatency prometheus.Histogram
	ReminderQueueDepth  prometheus.Gauge

	// Booking metrics
	BookingConflicts    prometheus.Counter
	BookingLockFailures prometheus.Counter

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
	DatabaseLatency    *prometheus.HistogramVec
}

// Nop returns unregistered metrics for tests.
func Nop() *Metrics {
	return &Metrics{
		RemindersScheduled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reminders_scheduled_total",
		}, []string{"reminder_type"}),
		RemindersFired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reminders_fired_total",
		}),
		RemindersSuppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reminders_suppressed_total",
		}, []string{"reason"}),
		RemindersFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reminders_failed_total",
		}),
		ReminderFireLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "reminder_processing_duration_seconds",
		}),
		ReminderQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "reminder_queue_depth",
		}),
		BookingConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_conflicts_total",
		}),
		BookingLockFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_lock_failures_total",
		}),
		DatabaseOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "database_operations_total",
		}, []string{"operation", "status"}),
		DatabaseLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "database_operation_duration_seconds",
		}, []string{"operation"}),
	}
}

// New creates and registers all application metrics
func New(namespace string) *Metrics {
	return &Metrics{
		RemindersScheduled: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_scheduled_total",
			Help:      "Total number of reminder jobs enqueued",
		}, []string{"reminder_type"}),
		RemindersFired: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_fired_total",
			Help:      "Total number of reminder jobs delivered",
		}),
		RemindersSuppressed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_suppressed_total",
			Help:      "Reminder jobs skipped at fire time after state re-check",
		}, []string{"reason"}),
		RemindersFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_failed_total",
			Help:      "Reminder jobs whose delivery failed",
		}),
		ReminderFireLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reminder_processing_duration_seconds",
			Help:      "Time spent processing a batch of due reminder jobs",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		ReminderQueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reminder_queue_depth",
			Help:      "Current number of pending reminder jobs",
		}),
		BookingConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_conflicts_total",
			Help:      "Booking attempts rejected by the conflict guard",
		}),
		BookingLockFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_lock_failures_total",
			Help:      "Booking attempts that lost the per-doctor lock",
		}),
		DatabaseOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
		DatabaseLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "database_operation_duration_seconds",
			Help:      "Duration of database operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
	}
}
