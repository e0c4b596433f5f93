// Package metrics holds the service's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "studio"

// StatusTransitions counts applied status changes.
var StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "workflow",
	Name:      "status_transitions_total",
	Help:      "Applied status changes by level and target status.",
}, []string{"level", "status"})

// ArchiveTriggers counts archive requests fired by entering accepted.
var ArchiveTriggers = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "workflow",
	Name:      "archive_triggers_total",
	Help:      "Archive requests by result.",
}, []string{"result"})

// SyncOperations counts remote project server calls.
var SyncOperations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "sync",
	Name:      "operations_total",
	Help:      "Remote sync operations by operation and result.",
}, []string{"operation", "result"})

// SyncQueueDepth tracks jobs waiting in the dispatcher.
var SyncQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "sync",
	Name:      "queue_depth",
	Help:      "Jobs waiting in the background dispatcher.",
})

// RemoteLatency observes remote call latency.
var RemoteLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "sync",
	Name:      "remote_call_seconds",
	Help:      "Latency of calls to the remote project server.",
	Buckets:   prometheus.DefBuckets,
}, []string{"operation"})

// Notifications counts outgoing notification messages.
var Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "notify",
	Name:      "messages_total",
	Help:      "Notification messages by channel and result.",
}, []string{"channel", "result"})

// RemindersSent counts reminders delivered by the scheduler.
var RemindersSent = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "reminders",
	Name:      "sent_total",
	Help:      "Reminders sent by kind.",
}, []string{"kind"})

// Result maps an error to a "success" or "error" label.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// ObserveSync records one remote operation.
func ObserveSync(operation string, start time.Time, err error) {
	RemoteLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	SyncOperations.WithLabelValues(operation, Result(err)).Inc()
}
