package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds application metrics outside the HTTP request path.
type Metrics struct {
	AuditRecordsWritten prometheus.Counter
	AuditRecordsPurged  prometheus.Counter
	AuditCleanupErrors  prometheus.Counter
	AuditCleanupRuns    prometheus.Counter

	NotificationsSent   prometheus.Counter
	NotificationsFailed prometheus.Counter
}

// New creates and registers the application metrics.
func New(namespace string) *Metrics {
	return &Metrics{
		AuditRecordsWritten: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_records_written_total",
			Help:      "Total number of audit records written",
		}),
		AuditRecordsPurged: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_records_purged_total",
			Help:      "Total number of audit records removed by retention cleanup",
		}),
		AuditCleanupErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_cleanup_errors_total",
			Help:      "Total number of failed audit cleanup runs",
		}),
		AuditCleanupRuns: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_cleanup_runs_total",
			Help:      "Total number of audit cleanup runs",
		}),
		NotificationsSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "Total number of email notifications sent",
		}),
		NotificationsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_failed_total",
			Help:      "Total number of email notifications that failed to send",
		}),
	}
}
