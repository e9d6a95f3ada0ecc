package worker

import (
	"context"
	"time"

	"github.com/medhq/hospital-api/config"
	"github.com/medhq/hospital-api/internal/repository"
	"github.com/medhq/hospital-api/pkg/logger"
	"github.com/medhq/hospital-api/pkg/metrics"
)

// RetentionCleaner purges audit records older than the configured
// retention window on a fixed interval.
type RetentionCleaner struct {
	repo     repository.AuditRepository
	cfg      config.AuditConfig
	log      *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewRetentionCleaner(repo repository.AuditRepository, cfg config.AuditConfig, log *logger.Logger, m *metrics.Metrics) *RetentionCleaner {
	if cfg.Retention <= 0 {
		cfg.Retention = 90 * 24 * time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 24 * time.Hour
	}
	return &RetentionCleaner{
		repo:    repo,
		cfg:     cfg,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

// Run blocks until ctx is cancelled. A cleanup pass runs immediately
// and then once per interval.
func (c *RetentionCleaner) Run(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.CleanupInterval)
	defer ticker.Stop()

	c.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			c.log.Info("retention cleaner stopped")
			return
		case <-ticker.C:
			c.runOnce(ctx)
		}
	}
}

func (c *RetentionCleaner) runOnce(ctx context.Context) {
	c.metrics.AuditCleanupRuns.Inc()

	cutoff := c.now().Add(-c.cfg.Retention)
	purged, err := c.repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		c.metrics.AuditCleanupErrors.Inc()
		c.log.Error(err, "audit cleanup failed")
		return
	}

	c.metrics.AuditRecordsPurged.Add(float64(purged))
	c.log.WithFields(map[string]interface{}{
		"purged": purged,
		"cutoff": cutoff.Format(time.RFC3339),
	}).Info("audit cleanup completed")
}
