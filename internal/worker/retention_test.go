package worker_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medhq/hospital-api/config"
	"github.com/medhq/hospital-api/internal/model"
	"github.com/medhq/hospital-api/internal/repository/repotest"
	"github.com/medhq/hospital-api/internal/worker"
	"github.com/medhq/hospital-api/pkg/logger"
	"github.com/medhq/hospital-api/pkg/metrics"
)

// One registration per test binary; prometheus rejects duplicates.
var testMetrics = metrics.New("retention_test")

func entry(age time.Duration) *model.AuditLog {
	return &model.AuditLog{
		ID:        uuid.New(),
		ActorID:   uuid.New(),
		ActorRole: model.RoleAdmin,
		Action:    "update",
		CreatedAt: time.Now().Add(-age),
	}
}

func TestRetentionCleanerPurgesOldRecords(t *testing.T) {
	repo := repotest.NewAuditRepo()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, entry(48*time.Hour)))
	require.NoError(t, repo.Create(ctx, entry(25*time.Hour)))
	require.NoError(t, repo.Create(ctx, entry(time.Hour)))

	log := logger.New(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	cleaner := worker.NewRetentionCleaner(repo, config.AuditConfig{
		Retention:       24 * time.Hour,
		CleanupInterval: time.Hour,
	}, log, testMetrics)

	// Run performs one pass before waiting on the ticker, so a
	// pre-cancelled context exercises exactly one cleanup.
	runCtx, cancel := context.WithCancel(ctx)
	cancel()
	cleaner.Run(runCtx)

	assert.Len(t, repo.Entries, 1)
	remaining, err := repo.DeleteBefore(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), remaining)
}
