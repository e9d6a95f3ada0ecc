package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/medhq/hospital-api/internal/model"
	"github.com/medhq/hospital-api/internal/repository"
	"github.com/medhq/hospital-api/pkg/logger"
	"github.com/medhq/hospital-api/pkg/metrics"
)

// Service records mutations for the audit trail. Write failures are
// logged, never surfaced to the request that triggered them.
type Service struct {
	repo    repository.AuditRepository
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewService(repo repository.AuditRepository, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{repo: repo, log: log, metrics: m}
}

// Log writes one audit record. changes may be nil.
func (s *Service) Log(ctx context.Context, actor model.Actor, action, entityType string, entityID uuid.UUID, changes interface{}) {
	entry := &model.AuditLog{
		ID:         uuid.New(),
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		CreatedAt:  time.Now(),
	}

	if changes != nil {
		payload, err := json.Marshal(changes)
		if err != nil {
			s.log.Warn(err, "failed to marshal audit changes")
		} else {
			entry.Changes = payload
		}
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.log.Error(err, "failed to write audit record")
		return
	}
	if s.metrics != nil {
		s.metrics.AuditRecordsWritten.Inc()
	}
}
