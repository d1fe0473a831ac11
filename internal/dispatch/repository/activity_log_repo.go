package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mjacobhvac/fieldops/internal/dispatch/entity"
	"gorm.io/gorm"
)

// ActivityLogRepository appends audit rows for dispatch mutations.
type ActivityLogRepository struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

// LogActivity appends one audit row. Failures are returned but callers treat
// logging as best-effort.
func (r *ActivityLogRepository) LogActivity(ctx context.Context, entityType, entityID, action, fromStatus, toStatus, content, operatorID string) error {
	log := &entity.ActivityLog{
		ID:         uuid.New().String()[:32],
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		FromStatus: fromStatus,
		ToStatus:   toStatus,
		Content:    content,
		OperatorID: operatorID,
	}
	return r.db.WithContext(ctx).Create(log).Error
}

// FindByEntity returns the audit trail for one entity, newest first.
func (r *ActivityLogRepository) FindByEntity(ctx context.Context, entityType, entityID string) ([]entity.ActivityLog, error) {
	var logs []entity.ActivityLog
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}
