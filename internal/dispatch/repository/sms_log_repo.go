package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mjacobhvac/fieldops/internal/dispatch/entity"
	"gorm.io/gorm"
)

// SMSLogRepository records outbound SMS attempts.
type SMSLogRepository struct {
	db *gorm.DB
}

func NewSMSLogRepository(db *gorm.DB) *SMSLogRepository {
	return &SMSLogRepository{db: db}
}

// Log appends one SMS record.
func (r *SMSLogRepository) Log(ctx context.Context, phone, message, templateName, status, providerSID string) error {
	log := &entity.SMSLog{
		ID:           uuid.New().String()[:32],
		PhoneNumber:  phone,
		Message:      message,
		TemplateName: templateName,
		Status:       status,
		ProviderSID:  providerSID,
	}
	return r.db.WithContext(ctx).Create(log).Error
}
