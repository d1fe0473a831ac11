package repository

import (
	"context"
	"errors"

	"github.com/mjacobhvac/fieldops/internal/dispatch/entity"
	"gorm.io/gorm"
)

// ServiceTypeRepository owns data access for service types.
type ServiceTypeRepository struct {
	db *gorm.DB
}

func NewServiceTypeRepository(db *gorm.DB) *ServiceTypeRepository {
	return &ServiceTypeRepository{db: db}
}

// FindAll returns every service type ordered by name.
func (r *ServiceTypeRepository) FindAll(ctx context.Context) ([]entity.ServiceType, error) {
	var types []entity.ServiceType
	err := r.db.WithContext(ctx).Order("service_name ASC").Find(&types).Error
	return types, err
}

// FindByID loads one service type.
func (r *ServiceTypeRepository) FindByID(ctx context.Context, id string) (*entity.ServiceType, error) {
	var st entity.ServiceType
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&st).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &st, nil
}
