package repository

import (
	"context"
	"errors"

	"github.com/mjacobhvac/fieldops/internal/dispatch/entity"
	"gorm.io/gorm"
)

// TechnicianRepository owns data access for technicians.
type TechnicianRepository struct {
	db *gorm.DB
}

func NewTechnicianRepository(db *gorm.DB) *TechnicianRepository {
	return &TechnicianRepository{db: db}
}

// ListWithActiveJobs returns every technician with the count of their
// currently open assignments (scheduled or in_progress), ordered by name.
func (r *TechnicianRepository) ListWithActiveJobs(ctx context.Context) ([]entity.Technician, error) {
	var techs []entity.Technician
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			t.id,
			t.name,
			t.phone,
			t.email,
			t.status,
			t.specialization,
			t.created_at,
			t.updated_at,
			COUNT(sr.id) AS active_jobs
		FROM technicians t
		LEFT JOIN service_requests sr ON t.id = sr.assigned_tech_id
			AND sr.status IN ('scheduled', 'in_progress')
		GROUP BY t.id
		ORDER BY t.name
	`).Scan(&techs).Error
	return techs, err
}

// FindByID loads one technician.
func (r *TechnicianRepository) FindByID(ctx context.Context, id string) (*entity.Technician, error) {
	var tech entity.Technician
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tech).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tech, nil
}
