package service

import (
	"context"

	"github.com/mjacobhvac/fieldops/internal/dispatch/entity"
	"github.com/mjacobhvac/fieldops/internal/dispatch/repository"
)

// TechnicianService serves the technician directory.
type TechnicianService struct {
	repo *repository.TechnicianRepository
}

func NewTechnicianService(repo *repository.TechnicianRepository) *TechnicianService {
	return &TechnicianService{repo: repo}
}

// List returns every technician with their active job count.
func (s *TechnicianService) List(ctx context.Context) ([]entity.Technician, error) {
	return s.repo.ListWithActiveJobs(ctx)
}
