package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mjacobhvac/fieldops/internal/dispatch/entity"
	"github.com/mjacobhvac/fieldops/internal/dispatch/repository"
	"github.com/redis/go-redis/v9"
)

const (
	serviceTypeCacheKey = "service_types:all"
	serviceTypeCacheTTL = 5 * time.Minute
)

// ServiceTypeService serves the static service catalog. The list backs the
// public booking form, so reads go through a short-lived redis cache.
type ServiceTypeService struct {
	repo *repository.ServiceTypeRepository
	rdb  *redis.Client
}

func NewServiceTypeService(repo *repository.ServiceTypeRepository, rdb *redis.Client) *ServiceTypeService {
	return &ServiceTypeService{repo: repo, rdb: rdb}
}

// List returns every service type, from cache when possible.
func (s *ServiceTypeService) List(ctx context.Context) ([]entity.ServiceType, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, serviceTypeCacheKey).Bytes(); err == nil {
			var types []entity.ServiceType
			if err := json.Unmarshal(cached, &types); err == nil {
				return types, nil
			}
		}
	}

	types, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if data, err := json.Marshal(types); err == nil {
			s.rdb.Set(ctx, serviceTypeCacheKey, data, serviceTypeCacheTTL)
		}
	}

	return types, nil
}
