package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mjacobhvac/fieldops/internal/dispatch/entity"
	"github.com/mjacobhvac/fieldops/internal/dispatch/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BookingService handles public booking intake.
type BookingService struct {
	db              *gorm.DB
	customerRepo    *repository.CustomerRepository
	requestRepo     *repository.RequestRepository
	activityLogRepo *repository.ActivityLogRepository
	logger          *zap.Logger
}

func NewBookingService(db *gorm.DB, repos *repository.Repositories, logger *zap.Logger) *BookingService {
	return &BookingService{
		db:              db,
		customerRepo:    repos.Customer,
		requestRepo:     repos.Request,
		activityLogRepo: repos.ActivityLog,
		logger:          logger,
	}
}

// CreateBookingRequest is the public booking form payload.
type CreateBookingRequest struct {
	Name             string `json:"name" binding:"required"`
	Phone            string `json:"phone" binding:"required"`
	Email            string `json:"email"`
	Address          string `json:"address"`
	City             string `json:"city"`
	State            string `json:"state"`
	Zip              string `json:"zip"`
	ServiceTypeID    string `json:"service_type_id"`
	PreferredDate    string `json:"preferred_date" binding:"required"`
	PreferredTime    string `json:"preferred_time"`
	IssueDescription string `json:"issue_description" binding:"required"`
}

// CreateBooking creates the customer (reusing an existing record matched by
// exact phone number) and a pending service request, atomically.
func (s *BookingService) CreateBooking(ctx context.Context, req *CreateBookingRequest) (*entity.ServiceRequest, error) {
	preferredDate, err := time.Parse(dateLayout, req.PreferredDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	var request *entity.ServiceRequest
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, findErr := s.customerRepo.WithTx(tx).FindByPhone(ctx, req.Phone)
		if findErr != nil {
			if !errors.Is(findErr, repository.ErrNotFound) {
				return findErr
			}
			customer = &entity.Customer{
				ID:      uuid.New().String()[:32],
				Name:    req.Name,
				Phone:   req.Phone,
				Email:   req.Email,
				Address: req.Address,
				City:    req.City,
				State:   req.State,
				Zip:     req.Zip,
			}
			if createErr := s.customerRepo.WithTx(tx).Create(ctx, customer); createErr != nil {
				return createErr
			}
		}

		request = &entity.ServiceRequest{
			ID:               uuid.New().String()[:32],
			CustomerID:       customer.ID,
			Status:           entity.StatusPending,
			Priority:         2,
			PreferredDate:    &preferredDate,
			PreferredTime:    req.PreferredTime,
			IssueDescription: req.IssueDescription,
		}
		if req.ServiceTypeID != "" {
			request.ServiceTypeID = &req.ServiceTypeID
		}
		return s.requestRepo.WithTx(tx).Create(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	if s.activityLogRepo != nil {
		if logErr := s.activityLogRepo.LogActivity(ctx, "service_request", request.ID, "create", "", entity.StatusPending, "Booking received", ""); logErr != nil {
			s.logger.Warn("activity log write failed", zap.String("request_id", request.ID), zap.Error(logErr))
		}
	}

	return request, nil
}
