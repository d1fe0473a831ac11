package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mjacobhvac/fieldops/internal/dispatch/entity"
	"github.com/mjacobhvac/fieldops/internal/dispatch/repository"
	"github.com/mjacobhvac/fieldops/internal/dispatch/sse"
	"github.com/mjacobhvac/fieldops/internal/shared/sms"
	"go.uber.org/zap"
)

var (
	// ErrInvalidStatus rejects statuses outside the closed lifecycle set.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrEmptyPatch rejects detail updates that carry no fields.
	ErrEmptyPatch = errors.New("no fields to update")
	// ErrInvalidDate rejects dates that are not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
	// ErrTechnicianNotFound rejects assignments to unknown technicians.
	ErrTechnicianNotFound = errors.New("technician not found")
)

const dateLayout = "2006-01-02"

// DispatchService is the assignment engine: every status transition and
// technician assignment goes through here. Each mutation is a single
// UPDATE; concurrent dispatcher edits resolve last-write-wins.
type DispatchService struct {
	requestRepo     *repository.RequestRepository
	customerRepo    *repository.CustomerRepository
	techRepo        *repository.TechnicianRepository
	serviceTypeRepo *repository.ServiceTypeRepository
	activityLogRepo *repository.ActivityLogRepository
	smsLogRepo      *repository.SMSLogRepository
	smsClient       *sms.Client
	businessName    string
	businessPhone   string
	logger          *zap.Logger
}

func NewDispatchService(
	repos *repository.Repositories,
	logger *zap.Logger,
) *DispatchService {
	return &DispatchService{
		requestRepo:     repos.Request,
		customerRepo:    repos.Customer,
		techRepo:        repos.Technician,
		serviceTypeRepo: repos.ServiceType,
		activityLogRepo: repos.ActivityLog,
		smsLogRepo:      repos.SMSLog,
		logger:          logger,
	}
}

// SetSMSClient injects the outbound SMS client. A nil client disables
// customer notifications.
func (s *DispatchService) SetSMSClient(client *sms.Client, businessName, businessPhone string) {
	s.smsClient = client
	s.businessName = businessName
	s.businessPhone = businessPhone
}

// ListBookings returns the dispatch board view. Empty filter values are
// ignored; dateStr must be YYYY-MM-DD when present.
func (s *DispatchService) ListBookings(ctx context.Context, status, dateStr, techID string) ([]repository.BookingRow, error) {
	filter := repository.BookingFilter{
		Status: status,
		TechID: techID,
	}
	if dateStr != "" {
		d, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, ErrInvalidDate
		}
		filter.Date = &d
	}
	return s.requestRepo.ListBookings(ctx, filter)
}

// AssignRequest carries the assignment payload.
type AssignRequest struct {
	TechID        string `json:"tech_id" binding:"required"`
	ScheduledDate string `json:"scheduled_date" binding:"required"`
	ScheduledTime string `json:"scheduled_time" binding:"required"`
}

// AssignTechnician binds a technician and schedule to a request and forces
// status to scheduled regardless of the prior status. On success a
// confirmation SMS is sent best-effort and the dispatch board is notified.
func (s *DispatchService) AssignTechnician(ctx context.Context, requestID string, req AssignRequest, operatorID string) (*entity.ServiceRequest, error) {
	date, err := time.Parse(dateLayout, req.ScheduledDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	prev, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if _, err := s.techRepo.FindByID(ctx, req.TechID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTechnicianNotFound
		}
		return nil, err
	}

	updated, err := s.requestRepo.Assign(ctx, requestID, req.TechID, date, req.ScheduledTime)
	if err != nil {
		return nil, err
	}

	if s.activityLogRepo != nil {
		content := fmt.Sprintf("Assigned tech %s for %s %s", req.TechID, req.ScheduledDate, req.ScheduledTime)
		if logErr := s.activityLogRepo.LogActivity(ctx, "service_request", requestID, "assign_tech", prev.Status, entity.StatusScheduled, content, operatorID); logErr != nil {
			s.logger.Warn("activity log write failed", zap.String("request_id", requestID), zap.Error(logErr))
		}
	}

	sse.PublishBookingUpdate(requestID, "assign_tech", entity.StatusScheduled)
	s.sendConfirmation(ctx, updated, req.ScheduledDate, req.ScheduledTime)

	return updated, nil
}

// UpdateStatus moves a request to any status in the closed set. There is no
// transition table: any valid status is reachable from any other.
func (s *DispatchService) UpdateStatus(ctx context.Context, requestID, status, operatorID string) (*entity.ServiceRequest, error) {
	if !entity.IsValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	prev, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	updated, err := s.requestRepo.UpdateStatus(ctx, requestID, status)
	if err != nil {
		return nil, err
	}

	if s.activityLogRepo != nil {
		if logErr := s.activityLogRepo.LogActivity(ctx, "service_request", requestID, "status_change", prev.Status, status, "", operatorID); logErr != nil {
			s.logger.Warn("activity log write failed", zap.String("request_id", requestID), zap.Error(logErr))
		}
	}

	sse.PublishBookingUpdate(requestID, "status_change", status)
	return updated, nil
}

// UpdateStatusAsTech is the technician-portal status update: only the
// assigned technician may move their own job, and only to in_progress or
// completed. A request assigned to someone else is reported as not found.
func (s *DispatchService) UpdateStatusAsTech(ctx context.Context, requestID, techID, status string) (*entity.ServiceRequest, error) {
	if status != entity.StatusInProgress && status != entity.StatusCompleted {
		return nil, ErrInvalidStatus
	}

	prev, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if prev.AssignedTechID == nil || *prev.AssignedTechID != techID {
		return nil, repository.ErrNotFound
	}

	updated, err := s.requestRepo.UpdateStatus(ctx, requestID, status)
	if err != nil {
		return nil, err
	}

	if s.activityLogRepo != nil {
		if logErr := s.activityLogRepo.LogActivity(ctx, "service_request", requestID, "status_change", prev.Status, status, "Updated from tech portal", techID); logErr != nil {
			s.logger.Warn("activity log write failed", zap.String("request_id", requestID), zap.Error(logErr))
		}
	}

	sse.PublishBookingUpdate(requestID, "status_change", status)
	return updated, nil
}

// BookingPatch is a typed partial update: nil means "leave unchanged".
type BookingPatch struct {
	ScheduledDate *string `json:"scheduled_date"`
	ScheduledTime *string `json:"scheduled_time"`
	Priority      *int    `json:"priority"`
	Notes         *string `json:"notes"`
	ServiceTypeID *string `json:"service_type_id"`
}

// UpdateDetails applies exactly the fields present in the patch in one
// parameterized UPDATE. An empty patch is an error.
func (s *DispatchService) UpdateDetails(ctx context.Context, requestID string, patch BookingPatch, operatorID string) (*entity.ServiceRequest, error) {
	fields := map[string]interface{}{}
	if patch.ScheduledDate != nil {
		d, err := time.Parse(dateLayout, *patch.ScheduledDate)
		if err != nil {
			return nil, ErrInvalidDate
		}
		fields["scheduled_date"] = d
	}
	if patch.ScheduledTime != nil {
		fields["scheduled_time"] = *patch.ScheduledTime
	}
	if patch.Priority != nil {
		fields["priority"] = *patch.Priority
	}
	if patch.Notes != nil {
		fields["notes"] = *patch.Notes
	}
	if patch.ServiceTypeID != nil {
		fields["service_type_id"] = *patch.ServiceTypeID
	}
	if len(fields) == 0 {
		return nil, ErrEmptyPatch
	}

	updated, err := s.requestRepo.UpdateFields(ctx, requestID, fields)
	if err != nil {
		return nil, err
	}

	if s.activityLogRepo != nil {
		if logErr := s.activityLogRepo.LogActivity(ctx, "service_request", requestID, "update_details", "", "", "", operatorID); logErr != nil {
			s.logger.Warn("activity log write failed", zap.String("request_id", requestID), zap.Error(logErr))
		}
	}

	sse.PublishBookingUpdate(requestID, "update_details", updated.Status)
	return updated, nil
}

// sendConfirmation notifies the customer of the new appointment. Best-effort:
// failures are logged and never fail the assignment.
func (s *DispatchService) sendConfirmation(ctx context.Context, req *entity.ServiceRequest, date, timeOfDay string) {
	if s.smsClient == nil {
		return
	}

	customer, err := s.customerRepo.FindByID(ctx, req.CustomerID)
	if err != nil || customer.Phone == "" {
		return
	}

	serviceName := "service appointment"
	if req.ServiceTypeID != nil {
		if st, stErr := s.serviceTypeRepo.FindByID(ctx, *req.ServiceTypeID); stErr == nil {
			serviceName = st.ServiceName
		}
	}

	body, err := sms.Render(sms.TemplateAppointmentConfirmation, sms.Vars{
		"business_name":  s.businessName,
		"service_type":   serviceName,
		"date":           date,
		"time":           timeOfDay,
		"business_phone": s.businessPhone,
	})
	if err != nil {
		s.logger.Warn("sms template render failed", zap.Error(err))
		return
	}

	sid, err := s.smsClient.Send(ctx, customer.Phone, body)
	status := "sent"
	if err != nil {
		status = "failed"
		s.logger.Warn("confirmation sms failed", zap.String("request_id", req.ID), zap.Error(err))
	}
	if logErr := s.smsLogRepo.Log(ctx, customer.Phone, body, sms.TemplateAppointmentConfirmation, status, sid); logErr != nil {
		s.logger.Warn("sms log write failed", zap.Error(logErr))
	}
}
