package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mjacobhvac/fieldops/internal/dispatch/entity"
	"gorm.io/gorm"
)

// RequestRepository owns all data access for service requests.
type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// WithTx returns a copy bound to the given transaction handle.
func (r *RequestRepository) WithTx(tx *gorm.DB) *RequestRepository {
	return &RequestRepository{db: tx}
}

// BookingFilter narrows the dispatch board query. Zero values mean "no
// filter"; filters combine with AND, except the date which matches either the
// scheduled or the preferred date.
type BookingFilter struct {
	Status string
	Date   *time.Time
	TechID string
}

// BookingRow is one dispatch board line: a service request joined with its
// customer and, when present, service type and assigned technician.
type BookingRow struct {
	RequestID        string     `json:"request_id"`
	Status           string     `json:"status"`
	Priority         int        `json:"priority"`
	PreferredDate    *time.Time `json:"preferred_date"`
	PreferredTime    string     `json:"preferred_time"`
	ScheduledDate    *time.Time `json:"scheduled_date"`
	ScheduledTime    string     `json:"scheduled_time"`
	CreatedAt        time.Time  `json:"created_at"`
	Notes            string     `json:"notes"`
	IssueDescription string     `json:"issue_description"`

	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email"`
	Address       string `json:"address"`
	City          string `json:"city"`
	State         string `json:"state"`
	Zip           string `json:"zip"`

	ServiceName              *string  `json:"service_name"`
	BasePrice                *float64 `json:"base_price"`
	EstimatedDurationMinutes *int     `json:"estimated_duration_minutes"`

	TechID     *string `json:"tech_id"`
	TechName   *string `json:"tech_name"`
	TechPhone  *string `json:"tech_phone"`
	TechStatus *string `json:"tech_status"`
}

const bookingSelectSQL = `
SELECT
	sr.id AS request_id,
	sr.status,
	sr.priority,
	sr.preferred_date,
	sr.preferred_time,
	sr.scheduled_date,
	sr.scheduled_time,
	sr.created_at,
	sr.notes,
	sr.issue_description,
	c.id AS customer_id,
	c.name AS customer_name,
	c.phone AS customer_phone,
	c.email AS customer_email,
	c.address,
	c.city,
	c.state,
	c.zip,
	st.service_name,
	st.base_price,
	st.estimated_duration_minutes,
	t.id AS tech_id,
	t.name AS tech_name,
	t.phone AS tech_phone,
	t.status AS tech_status
FROM service_requests sr
JOIN customers c ON sr.customer_id = c.id
LEFT JOIN service_types st ON sr.service_type_id = st.id
LEFT JOIN technicians t ON sr.assigned_tech_id = t.id
`

// Ascending NULLS LAST is the Postgres default, so unscheduled requests sort
// after dated ones within the same status/priority bucket. The trailing id
// key makes the order total.
const bookingOrderSQL = `
ORDER BY
	CASE sr.status
		WHEN 'in_progress' THEN 1
		WHEN 'scheduled' THEN 2
		WHEN 'pending' THEN 3
		ELSE 4
	END,
	sr.priority DESC,
	sr.scheduled_date ASC,
	sr.preferred_date ASC,
	sr.created_at ASC,
	sr.id ASC
`

// ListBookings returns the dispatch board view for the given filters.
func (r *RequestRepository) ListBookings(ctx context.Context, f BookingFilter) ([]BookingRow, error) {
	query := bookingSelectSQL + " WHERE 1=1"
	args := []interface{}{}

	if f.Status != "" {
		query += " AND sr.status = ?"
		args = append(args, f.Status)
	}
	if f.Date != nil {
		query += " AND (sr.scheduled_date = ? OR sr.preferred_date = ?)"
		args = append(args, *f.Date, *f.Date)
	}
	if f.TechID != "" {
		query += " AND sr.assigned_tech_id = ?"
		args = append(args, f.TechID)
	}

	query += bookingOrderSQL

	var rows []BookingRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads one service request.
func (r *RequestRepository) FindByID(ctx context.Context, id string) (*entity.ServiceRequest, error) {
	var req entity.ServiceRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// Create inserts a new service request.
func (r *RequestRepository) Create(ctx context.Context, req *entity.ServiceRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// Assign binds a technician and schedule pair to the request in a single
// statement and forces status to scheduled regardless of the prior status.
func (r *RequestRepository) Assign(ctx context.Context, id, techID string, date time.Time, timeOfDay string) (*entity.ServiceRequest, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.ServiceRequest{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"assigned_tech_id": techID,
			"scheduled_date":   date,
			"scheduled_time":   timeOfDay,
			"status":           entity.StatusScheduled,
			"updated_at":       gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, id)
}

// UpdateStatus sets the lifecycle status in a single statement. The caller is
// responsible for validating the status against the closed set.
func (r *RequestRepository) UpdateStatus(ctx context.Context, id, status string) (*entity.ServiceRequest, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.ServiceRequest{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, id)
}

// UpdateFields applies a partial update whose SET list is exactly the given
// columns, plus the updated_at bump. Callers must not pass an empty map.
func (r *RequestRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (*entity.ServiceRequest, error) {
	fields["updated_at"] = gorm.Expr("CURRENT_TIMESTAMP")

	res := r.db.WithContext(ctx).
		Model(&entity.ServiceRequest{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, id)
}
