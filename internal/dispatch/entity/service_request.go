package entity

import "time"

// ServiceRequest is the central entity: a customer's request for HVAC work
// carrying its own lifecycle status. Status is only mutated through
// DispatchService; preferred_* fields are set at creation and never change.
type ServiceRequest struct {
	ID             string  `json:"request_id" gorm:"primaryKey;size:32"`
	CustomerID     string  `json:"customer_id" gorm:"size:32;not null;index"`
	ServiceTypeID  *string `json:"service_type_id" gorm:"size:32"`
	AssignedTechID *string `json:"assigned_tech_id" gorm:"size:32;index"`

	Status   string `json:"status" gorm:"size:20;not null;default:pending;index"` // pending/scheduled/in_progress/completed/cancelled
	Priority int    `json:"priority" gorm:"default:2"`                            // higher dispatches first

	PreferredDate *time.Time `json:"preferred_date" gorm:"type:date"`
	PreferredTime string     `json:"preferred_time" gorm:"size:20"`
	ScheduledDate *time.Time `json:"scheduled_date" gorm:"type:date"`
	ScheduledTime string     `json:"scheduled_time" gorm:"size:20"`

	Notes            string `json:"notes" gorm:"type:text"`
	IssueDescription string `json:"issue_description" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Customer    *Customer    `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	ServiceType *ServiceType `json:"service_type,omitempty" gorm:"foreignKey:ServiceTypeID"`
	Technician  *Technician  `json:"technician,omitempty" gorm:"foreignKey:AssignedTechID"`
}

func (ServiceRequest) TableName() string {
	return "service_requests"
}

// Request lifecycle. pending is the only creation state; completed and
// cancelled are terminal by convention, not structurally enforced.
const (
	StatusPending    = "pending"
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// ValidStatuses is the closed set accepted by status updates.
var ValidStatuses = []string{StatusPending, StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled}

// IsValidStatus reports whether s belongs to the closed status set.
func IsValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}
