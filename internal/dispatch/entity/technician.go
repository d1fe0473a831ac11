package entity

import "time"

// Technician carries its own availability status. Status is an open
// enumeration: the dispatch UI renders whatever value is stored, so no CHECK
// constraint is applied.
type Technician struct {
	ID             string `json:"tech_id" gorm:"primaryKey;size:32"`
	Name           string `json:"name" gorm:"size:200;not null"`
	Phone          string `json:"phone" gorm:"size:20"`
	Email          string `json:"email" gorm:"size:200"`
	Specialization string `json:"specialization" gorm:"size:100"` // residential/commercial/refrigeration...
	Status         string `json:"status" gorm:"size:20;default:available"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// ActiveJobs is computed by the directory query, never persisted.
	ActiveJobs int `json:"active_jobs" gorm:"-"`
}

func (Technician) TableName() string {
	return "technicians"
}

// Common technician statuses (open set)
const (
	TechStatusAvailable = "available"
	TechStatusBusy      = "busy"
	TechStatusOffDuty   = "off_duty"
)
