package entity

import "time"

// ServiceType is static reference data, seeded at startup.
type ServiceType struct {
	ID                       string  `json:"service_type_id" gorm:"primaryKey;size:32"`
	ServiceName              string  `json:"service_name" gorm:"size:200;not null;uniqueIndex"`
	BasePrice                float64 `json:"base_price" gorm:"type:decimal(10,2)"`
	EstimatedDurationMinutes int     `json:"estimated_duration_minutes"`

	CreatedAt time.Time `json:"created_at"`
}

func (ServiceType) TableName() string {
	return "service_types"
}
