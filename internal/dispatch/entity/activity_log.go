package entity

import "time"

// ActivityLog is an append-only audit record for dispatch mutations.
type ActivityLog struct {
	ID         string `json:"id" gorm:"primaryKey;size:32"`
	EntityType string `json:"entity_type" gorm:"size:50;not null;index:idx_activity_entity"` // service_request/technician
	EntityID   string `json:"entity_id" gorm:"size:32;not null;index:idx_activity_entity"`

	Action     string `json:"action" gorm:"size:50;not null"` // create/assign_tech/status_change/update_details
	FromStatus string `json:"from_status" gorm:"size:20"`
	ToStatus   string `json:"to_status" gorm:"size:20"`

	Content    string    `json:"content" gorm:"type:text"`
	OperatorID string    `json:"operator_id" gorm:"size:32"`
	CreatedAt  time.Time `json:"created_at"`
}

func (ActivityLog) TableName() string {
	return "dispatch_activity_logs"
}
