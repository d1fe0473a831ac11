package entity

import "time"

// SMSLog records every outbound SMS attempt.
type SMSLog struct {
	ID           string `json:"id" gorm:"primaryKey;size:32"`
	PhoneNumber  string `json:"phone_number" gorm:"size:20;not null;index"`
	Message      string `json:"message" gorm:"type:text"`
	TemplateName string `json:"template_name" gorm:"size:50"`
	Status       string `json:"status" gorm:"size:20"` // sent/failed
	ProviderSID  string `json:"provider_sid" gorm:"size:64"`

	CreatedAt time.Time `json:"created_at"`
}

func (SMSLog) TableName() string {
	return "sms_logs"
}
