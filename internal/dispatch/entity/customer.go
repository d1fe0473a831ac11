package entity

import "time"

// Customer is created on first booking and referenced by service requests.
type Customer struct {
	ID      string `json:"customer_id" gorm:"primaryKey;size:32"`
	Name    string `json:"name" gorm:"size:200;not null"`
	Phone   string `json:"phone" gorm:"size:20;not null;index"`
	Email   string `json:"email" gorm:"size:200"`
	Address string `json:"address" gorm:"size:300"`
	City    string `json:"city" gorm:"size:100"`
	State   string `json:"state" gorm:"size:50"`
	Zip     string `json:"zip" gorm:"size:20"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}
