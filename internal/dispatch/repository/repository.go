package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories is the dispatch repository set.
type Repositories struct {
	Request     *RequestRepository
	Customer    *CustomerRepository
	Technician  *TechnicianRepository
	ServiceType *ServiceTypeRepository
	ActivityLog *ActivityLogRepository
	SMSLog      *SMSLogRepository
}

// NewRepositories wires every repository onto one shared gorm handle.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Request:     NewRequestRepository(db),
		Customer:    NewCustomerRepository(db),
		Technician:  NewTechnicianRepository(db),
		ServiceType: NewServiceTypeRepository(db),
		ActivityLog: NewActivityLogRepository(db),
		SMSLog:      NewSMSLogRepository(db),
	}
}
