package model

import (
	"time"

	"github.com/google/uuid"
)

// Printer is a company-registered thermal printer. Name matches the
// transport-level printer name.
type Printer struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_printer_company_name"`
	Name            string    `gorm:"not null;uniqueIndex:idx_printer_company_name"`
	ConnectionType  string    `gorm:"type:varchar(10);not null;default:'network'"` // network | usb
	Address         *string
	PaperWidth      int  `gorm:"not null;default:32"`
	IsDefault       bool `gorm:"not null;default:false"`
	IsConnected     bool `gorm:"not null;default:true"`
	LastStatusCheck *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
