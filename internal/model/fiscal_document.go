package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fiscal document statuses. Transitions only move forward:
// Pendente -> Autorizada|MOCK, Autorizada -> Cancelada.
const (
	FiscalStatusMock       = "MOCK"
	FiscalStatusAuthorized = "Autorizada"
	FiscalStatusPending    = "Pendente"
	FiscalStatusCancelled  = "Cancelada"
	FiscalStatusRejected   = "Rejeitada"
)

const (
	FiscalOriginGenerated = "generated"
	FiscalOriginManual    = "manual"
	FiscalOriginUpload    = "upload"
)

const DocumentTypeNFCe = "NFC-e"

// FiscalDocument stores one emission per sale (or a standalone upload).
type FiscalDocument struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	SaleID         *uuid.UUID      `gorm:"type:uuid;index"`
	DocumentType   string          `gorm:"type:varchar(10);not null"`
	Series         int             `gorm:"not null;default:1"`
	DocumentNumber int64           `gorm:"not null"`
	AccessKey      *string         `gorm:"type:varchar(44);index"`
	Protocol       *string         `gorm:"type:varchar(30)"`
	Status         string          `gorm:"type:varchar(20);not null"`
	XMLContent     *string         `gorm:"column:xml_content"`
	PDFURL         *string         `gorm:"column:pdf_url"`
	TotalValue     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Origin         string          `gorm:"type:varchar(20);not null;default:'generated'"`
	EmissionDate   time.Time       `gorm:"not null"`
	CancelReason   *string
	CancelledAt    *time.Time
	// Retry fields used by the retry cron for Pendente documents.
	RetryCount  int        `gorm:"not null;default:0"`
	NextRetryAt *time.Time `gorm:"index"`
	LastError   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
