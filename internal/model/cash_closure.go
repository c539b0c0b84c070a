package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashClosure is one register session, open until closed. SellerID nil means
// the shared company register. A partial unique index guarantees at most one
// open closure per (company_id, seller scope).
type CashClosure struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	SellerID      *uuid.UUID `gorm:"type:uuid;index"`
	OpenedByID    uuid.UUID  `gorm:"type:uuid;not null"`
	OpeningDate   time.Time  `gorm:"not null"`
	ClosingDate   *time.Time
	OpeningAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// Frozen on close.
	ClosingAmount    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	TotalSales       decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	TotalCashSales   decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	TotalChange      decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	TotalWithdrawals decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	ExpectedClosing  *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Difference       *decimal.Decimal `gorm:"type:decimal(12,2)"`
	IsClosed         bool             `gorm:"not null;default:false"`
	Notes            *string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Seller      *Seller          `gorm:"foreignKey:SellerID"`
	Withdrawals []CashWithdrawal `gorm:"foreignKey:CashClosureID"`
}

// CashWithdrawal (sangria) removes cash from an open register.
type CashWithdrawal struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CashClosureID uuid.UUID       `gorm:"type:uuid;not null;index"`
	SellerID      uuid.UUID       `gorm:"type:uuid;not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Reason        string          `gorm:"not null"`
	CreatedAt     time.Time
}
