package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	BudgetPending  = "pending"
	BudgetApproved = "approved"
	BudgetRejected = "rejected"
	BudgetExpired  = "expired"
)

// Budget is a quote. Approval creates a Sale keyed by the budget id.
type Budget struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_budget_company_number"`
	SellerID      *uuid.UUID `gorm:"type:uuid"`
	BudgetNumber  int        `gorm:"not null;uniqueIndex:idx_budget_company_number"`
	ClientName    *string
	ClientCPFCNPJ *string         `gorm:"column:client_cpf_cnpj;type:varchar(18)"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status        string          `gorm:"type:varchar(20);not null;default:'pending'"`
	ValidUntil    time.Time       `gorm:"not null"`
	Notes         *string
	SaleID        *uuid.UUID `gorm:"type:uuid"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Seller *Seller      `gorm:"foreignKey:SellerID"`
	Items  []BudgetItem `gorm:"foreignKey:BudgetID;constraint:OnDelete:CASCADE"`
}

type BudgetItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BudgetID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNumber int             `gorm:"not null"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity   int             `gorm:"not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

// IsExpiredAt reports whether the quote's validity has passed at t.
func (b *Budget) IsExpiredAt(t time.Time) bool {
	return t.After(b.ValidUntil)
}
