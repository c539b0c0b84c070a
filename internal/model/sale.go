package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment methods accepted at the register.
const (
	PaymentCreditCard  = "credit_card"
	PaymentDebitCard   = "debit_card"
	PaymentCash        = "cash"
	PaymentPix         = "pix"
	PaymentInstallment = "installment"
	PaymentStoreCredit = "store_credit"
)

// PaymentMethods lists every method in display order.
var PaymentMethods = []string{
	PaymentCash,
	PaymentCreditCard,
	PaymentDebitCard,
	PaymentPix,
	PaymentInstallment,
	PaymentStoreCredit,
}

// Sale is the financial record of a completed transaction.
// Total always equals the sum of its items' TotalPrice.
type Sale struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	SellerID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	CashClosureID *uuid.UUID      `gorm:"type:uuid;index"`
	BudgetID      *uuid.UUID      `gorm:"type:uuid;uniqueIndex"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Change        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ClientName    *string
	ClientCPFCNPJ *string `gorm:"column:client_cpf_cnpj;type:varchar(18)"`
	ClientEmail   *string
	IsInstallment bool      `gorm:"not null;default:false"`
	SaleDate      time.Time `gorm:"not null;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Seller         *Seller             `gorm:"foreignKey:SellerID"`
	Items          []SaleItem          `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	PaymentMethods []SalePaymentMethod `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

// SaleItem snapshots the unit price at sale time.
type SaleItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNumber int             `gorm:"not null"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity   int             `gorm:"not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

type SalePaymentMethod struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNumber     int             `gorm:"not null"`
	Method         string          `gorm:"type:varchar(20);not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	AdditionalInfo *string
}

// CashAmount is the part of the tender paid in cash.
func (s *Sale) CashAmount() decimal.Decimal {
	sum := decimal.Zero
	for _, pm := range s.PaymentMethods {
		if pm.Method == PaymentCash {
			sum = sum.Add(pm.Amount)
		}
	}
	return sum
}

// AmountPaid is the sum of every tender line.
func (s *Sale) AmountPaid() decimal.Decimal {
	sum := decimal.Zero
	for _, pm := range s.PaymentMethods {
		sum = sum.Add(pm.Amount)
	}
	return sum
}
