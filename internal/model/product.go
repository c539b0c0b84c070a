package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable catalog entry. StockQuantity is only ever changed by
// an atomic UPDATE inside a transaction.
type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_product_company_barcode"`
	Barcode       *string         `gorm:"uniqueIndex:idx_product_company_barcode"`
	Name          string          `gorm:"index;not null"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	StockQuantity int             `gorm:"not null;default:0"`
	Unit          string          `gorm:"not null;default:'UN'"`
	NCM           *string         `gorm:"column:ncm;type:varchar(8)"`
	Active        bool            `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
