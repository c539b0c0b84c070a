package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	StockMovementSale         = "sale"
	StockMovementSaleReversal = "sale_reversal"
)

// StockMovement records every change to Product.StockQuantity.
// Quantity is signed: negative leaves stock, positive returns it.
type StockMovement struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Type        string    `gorm:"type:varchar(20);not null"`
	Quantity    int       `gorm:"not null"`
	StockBefore int       `gorm:"not null"`
	StockAfter  int       `gorm:"not null"`
	Reason      string
	ReferenceID *uuid.UUID `gorm:"type:uuid"` // sale id
	CreatedAt   time.Time
}
